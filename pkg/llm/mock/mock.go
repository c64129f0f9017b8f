// Package mock provides a canned LLM provider for offline runs and tests.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client returns deterministic text without calling any API.
type Client struct {
	// Response overrides the generated text when set.
	Response string
}

// New creates a mock provider.
func New() *Client {
	return &Client{}
}

// GenerateText returns canned narration-shaped text.
func (c *Client) GenerateText(ctx context.Context, name, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Response != "" {
		return c.Response, nil
	}
	subject := "this place"
	for _, line := range strings.Split(prompt, "\n") {
		if after, ok := strings.CutPrefix(line, "PLACE: "); ok {
			subject = after
			break
		}
	}
	return fmt.Sprintf("Here is a quick note about %s. It has a story worth slowing down for, and you are almost there.", subject), nil
}

// GenerateJSON unmarshals an empty object into the target.
func (c *Client) GenerateJSON(ctx context.Context, name, prompt string, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw := c.Response
	if raw == "" {
		raw = "{}"
	}
	return json.Unmarshal([]byte(raw), target)
}

// HealthCheck always passes.
func (c *Client) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}
