// Package content turns POIs into narration scripts via an LLM provider.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadtripgo/pkg/cache"
	"roadtripgo/pkg/llm"
	"roadtripgo/pkg/model"
)

// spokenWordsPerSecond is the pace of a relaxed narration voice, used to
// estimate how long a script takes to read aloud.
const spokenWordsPerSecond = 2.5

// Intent names select the model profile and the prompt shape.
const (
	IntentTeaser     = "teaser"
	IntentDetailed   = "detailed"
	IntentGuidedTour = "guided_tour"
)

// Generator produces narration scripts for POIs.
type Generator struct {
	provider llm.Provider
	cache    cache.Cacher
}

// NewGenerator creates a content generator on the given provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// SetCache enables script reuse when the same POI and intent come up again,
// e.g. driving past the same place twice in one session.
func (g *Generator) SetCache(c cache.Cacher) {
	g.cache = c
}

// Generate produces a narration for the POI with the given intent, sized to
// the target spoken duration. The call blocks until the provider responds or
// ctx is done; the caller owns timeout policy.
func (g *Generator) Generate(ctx context.Context, poi *model.POI, intent string, target time.Duration) (*model.Narration, error) {
	if poi == nil {
		return nil, fmt.Errorf("generate %s: nil POI", intent)
	}

	prompt, err := buildPrompt(poi, intent, target)
	if err != nil {
		return nil, err
	}

	cacheKey := poi.ID + "|" + intent
	start := time.Now()

	var text string
	if g.cache != nil {
		if cached, ok := g.cache.Get(cacheKey); ok {
			slog.Debug("Content: Script served from cache", "poi", poi.Name, "intent", intent)
			text = cached
		}
	}
	if text == "" {
		text, err = g.provider.GenerateText(ctx, intent, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate %s for %q: %w", intent, poi.Name, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("generate %s for %q: empty response", intent, poi.Name)
		}
		if g.cache != nil {
			g.cache.Set(cacheKey, text)
		}
	}

	n := &model.Narration{
		ID:        uuid.NewString(),
		POIID:     poi.ID,
		POIName:   poi.Name,
		Title:     titleFor(poi, intent),
		Text:      text,
		Duration:  EstimateSpokenDuration(text),
		Source:    intent,
		CreatedAt: time.Now(),
	}
	slog.Debug("Content: Generated narration",
		"poi", poi.Name,
		"intent", intent,
		"words", len(strings.Fields(text)),
		"duration", n.Duration.Round(time.Second),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return n, nil
}

// EstimateSpokenDuration estimates how long the text takes to read aloud.
func EstimateSpokenDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	return time.Duration(float64(words) / spokenWordsPerSecond * float64(time.Second))
}

// targetWords converts a spoken duration to a word budget for the prompt.
func targetWords(target time.Duration) int {
	return int(target.Seconds() * spokenWordsPerSecond)
}

func buildPrompt(poi *model.POI, intent string, target time.Duration) (string, error) {
	var sb strings.Builder
	words := targetWords(target)

	switch intent {
	case IntentTeaser:
		fmt.Fprintf(&sb, "You are a friendly driving companion. In about %d words, give the driver a short, intriguing teaser about a place they are approaching. Do not give directions. End with something that invites curiosity.\n\n", words)
	case IntentDetailed:
		fmt.Fprintf(&sb, "You are a knowledgeable driving companion. In about %d words, tell the driver the story of a place they are about to reach: its history, what makes it notable, and one detail most visitors miss. Speak naturally, as if talking in the car.\n\n", words)
	case IntentGuidedTour:
		fmt.Fprintf(&sb, "You are a local guide. The driver has arrived and wants a guided tour. In about %d words, walk them through the place: what to see first, in what order, and the stories behind each stop. Speak naturally, as if walking alongside them.\n\n", words)
	default:
		return "", fmt.Errorf("unknown narration intent %q", intent)
	}

	fmt.Fprintf(&sb, "PLACE: %s\n", poi.Name)
	if poi.Category != "" {
		fmt.Fprintf(&sb, "CATEGORY: %s\n", poi.Category)
	}
	if poi.Summary != "" {
		fmt.Fprintf(&sb, "KNOWN FACTS:\n%s\n", poi.Summary)
	}
	sb.WriteString("\nRespond with the narration text only, no headings or markup.")
	return sb.String(), nil
}

func titleFor(poi *model.POI, intent string) string {
	switch intent {
	case IntentTeaser:
		return "Coming up: " + poi.Name
	case IntentGuidedTour:
		return "Guided tour: " + poi.Name
	default:
		return poi.Name
	}
}
