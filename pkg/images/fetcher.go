// Package images resolves display images for POIs from the Wikipedia API.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"roadtripgo/pkg/request"
)

// Fetcher resolves a thumbnail image URL for a POI name.
type Fetcher interface {
	Thumbnail(ctx context.Context, title string) (string, error)
}

// WikipediaFetcher implements Fetcher on the Wikipedia pageimages API.
type WikipediaFetcher struct {
	request     *request.Client
	Lang        string
	APIEndpoint string // Optional override for testing
}

// NewWikipediaFetcher creates a fetcher for the given language edition.
func NewWikipediaFetcher(r *request.Client, lang string) *WikipediaFetcher {
	if lang == "" {
		lang = "en"
	}
	return &WikipediaFetcher{request: r, Lang: lang}
}

func (f *WikipediaFetcher) endpoint() string {
	if f.APIEndpoint != "" {
		return f.APIEndpoint
	}
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", f.Lang)
}

// Thumbnail fetches the designated page image for the article, skipping
// vector graphics, icons, and tall portrait crops that look wrong on a
// dashboard display.
func (f *WikipediaFetcher) Thumbnail(ctx context.Context, title string) (string, error) {
	u, _ := url.Parse(f.endpoint())
	q := u.Query()
	q.Add("action", "query")
	q.Add("prop", "pageimages")
	q.Add("piprop", "thumbnail")
	q.Add("pithumbsize", "800")
	q.Add("titles", title)
	q.Add("format", "json")
	q.Add("redirects", "1")
	u.RawQuery = q.Encode()

	body, err := f.request.Get(ctx, u.String())
	if err != nil {
		return "", err
	}

	var apiResp struct {
		Query struct {
			Pages map[string]struct {
				Thumbnail struct {
					Source string `json:"source"`
					Width  int    `json:"width"`
					Height int    `json:"height"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode json: %w", err)
	}

	for _, page := range apiResp.Query.Pages {
		if page.Thumbnail.Source == "" {
			continue
		}
		if isUnwantedImage(page.Thumbnail.Source) {
			continue
		}
		// Reject tall portrait crops; landmarks are rarely taller than 1.3:1.
		if page.Thumbnail.Width > 0 && float64(page.Thumbnail.Height) > float64(page.Thumbnail.Width)*1.3 {
			continue
		}
		return page.Thumbnail.Source, nil
	}

	return "", fmt.Errorf("no usable image for %q", title)
}

// isUnwantedImage rejects vector graphics, maps, and boilerplate icons.
func isUnwantedImage(src string) bool {
	lower := strings.ToLower(src)
	if strings.HasSuffix(lower, ".svg") || strings.Contains(lower, ".svg/") {
		return true
	}
	for _, marker := range []string{"logo", "icon", "map_of", "locator", "coat_of_arms", "flag_of"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
