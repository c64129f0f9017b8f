package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"roadtripgo/pkg/request"
)

func newTestFetcher(t *testing.T, thumbSource string, width, height int) *WikipediaFetcher {
	t.Helper()
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"query":{"pages":{"123":{"thumbnail":{"source":%q,"width":%d,"height":%d}}}}}`,
			thumbSource, width, height)
	}))
	t.Cleanup(svr.Close)

	f := NewWikipediaFetcher(request.New(), "en")
	f.APIEndpoint = svr.URL
	return f
}

func TestThumbnail(t *testing.T) {
	f := newTestFetcher(t, "https://upload.wikimedia.org/red_rocks.jpg", 800, 600)

	got, err := f.Thumbnail(context.Background(), "Red Rocks Amphitheatre")
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if got != "https://upload.wikimedia.org/red_rocks.jpg" {
		t.Errorf("Thumbnail = %q", got)
	}
}

func TestThumbnailRejectsPortrait(t *testing.T) {
	f := newTestFetcher(t, "https://upload.wikimedia.org/mayor.jpg", 400, 800)

	if _, err := f.Thumbnail(context.Background(), "Some Mayor"); err == nil {
		t.Error("expected tall portrait to be rejected")
	}
}

func TestThumbnailRejectsSVG(t *testing.T) {
	f := newTestFetcher(t, "https://upload.wikimedia.org/seal.svg", 800, 600)

	if _, err := f.Thumbnail(context.Background(), "City Seal"); err == nil {
		t.Error("expected SVG to be rejected")
	}
}

func TestIsUnwantedImage(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"https://upload.wikimedia.org/photo.jpg", false},
		{"https://upload.wikimedia.org/Flag_of_Colorado.png", true},
		{"https://upload.wikimedia.org/thumb/Seal.svg/800px-Seal.svg.png", true},
		{"https://upload.wikimedia.org/Company_logo.png", true},
		{"https://upload.wikimedia.org/Locator_dot.png", true},
	}
	for _, tt := range tests {
		if got := isUnwantedImage(tt.src); got != tt.want {
			t.Errorf("isUnwantedImage(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
