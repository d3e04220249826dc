// ABOUTME: HTTP asset fetcher
// ABOUTME: Downloads segments from a static host, mapping 404s and HTML fallbacks to ErrNotFound
package assets

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// HTTPFetcher downloads resources relative to BaseURL
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher for a static host
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
	}
}

// Fetch downloads name
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := f.BaseURL + "/" + strings.TrimLeft(name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", name, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("download of %s failed: HTTP %d", name, resp.StatusCode)
	}

	// Single-page hosts answer unknown paths with 200 and an HTML page
	if !isAudioContent(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%s: served as %q: %w", name, resp.Header.Get("Content-Type"), ErrNotFound)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func isAudioContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "audio/") || mediaType == "application/octet-stream"
}
