package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps the response body read from the source.
const maxBodyBytes = 8 << 20

// HTTPFetcher fetches the member list with a single GET request.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for url.
// PRE: url is an absolute http(s) URL; timeout > 0 (non-positive falls back to DefaultTimeout)
// POST: Returns a fetcher that never retries
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the configured source URL.
func (f *HTTPFetcher) URL() string {
	return f.url
}

// Fetch issues one GET and decodes the JSON array body.
// PRE: ctx is valid
// POST: Returns the records in source order, or an error wrapping ErrFetchFailed
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Record, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	if records == nil {
		// A literal null decodes without error.
		return nil, fmt.Errorf("%w: body is not an array", ErrFetchFailed)
	}

	slog.Debug("source_fetch", "url", f.url, "members", len(records),
		"duration_ms", time.Since(start).Milliseconds())
	return records, nil
}
