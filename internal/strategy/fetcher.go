package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/equitrack/equitrack/internal/cachestore"
)

// maxFetchBody caps the size of a single cached resource.
const maxFetchBody = 32 << 20 // 32 MiB

// HTTPFetcher fetches resources over HTTP. Relative keys (paths) resolve
// against the upstream origin; absolute URLs (CDN assets) are fetched as-is.
type HTTPFetcher struct {
	client *http.Client
	origin string
}

// NewHTTPFetcher creates an HTTPFetcher resolving relative keys against
// origin, with the given per-request timeout.
func NewHTTPFetcher(origin string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		origin: strings.TrimSuffix(origin, "/"),
	}
}

// Fetch implements cachestore.Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, method, key string) (*cachestore.Entry, error) {
	url := key
	if strings.HasPrefix(key, "/") {
		url = f.origin + key
	}

	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", key, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", key, err)
	}

	return &cachestore.Entry{
		Key:         key,
		Method:      method,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header.Clone(),
		Body:        body,
	}, nil
}
