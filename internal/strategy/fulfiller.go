// Package strategy decides, per resource request, whether to serve from the
// cache store or fall through to the network. Cache-first: anything already
// cached is served without a network attempt or freshness check, favoring
// offline availability over freshness.
package strategy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/observability/metrics"
)

// ErrNetworkUnavailable reports a runtime fetch failure with no cached
// substitute. Application code falls back to the app data cache where one
// exists; there is no generic fallback for arbitrary resources.
var ErrNetworkUnavailable = errors.New("network unavailable")

// Fulfiller resolves resource requests cache-first.
type Fulfiller struct {
	repo    cachestore.Repository
	fetcher cachestore.Fetcher
	version string
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewFulfiller creates a Fulfiller writing misses back into the store named
// by version.
func NewFulfiller(repo cachestore.Repository, fetcher cachestore.Fetcher, version string, log logger.Logger, m *metrics.Metrics) *Fulfiller {
	return &Fulfiller{
		repo:    repo,
		fetcher: fetcher,
		version: version,
		log:     log,
		metrics: m,
	}
}

// Fulfill resolves one request. Cached entries are returned without touching
// the network. On a miss the network response is returned, and written back
// into the current generation when it is a 200 GET so the resource is
// available offline on subsequent loads.
func (f *Fulfiller) Fulfill(ctx context.Context, method, key string) (*cachestore.Entry, error) {
	entry, err := f.repo.Match(ctx, method, key)
	if err == nil {
		f.metrics.CacheHits.Inc()
		return entry, nil
	}
	if !errors.Is(err, cachestore.ErrEntryNotFound) {
		return nil, err
	}
	f.metrics.CacheMisses.Inc()

	entry, err = f.fetcher.Fetch(ctx, method, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetworkUnavailable, method, key, err)
	}

	if method == http.MethodGet && entry.Status == http.StatusOK {
		if putErr := f.repo.Put(ctx, f.version, entry); putErr != nil {
			// Serving the live response matters more than caching it.
			f.log.Warn("cache write-back failed",
				logger.String("key", key),
				logger.Error(putErr))
		} else {
			f.metrics.CacheWriteBacks.Inc()
		}
	}
	return entry, nil
}
