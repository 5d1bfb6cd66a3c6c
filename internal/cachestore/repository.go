// Package cachestore implements the versioned resource cache: named stores
// mapping request keys to stored responses, with bulk population and
// whole-store deletion by name. One store per cache generation.
package cachestore

import (
	"context"
	"net/http"

	"github.com/equitrack/equitrack/internal/errors"
)

// Sentinel errors.
var (
	// ErrEntryNotFound reports a cache miss. Absence is not a failure;
	// callers fall through to the network.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrStoreNotFound reports an operation against a store name that was
	// never opened.
	ErrStoreNotFound = errors.New("cache store not found")

	// ErrPopulationFailed reports that bulk population could not fetch every
	// manifest resource. No partial generation is written.
	ErrPopulationFailed = errors.New("cache population failed")
)

// Entry is the runtime form of a cached response.
type Entry struct {
	Key         string
	Method      string
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
}

// Fetcher retrieves a resource over the network. Population and miss
// handling go through this port so tests can stub the network.
type Fetcher interface {
	Fetch(ctx context.Context, method, key string) (*Entry, error)
}

// Repository is the resource cache store contract.
type Repository interface {
	// Open registers the named store, creating it empty if it does not
	// exist. Idempotent.
	Open(ctx context.Context, name string) error

	// Populate fetches every key in manifest and writes the resulting
	// entries into the named store as one atomic batch. If any single
	// fetch fails, nothing is written and the error wraps
	// ErrPopulationFailed.
	Populate(ctx context.Context, name string, manifest []string, fetcher Fetcher) error

	// Match looks up a GET request key across all existing stores, any
	// generation, returning the first hit. Returns ErrEntryNotFound on miss.
	Match(ctx context.Context, method, key string) (*Entry, error)

	// Put writes a single entry into the named store, overwriting any
	// previous entry for the same key. Idempotent.
	Put(ctx context.Context, name string, entry *Entry) error

	// ListNames enumerates existing store names.
	ListNames(ctx context.Context) ([]string, error)

	// Delete removes a store and all its entries. Deleting a store that
	// does not exist is a no-op.
	Delete(ctx context.Context, name string) error
}
