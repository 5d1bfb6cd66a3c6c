package strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/observability/metrics"
)

// stubRepository is a map-backed cachestore.Repository with one store.
type stubRepository struct {
	entries map[string]*cachestore.Entry
	puts    []string
}

func newStubRepository() *stubRepository {
	return &stubRepository{entries: make(map[string]*cachestore.Entry)}
}

func (s *stubRepository) Open(context.Context, string) error { return nil }

func (s *stubRepository) Populate(context.Context, string, []string, cachestore.Fetcher) error {
	return nil
}

func (s *stubRepository) Match(_ context.Context, method, key string) (*cachestore.Entry, error) {
	if entry, ok := s.entries[method+" "+key]; ok {
		return entry, nil
	}
	return nil, cachestore.ErrEntryNotFound
}

func (s *stubRepository) Put(_ context.Context, _ string, entry *cachestore.Entry) error {
	s.entries[entry.Method+" "+entry.Key] = entry
	s.puts = append(s.puts, entry.Key)
	return nil
}

func (s *stubRepository) ListNames(context.Context) ([]string, error) { return nil, nil }
func (s *stubRepository) Delete(context.Context, string) error        { return nil }

// failIfCalledFetcher fails the test when the network is touched.
type failIfCalledFetcher struct {
	t *testing.T
}

func (f *failIfCalledFetcher) Fetch(context.Context, string, string) (*cachestore.Entry, error) {
	f.t.Fatal("network fetch issued for a cached key")
	return nil, nil
}

// cannedFetcher returns a fixed entry or error.
type cannedFetcher struct {
	entry *cachestore.Entry
	err   error
}

func (f *cannedFetcher) Fetch(_ context.Context, method, key string) (*cachestore.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry := *f.entry
	entry.Method = method
	entry.Key = key
	return &entry, nil
}

func newFulfiller(repo cachestore.Repository, fetcher cachestore.Fetcher) *Fulfiller {
	return NewFulfiller(repo, fetcher, "3.0", logger.Silent(), metrics.NewTesting())
}

func TestFulfill_CacheFirstNeverTouchesNetwork(t *testing.T) {
	repo := newStubRepository()
	cached := &cachestore.Entry{
		Key: "/js/app.js", Method: http.MethodGet, Status: http.StatusOK, Body: []byte("cached"),
	}
	repo.entries["GET /js/app.js"] = cached

	f := newFulfiller(repo, &failIfCalledFetcher{t: t})

	got, err := f.Fulfill(context.Background(), http.MethodGet, "/js/app.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), got.Body)
}

func TestFulfill_WriteBackOnMiss(t *testing.T) {
	repo := newStubRepository()
	fetcher := &cannedFetcher{entry: &cachestore.Entry{
		Status: http.StatusOK, ContentType: "text/html", Body: []byte("fresh"),
	}}
	f := newFulfiller(repo, fetcher)

	got, err := f.Fulfill(context.Background(), http.MethodGet, "/meteo.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got.Body)

	// The entry is now present in the current store.
	assert.Equal(t, []string{"/meteo.html"}, repo.puts)
	cached, err := repo.Match(context.Background(), http.MethodGet, "/meteo.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), cached.Body)
}

func TestFulfill_Non200NotCached(t *testing.T) {
	repo := newStubRepository()
	fetcher := &cannedFetcher{entry: &cachestore.Entry{
		Status: http.StatusNotFound, Body: []byte("gone"),
	}}
	f := newFulfiller(repo, fetcher)

	got, err := f.Fulfill(context.Background(), http.MethodGet, "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Empty(t, repo.puts)
}

func TestFulfill_NonGetNotCached(t *testing.T) {
	repo := newStubRepository()
	fetcher := &cannedFetcher{entry: &cachestore.Entry{
		Status: http.StatusOK, Body: []byte("created"),
	}}
	f := newFulfiller(repo, fetcher)

	got, err := f.Fulfill(context.Background(), http.MethodPost, "/api/things")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.Status)
	assert.Empty(t, repo.puts)
}

func TestFulfill_NetworkFailure(t *testing.T) {
	repo := newStubRepository()
	fetcher := &cannedFetcher{err: fmt.Errorf("connection refused")}
	f := newFulfiller(repo, fetcher)

	_, err := f.Fulfill(context.Background(), http.MethodGet, "/tile/12/1/2.png")
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}

func TestAssetHandler_ServesCachedEntry(t *testing.T) {
	repo := newStubRepository()
	repo.entries["GET /css/style.css"] = &cachestore.Entry{
		Key:         "/css/style.css",
		Method:      http.MethodGet,
		Status:      http.StatusOK,
		ContentType: "text/css",
		Header:      http.Header{"Etag": []string{`"abc"`}},
		Body:        []byte("body{}"),
	}
	f := newFulfiller(repo, &failIfCalledFetcher{t: t})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/css/style.css", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, AssetHandler(f)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "text/css", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `"abc"`, rec.Header().Get("Etag"))
	assert.Equal(t, "3.0", rec.Header().Get(headerCacheGeneration))
}

func TestAssetHandler_OfflineMissIs503(t *testing.T) {
	repo := newStubRepository()
	fetcher := &cannedFetcher{err: fmt.Errorf("network is unreachable")}
	f := newFulfiller(repo, fetcher)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/never-cached.png", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, AssetHandler(f)(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHTTPFetcher_ResolvesRelativeKeys(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer upstream.Close()

	fetcher := NewHTTPFetcher(upstream.URL, 5*time.Second)
	entry, err := fetcher.Fetch(context.Background(), http.MethodGet, "/index.html")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, entry.Status)
	assert.Equal(t, "text/html", entry.ContentType)
	assert.Equal(t, []byte("<html></html>"), entry.Body)
}
