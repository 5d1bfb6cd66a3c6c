package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/equitrack/internal/appdata"
	"github.com/equitrack/equitrack/internal/geotrack"
)

func TestReportFixAndCurrentPosition(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/position", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/position", `{"lat": 48.8566, "lon": 2.3522}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/position", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var loc appdata.Location
	decodeJSON(t, rec, &loc)
	assert.InDelta(t, 48.8566, loc.Lat, 1e-9)
	assert.InDelta(t, 2.3522, loc.Lon, 1e-9)
}

func TestReportFixRejectsBadCoordinates(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/position", `{"lat": 123.0, "lon": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/position", `{"lat": 0, "lon": -200}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportFixErrorFallsBackToCachedPosition(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	// Persisted location from an earlier run.
	require.NoError(t, f.appData.SaveLocation(context.Background(), appdata.Location{Lat: 45.76, Lon: 4.83}))

	rec := f.do(http.MethodPost, "/api/v1/position/error", `{"message": "timeout"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/view", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view geotrack.ViewSnapshot
	decodeJSON(t, rec, &view)
	require.NotNil(t, view.Position)
	assert.True(t, view.Position.FromCache)
	assert.InDelta(t, 45.76, view.Position.Lat, 1e-9)

	// The fallback never promotes to a fresh position.
	rec = f.do(http.MethodGet, "/api/v1/position", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportFixErrorWithoutCache(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusAccepted,
		f.do(http.MethodPost, "/api/v1/position/error", `{}`).Code)

	rec := f.do(http.MethodGet, "/api/v1/view", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view geotrack.ViewSnapshot
	decodeJSON(t, rec, &view)
	assert.True(t, view.PositionUnavailable)
	assert.Nil(t, view.Position)
}

func TestViewRendersFreshFix(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusAccepted,
		f.do(http.MethodPost, "/api/v1/position", `{"lat": 48.8566, "lon": 2.3522}`).Code)

	rec := f.do(http.MethodGet, "/api/v1/view", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view geotrack.ViewSnapshot
	decodeJSON(t, rec, &view)
	require.NotNil(t, view.Position)
	assert.False(t, view.Position.FromCache)

	// The forecast source is offline and nothing is cached.
	assert.True(t, view.WeatherUnavailable)
}

func TestResetSession(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusAccepted,
		f.do(http.MethodPost, "/api/v1/position", `{"lat": 1, "lon": 2}`).Code)
	require.Equal(t, http.StatusNoContent,
		f.do(http.MethodPost, "/api/v1/position/session/reset", "").Code)

	rec := f.do(http.MethodGet, "/api/v1/position", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
