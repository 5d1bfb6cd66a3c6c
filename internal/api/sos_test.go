package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/equitrack/internal/appdata"
)

func TestArmSOS(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "06 12 34 56 78"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "armed", body["state"])
}

func TestArmSOSRejectsShortNumber(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "0612"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalide")
}

func TestSampleTriggersFall(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "0612345678"}`).Code)

	rec := f.do(http.MethodPost, "/api/v1/sos/sample", `{"x": 2, "y": 3, "z": 9.8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Force float64 `json:"force"`
		Fall  bool    `json:"fall"`
		State string  `json:"state"`
	}
	decodeJSON(t, rec, &body)
	assert.False(t, body.Fall)
	assert.Equal(t, "armed", body.State)

	rec = f.do(http.MethodPost, "/api/v1/sos/sample", `{"x": 40, "y": 40, "z": 20}`)
	decodeJSON(t, rec, &body)
	assert.True(t, body.Fall)
	assert.Equal(t, "fall_detected", body.State)
}

func TestConfirmSOSWithFreshPosition(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusAccepted,
		f.do(http.MethodPost, "/api/v1/position", `{"lat": 48.8566, "lon": 2.3522}`).Code)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "0612345678"}`).Code)
	f.do(http.MethodPost, "/api/v1/sos/sample", `{"x": 60}`)

	rec := f.do(http.MethodPost, "/api/v1/sos/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Contains(t, body["message"], "http://maps.google.com/?q=48.8566,2.3522")

	require.Len(t, f.alerts.alerts, 1)
	assert.True(t, f.alerts.alerts[0].HasPosition)
}

func TestConfirmSOSNeverUsesCachedPosition(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	// Only a cached location exists; the fallback renders it but the alert
	// must not embed it.
	require.NoError(t, f.appData.SaveLocation(context.Background(),
		appdata.Location{Lat: 45.76, Lon: 4.83}))
	require.Equal(t, http.StatusAccepted,
		f.do(http.MethodPost, "/api/v1/position/error", `{}`).Code)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "0612345678"}`).Code)
	f.do(http.MethodPost, "/api/v1/sos/sample", `{"x": 60}`)

	rec := f.do(http.MethodPost, "/api/v1/sos/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Contains(t, body["message"], "Position GPS indisponible")

	require.Len(t, f.alerts.alerts, 1)
	assert.False(t, f.alerts.alerts[0].HasPosition)
}

func TestConfirmSOSWithoutFall(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	rec := f.do(http.MethodPost, "/api/v1/sos/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDismissSOSResumesMonitoring(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/sos/arm", `{"phone": "0612345678"}`).Code)
	f.do(http.MethodPost, "/api/v1/sos/sample", `{"x": 60}`)

	rec := f.do(http.MethodPost, "/api/v1/sos/dismiss", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "armed", body["state"])
	assert.Empty(t, f.alerts.alerts)
}
