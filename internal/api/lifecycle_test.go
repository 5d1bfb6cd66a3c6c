package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type installState struct {
	State           string `json:"state"`
	UpdateAvailable bool   `json:"update_available"`
	OfflineCapable  bool   `json:"offline_capable"`
	InstallEnabled  bool   `json:"install_enabled"`
	ReloadEnabled   bool   `json:"reload_enabled"`
	ReloadRequested bool   `json:"reload_requested"`
}

func getInstallState(t *testing.T, f *testFixture) installState {
	t.Helper()
	rec := f.do(http.MethodGet, "/api/v1/install/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state installState
	decodeJSON(t, rec, &state)
	return state
}

func TestInstallFlow(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	state := getInstallState(t, f)
	assert.Equal(t, "not-installable", state.State)
	assert.False(t, state.InstallEnabled)

	// Host signals installability.
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/available", "").Code)
	state = getInstallState(t, f)
	assert.Equal(t, "installable", state.State)
	assert.True(t, state.InstallEnabled)

	// User accepts the prompt.
	rec := f.do(http.MethodPost, "/api/v1/install/trigger", `{"outcome": "accepted"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeJSON(t, rec, &body)
	assert.Equal(t, "accepted", body["outcome"])

	// Host reports the app installed; worker registration provisions the
	// cache and offline capability comes up.
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/installed", "").Code)
	state = getInstallState(t, f)
	assert.Equal(t, "installed", state.State)
	assert.True(t, state.OfflineCapable)

	// The cache was provisioned as part of registration.
	rec = f.do(http.MethodGet, "/index.html", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTriggerInstallWithoutPrompt(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	rec := f.do(http.MethodPost, "/api/v1/install/trigger", `{"outcome": "accepted"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInstallPromptSingleUse(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/available", "").Code)
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/trigger", `{"outcome": "dismissed"}`).Code)

	// A consumed prompt cannot be replayed, and new signals are ignored.
	assert.Equal(t, http.StatusConflict,
		f.do(http.MethodPost, "/api/v1/install/trigger", `{"outcome": "accepted"}`).Code)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/available", "").Code)
	assert.False(t, getInstallState(t, f).InstallEnabled)
}

func TestStandaloneStartProvisionsImmediately(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/start", `{"standalone": true}`).Code)

	state := getInstallState(t, f)
	assert.Equal(t, "installed", state.State)
	assert.True(t, state.OfflineCapable)
}

func TestUpdateAndReloadFlow(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	// First install: no controller was active, no reload affordance.
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/updated", `{"controller_active": false}`).Code)
	assert.False(t, getInstallState(t, f).ReloadEnabled)

	// Update with an active controller enables reload.
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/updated", `{"controller_active": true}`).Code)
	state := getInstallState(t, f)
	assert.True(t, state.ReloadEnabled)
	assert.True(t, state.UpdateAvailable)

	// Reload hands control over and the client acknowledges.
	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/reload", "").Code)
	state = getInstallState(t, f)
	assert.True(t, state.ReloadRequested)
	assert.False(t, state.ReloadEnabled)
	assert.False(t, state.UpdateAvailable)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPost, "/api/v1/install/reload/ack", "").Code)
	assert.False(t, getInstallState(t, f).ReloadRequested)
}
