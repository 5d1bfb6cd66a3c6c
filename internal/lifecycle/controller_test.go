package lifecycle

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/equitrack/internal/logger"
)

// fakeAffordances records the enabled state of the two user actions.
type fakeAffordances struct {
	installEnabled bool
	reloadEnabled  bool
}

func (f *fakeAffordances) SetInstallEnabled(enabled bool) { f.installEnabled = enabled }
func (f *fakeAffordances) SetReloadEnabled(enabled bool)  { f.reloadEnabled = enabled }

// fakeRegistrar counts registrations and optionally fails.
type fakeRegistrar struct {
	err   error
	calls int
}

func (f *fakeRegistrar) Register(context.Context) error {
	f.calls++
	return f.err
}

// fakePrompt replays a canned outcome and counts uses.
type fakePrompt struct {
	outcome PromptOutcome
	uses    int
}

func (f *fakePrompt) Prompt(context.Context) (PromptOutcome, error) {
	f.uses++
	return f.outcome, nil
}

// fakeReloader counts reloads.
type fakeReloader struct {
	reloads int
}

func (f *fakeReloader) Reload() { f.reloads++ }

func newTestController() (*Controller, *fakeAffordances, *fakeRegistrar, *fakeReloader) {
	affordances := &fakeAffordances{}
	registrar := &fakeRegistrar{}
	reloader := &fakeReloader{}
	c := NewController(affordances, registrar, reloader, logger.Silent())
	return c, affordances, registrar, reloader
}

func TestController_InstallFlow(t *testing.T) {
	c, affordances, registrar, _ := newTestController()
	ctx := context.Background()

	c.Start(ctx, false)
	assert.Equal(t, StateNotInstallable, c.State())
	assert.False(t, affordances.installEnabled)

	prompt := &fakePrompt{outcome: OutcomeAccepted}
	c.HandleInstallAvailable(prompt)
	assert.Equal(t, StateInstallable, c.State())
	assert.True(t, affordances.installEnabled)

	outcome, err := c.TriggerInstall(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)
	assert.Equal(t, 1, prompt.uses)
	assert.False(t, affordances.installEnabled)

	c.HandleAppInstalled(ctx)
	assert.Equal(t, StateInstalled, c.State())
	assert.Equal(t, 1, registrar.calls)
	assert.True(t, c.OfflineCapable())
}

func TestController_PromptIsSingleUse(t *testing.T) {
	c, affordances, _, _ := newTestController()
	ctx := context.Background()

	c.HandleInstallAvailable(&fakePrompt{outcome: OutcomeDismissed})
	_, err := c.TriggerInstall(ctx)
	require.NoError(t, err)

	// A consumed prompt cannot be replayed.
	_, err = c.TriggerInstall(ctx)
	assert.ErrorIs(t, err, ErrNoPromptCaptured)

	// New installability signals are ignored after consumption.
	c.HandleInstallAvailable(&fakePrompt{outcome: OutcomeAccepted})
	assert.False(t, affordances.installEnabled)
	_, err = c.TriggerInstall(ctx)
	assert.ErrorIs(t, err, ErrNoPromptCaptured)
}

func TestController_TriggerInstallWithoutSignal(t *testing.T) {
	c, _, _, _ := newTestController()

	_, err := c.TriggerInstall(context.Background())
	assert.ErrorIs(t, err, ErrNoPromptCaptured)
}

func TestController_StandaloneSkipsInstallSignals(t *testing.T) {
	c, affordances, registrar, _ := newTestController()

	c.Start(context.Background(), true)
	assert.Equal(t, StateInstalled, c.State())
	assert.Equal(t, 1, registrar.calls)
	assert.True(t, c.OfflineCapable())

	// Install signals arriving afterwards change nothing.
	c.HandleInstallAvailable(&fakePrompt{outcome: OutcomeAccepted})
	assert.False(t, affordances.installEnabled)
}

func TestController_RegistrationFailureIsDegraded(t *testing.T) {
	affordances := &fakeAffordances{}
	registrar := &fakeRegistrar{err: fmt.Errorf("registration threw")}
	c := NewController(affordances, registrar, &fakeReloader{}, logger.Silent())

	c.HandleAppInstalled(context.Background())

	// Installed, but running without offline capability.
	assert.Equal(t, StateInstalled, c.State())
	assert.False(t, c.OfflineCapable())
}

func TestController_HostWithoutWorkerSupport(t *testing.T) {
	affordances := &fakeAffordances{}
	registrar := &fakeRegistrar{err: ErrInstallNotSupported}
	c := NewController(affordances, registrar, &fakeReloader{}, logger.Silent())

	c.Start(context.Background(), true)
	assert.False(t, c.OfflineCapable())
}

func TestController_UpdateEnablesReloadOnlyWhenActive(t *testing.T) {
	c, affordances, _, _ := newTestController()

	// First install: no controller active yet, no reload affordance.
	c.HandleUpdateInstalled(false)
	assert.False(t, c.UpdateAvailable())
	assert.False(t, affordances.reloadEnabled)

	// Update while a controller is active.
	c.HandleUpdateInstalled(true)
	assert.True(t, c.UpdateAvailable())
	assert.True(t, affordances.reloadEnabled)
}

func TestController_TriggerReload(t *testing.T) {
	c, affordances, _, reloader := newTestController()

	c.HandleUpdateInstalled(true)
	c.TriggerReload()

	assert.Equal(t, 1, reloader.reloads)
	assert.False(t, c.UpdateAvailable())
	assert.False(t, affordances.reloadEnabled)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not-installable", StateNotInstallable.String())
	assert.Equal(t, "installable", StateInstallable.String())
	assert.Equal(t, "installed", StateInstalled.String())
}
