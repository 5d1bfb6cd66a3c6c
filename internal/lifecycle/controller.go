// Package lifecycle tracks the installable-app lifecycle: capturing the host
// install prompt, registering the background worker, and surfacing the
// install and reload affordances.
package lifecycle

import (
	"context"
	"sync"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
)

// State is the install lifecycle state.
type State int

const (
	StateNotInstallable State = iota
	StateInstallable
	StateInstalled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotInstallable:
		return "not-installable"
	case StateInstallable:
		return "installable"
	case StateInstalled:
		return "installed"
	default:
		return "unknown"
	}
}

// PromptOutcome is the user's answer to the install prompt.
type PromptOutcome string

const (
	OutcomeAccepted  PromptOutcome = "accepted"
	OutcomeDismissed PromptOutcome = "dismissed"
)

// Sentinel errors.
var (
	// ErrNoPromptCaptured reports an install trigger before the host
	// signaled installability, or after the captured prompt was consumed.
	ErrNoPromptCaptured = errors.New("no install prompt captured")

	// ErrInstallNotSupported reports that the host lacks worker support.
	// The install affordance stays disabled; not surfaced as a dialog.
	ErrInstallNotSupported = errors.New("install not supported by host")
)

// InstallPrompt is a captured install-availability event. Its prompt can be
// replayed exactly once; a consumed prompt cannot be reused.
type InstallPrompt interface {
	Prompt(ctx context.Context) (PromptOutcome, error)
}

// Affordances is the UI surface of the controller: exactly two user actions.
type Affordances interface {
	SetInstallEnabled(enabled bool)
	SetReloadEnabled(enabled bool)
}

// WorkerRegistrar registers the background worker, which runs cache
// provisioning. Register returns ErrInstallNotSupported when the host has no
// worker capability.
type WorkerRegistrar interface {
	Register(ctx context.Context) error
}

// Reloader performs the full reload that lets a newly installed worker take
// control.
type Reloader interface {
	Reload()
}

// Controller observes host install signals and drives the affordances.
type Controller struct {
	affordances Affordances
	registrar   WorkerRegistrar
	reloader    Reloader
	log         logger.Logger

	mu              sync.Mutex
	state           State
	updateAvailable bool
	prompt          InstallPrompt
	listening       bool
	offlineCapable  bool
}

// NewController creates a Controller in StateNotInstallable, listening for
// installability signals.
func NewController(affordances Affordances, registrar WorkerRegistrar, reloader Reloader, log logger.Logger) *Controller {
	return &Controller{
		affordances: affordances,
		registrar:   registrar,
		reloader:    reloader,
		log:         log,
		state:       StateNotInstallable,
		listening:   true,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UpdateAvailable reports whether a new worker version finished installing
// while a previous one was in control.
func (c *Controller) UpdateAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateAvailable
}

// OfflineCapable reports whether worker registration succeeded.
func (c *Controller) OfflineCapable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offlineCapable
}

// Start begins the lifecycle. When already running in the installed
// (standalone) context, the install signals never fire: registration happens
// immediately.
func (c *Controller) Start(ctx context.Context, standalone bool) {
	if standalone {
		c.log.Info("running as installed app")
		c.mu.Lock()
		c.state = StateInstalled
		c.listening = false
		c.mu.Unlock()
		c.registerWorker(ctx)
		return
	}
	c.log.Info("running as web page")
}

// HandleInstallAvailable captures the install prompt event and enables the
// install affordance. Ignored once the prompt has been consumed.
func (c *Controller) HandleInstallAvailable(prompt InstallPrompt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listening || c.state == StateInstalled {
		return
	}
	c.prompt = prompt
	c.state = StateInstallable
	c.affordances.SetInstallEnabled(true)
}

// TriggerInstall replays the captured prompt. Whatever the outcome, the
// install affordance is disabled and further installability signals are
// ignored: a consumed prompt cannot be reused.
func (c *Controller) TriggerInstall(ctx context.Context) (PromptOutcome, error) {
	c.mu.Lock()
	prompt := c.prompt
	if prompt == nil {
		c.mu.Unlock()
		return "", ErrNoPromptCaptured
	}
	c.prompt = nil
	c.listening = false
	c.affordances.SetInstallEnabled(false)
	c.mu.Unlock()

	outcome, err := prompt.Prompt(ctx)
	if err != nil {
		return "", err
	}
	switch outcome {
	case OutcomeAccepted:
		c.log.Info("install accepted")
	case OutcomeDismissed:
		c.log.Info("install dismissed")
	}
	return outcome, nil
}

// HandleAppInstalled reacts to the host's "app was installed" signal by
// registering the background worker.
func (c *Controller) HandleAppInstalled(ctx context.Context) {
	c.mu.Lock()
	c.state = StateInstalled
	c.mu.Unlock()
	c.registerWorker(ctx)
}

// HandleUpdateInstalled reacts to a new worker version finishing its install.
// The reload affordance is enabled only when a controller is already active,
// i.e. this is an update rather than the first install.
func (c *Controller) HandleUpdateInstalled(controllerActive bool) {
	if !controllerActive {
		return
	}
	c.mu.Lock()
	c.updateAvailable = true
	c.mu.Unlock()
	c.log.Info("update installed, reload to activate")
	c.affordances.SetReloadEnabled(true)
}

// TriggerReload performs the full reload that hands control to the new
// worker.
func (c *Controller) TriggerReload() {
	c.mu.Lock()
	c.updateAvailable = false
	c.mu.Unlock()
	c.affordances.SetReloadEnabled(false)
	c.reloader.Reload()
}

// registerWorker attempts worker registration. Failure is degraded but not
// fatal: the app keeps running without offline capability.
func (c *Controller) registerWorker(ctx context.Context) {
	c.log.Info("registering background worker")
	if err := c.registrar.Register(ctx); err != nil {
		if errors.Is(err, ErrInstallNotSupported) {
			c.log.Warn("background worker not supported by host")
		} else {
			c.log.Error("worker registration failed, continuing without offline support",
				logger.Error(err))
		}
		return
	}
	c.mu.Lock()
	c.offlineCapable = true
	c.mu.Unlock()
}
