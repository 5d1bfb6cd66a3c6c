package lifecycle

import (
	"context"
	"sync"
)

// RegistrarFunc adapts a function to WorkerRegistrar.
type RegistrarFunc func(ctx context.Context) error

func (f RegistrarFunc) Register(ctx context.Context) error { return f(ctx) }

// BridgeSnapshot is the affordance state a polling client renders.
type BridgeSnapshot struct {
	InstallEnabled  bool `json:"install_enabled"`
	ReloadEnabled   bool `json:"reload_enabled"`
	ReloadRequested bool `json:"reload_requested"`
}

// Bridge relays controller decisions to a remote host client. It implements
// Affordances and Reloader, and mints InstallPrompt values whose outcome the
// client reports before triggering the install.
type Bridge struct {
	mu          sync.Mutex
	snapshot    BridgeSnapshot
	nextOutcome PromptOutcome
}

// NewBridge returns a bridge with all affordances disabled.
func NewBridge() *Bridge {
	return &Bridge{}
}

// SetInstallEnabled records the install affordance state.
func (b *Bridge) SetInstallEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.InstallEnabled = enabled
}

// SetReloadEnabled records the reload affordance state.
func (b *Bridge) SetReloadEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.ReloadEnabled = enabled
}

// Reload asks the client to perform a full reload on its next poll.
func (b *Bridge) Reload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.ReloadRequested = true
}

// AckReload clears the pending reload request once the client performed it.
func (b *Bridge) AckReload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot.ReloadRequested = false
}

// Snapshot returns the current affordance state.
func (b *Bridge) Snapshot() BridgeSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// SetNextOutcome records the answer the user gave to the host prompt. The
// client reports it right before triggering the install.
func (b *Bridge) SetNextOutcome(outcome PromptOutcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextOutcome = outcome
}

// NewPrompt mints the prompt captured on an installability signal. Its
// outcome is whatever the client reported last; absent a report the prompt
// counts as dismissed.
func (b *Bridge) NewPrompt() InstallPrompt {
	return bridgePrompt{bridge: b}
}

type bridgePrompt struct {
	bridge *Bridge
}

func (p bridgePrompt) Prompt(_ context.Context) (PromptOutcome, error) {
	p.bridge.mu.Lock()
	defer p.bridge.mu.Unlock()
	outcome := p.bridge.nextOutcome
	p.bridge.nextOutcome = ""
	if outcome == "" {
		outcome = OutcomeDismissed
	}
	return outcome, nil
}
