// Package provisioning installs cache generations: it populates the store for
// the current version label and garbage-collects every other generation,
// keeping exactly one generation active at steady state.
package provisioning

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/observability/metrics"
)

// State is the provisioning lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateProvisioning
	StateReady
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProvisioning:
		return "provisioning"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrProvisioningFailed reports that a manifest resource could not be
// fetched during population. The previous generation stays authoritative.
var ErrProvisioningFailed = errors.New("provisioning failed")

// ErrProvisioningInProgress reports a re-entrant Provision call while a run
// is still in flight.
var ErrProvisioningInProgress = errors.New("provisioning already in progress")

// Provisioner drives the install-time cache setup for one version label.
type Provisioner struct {
	repo     cachestore.Repository
	fetcher  cachestore.Fetcher
	version  string
	manifest []string
	log      logger.Logger
	metrics  *metrics.Metrics

	mu    sync.Mutex
	state State
}

// New creates a Provisioner for the given version and manifest.
func New(repo cachestore.Repository, fetcher cachestore.Fetcher, version string, manifest []string, log logger.Logger, m *metrics.Metrics) *Provisioner {
	return &Provisioner{
		repo:     repo,
		fetcher:  fetcher,
		version:  version,
		manifest: manifest,
		log:      log,
		metrics:  m,
		state:    StateUninitialized,
	}
}

// State returns the current provisioning state.
func (p *Provisioner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Version returns the version label this provisioner installs.
func (p *Provisioner) Version() string {
	return p.version
}

// Provision runs the install algorithm: skip population when the current
// generation already exists, otherwise populate it in full, and only after a
// complete population delete every differently named store. A failed
// population leaves earlier generations untouched and parks the provisioner
// in StateFailed until the next call.
func (p *Provisioner) Provision(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateProvisioning {
		p.mu.Unlock()
		return ErrProvisioningInProgress
	}
	p.state = StateProvisioning
	p.mu.Unlock()

	err := p.run(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateFailed
		return err
	}
	p.state = StateReady
	return nil
}

func (p *Provisioner) run(ctx context.Context) error {
	names, err := p.repo.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("%w: list stores: %w", ErrProvisioningFailed, err)
	}

	if slices.Contains(names, p.version) {
		// Idempotent re-entrance: the generation is already installed.
		// Stale deletion still runs in case a previous run stopped between
		// population and cleanup.
		p.log.Debug("cache generation already present", logger.String("version", p.version))
		p.metrics.ProvisionRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return p.deleteStale(ctx, names)
	}

	p.log.Info("populating cache generation",
		logger.String("version", p.version),
		logger.Int("manifest_size", len(p.manifest)))

	if err := p.repo.Open(ctx, p.version); err != nil {
		p.metrics.ProvisionRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("%w: open store: %w", ErrProvisioningFailed, err)
	}
	if err := p.repo.Populate(ctx, p.version, p.manifest, p.fetcher); err != nil {
		// The previous generation, if any, remains authoritative. Drop the
		// empty registration so the next install signal re-enters
		// population instead of mistaking it for an installed generation.
		// Surfaced as a log only.
		p.log.Error("cache population failed, previous generation remains active",
			logger.String("version", p.version),
			logger.Error(err))
		if delErr := p.repo.Delete(ctx, p.version); delErr != nil {
			p.log.Warn("failed to drop unpopulated store", logger.Error(delErr))
		}
		p.metrics.ProvisionRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
	}

	if err := p.deleteStale(ctx, names); err != nil {
		p.metrics.ProvisionRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return err
	}

	p.log.Info("cache generation ready", logger.String("version", p.version))
	p.metrics.ProvisionRuns.WithLabelValues(metrics.OutcomeReady).Inc()
	return nil
}

// deleteStale removes every store whose name differs from the current
// version. Runs only after the current generation is fully populated.
func (p *Provisioner) deleteStale(ctx context.Context, names []string) error {
	for _, name := range names {
		if name == p.version {
			continue
		}
		p.log.Info("deleting stale cache generation", logger.String("version", name))
		if err := p.repo.Delete(ctx, name); err != nil {
			return fmt.Errorf("%w: delete stale store %s: %w", ErrProvisioningFailed, name, err)
		}
	}
	return nil
}
