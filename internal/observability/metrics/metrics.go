// Package metrics defines the Prometheus instruments for the offline cache
// and acquisition pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provisioning outcome label values.
const (
	OutcomeReady   = "ready"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Weather fetch outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics bundles all application counters.
type Metrics struct {
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CacheWriteBacks prometheus.Counter
	ProvisionRuns   *prometheus.CounterVec
	WeatherFetches  *prometheus.CounterVec
	SOSAlerts       prometheus.Counter
}

// New creates and registers the application metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "equitrack_cache_hits_total",
			Help: "Requests served from the resource cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "equitrack_cache_misses_total",
			Help: "Requests not found in any cache generation.",
		}),
		CacheWriteBacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "equitrack_cache_writebacks_total",
			Help: "Network responses written back into the current generation.",
		}),
		ProvisionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "equitrack_provision_runs_total",
			Help: "Cache provisioning runs by outcome.",
		}, []string{"outcome"}),
		WeatherFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "equitrack_weather_fetches_total",
			Help: "Weather provider fetches by outcome.",
		}, []string{"outcome"}),
		SOSAlerts: factory.NewCounter(prometheus.CounterOpts{
			Name: "equitrack_sos_alerts_total",
			Help: "Fall alerts raised by the SOS monitor.",
		}),
	}
}

// NewTesting creates metrics on a private registry, for tests.
func NewTesting() *Metrics {
	return New(prometheus.NewRegistry())
}
