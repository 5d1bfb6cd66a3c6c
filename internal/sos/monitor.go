// Package sos implements fall detection and emergency alert dispatch.
// Acceleration samples stream in from the device; when their magnitude
// crosses the fall threshold the monitor pauses and waits for the rider to
// confirm or dismiss the alert.
package sos

import (
	"math"
	"strings"
	"sync"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
)

// State tracks the monitor lifecycle.
type State int

const (
	// StateIdle means monitoring has not been armed.
	StateIdle State = iota
	// StateArmed means acceleration samples are being analyzed.
	StateArmed
	// StateFallDetected means a fall fired and the alert awaits a decision.
	StateFallDetected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFallDetected:
		return "fall_detected"
	default:
		return "unknown"
	}
}

// ErrInvalidPhone is returned when the emergency number is too short.
var ErrInvalidPhone = errors.New("invalid emergency phone number")

// Sample is one accelerometer reading in m/s², gravity included.
type Sample struct {
	X, Y, Z float64
}

// Force returns the magnitude of the acceleration vector.
func (s Sample) Force() float64 {
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

// Monitor analyzes acceleration samples for falls.
type Monitor struct {
	threshold      float64
	minPhoneDigits int
	log            logger.Logger

	mu    sync.Mutex
	state State
	phone string
}

// NewMonitor creates a monitor from settings.
func NewMonitor(settings conf.SOSSettings, log logger.Logger) *Monitor {
	if log == nil {
		log = logger.Silent()
	}
	return &Monitor{
		threshold:      settings.FallThreshold,
		minPhoneDigits: settings.MinPhoneDigits,
		log:            log,
	}
}

// Arm validates the emergency number and starts monitoring. The number is
// kept with its original spacing; validation only strips whitespace.
func (m *Monitor) Arm(phone string) error {
	stripped := strings.ReplaceAll(phone, " ", "")
	if len(stripped) < m.minPhoneDigits {
		return errors.Newf("%w: %d characters, need %d", ErrInvalidPhone, len(stripped), m.minPhoneDigits).
			Component("sos").
			Category(errors.CategoryValidation).
			Build()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.phone = phone
	m.state = StateArmed
	m.log.Info("fall monitoring armed")
	return nil
}

// Disarm stops monitoring entirely.
func (m *Monitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.phone = ""
}

// HandleSample analyzes one acceleration reading. It returns true when the
// reading crosses the fall threshold while armed; the monitor then pauses
// until Confirm or Dismiss is called, so a burst of over-threshold samples
// raises a single alert.
func (m *Monitor) HandleSample(sample Sample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateArmed {
		return false
	}
	force := sample.Force()
	if force <= m.threshold {
		return false
	}

	m.state = StateFallDetected
	m.log.Warn("fall detected", logger.Float64("force", force))
	return true
}

// Confirm acknowledges the pending fall and returns the emergency number to
// alert. Monitoring stays paused; the rider re-arms explicitly.
func (m *Monitor) Confirm() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFallDetected {
		return "", false
	}
	m.state = StateIdle
	return m.phone, true
}

// Dismiss cancels the pending fall and resumes monitoring.
func (m *Monitor) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateFallDetected {
		m.state = StateArmed
	}
}

// State returns the current monitor state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
