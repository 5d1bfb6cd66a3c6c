package geotrack

import "sync"

// Session holds the per-session acquisition state: whether a fresh fix has
// been observed, the latest fresh coordinates, and the weather fetched-once
// latch. Explicit rather than package-level so handlers share one obvious
// owner and tests can reset it.
type Session struct {
	mu             sync.Mutex
	hasFreshFix    bool
	lat, lon       float64
	weatherFetched bool
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Reset clears all session state. Called at session start (page reload).
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFreshFix = false
	s.lat, s.lon = 0, 0
	s.weatherFetched = false
}

// RecordFix stores a fresh fix.
func (s *Session) RecordFix(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFreshFix = true
	s.lat, s.lon = lat, lon
}

// FreshPosition returns the latest fresh coordinates of this session.
// The second result is false when no fresh fix has occurred yet; cached
// fallback positions are never reported here.
func (s *Session) FreshPosition() (lat, lon float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lat, s.lon, s.hasFreshFix
}

// HasFreshFix reports whether any fresh fix has been observed this session.
func (s *Session) HasFreshFix() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasFreshFix
}

// LatchWeather flips the fetched-once latch. It returns true exactly once
// per session: the caller that wins the latch performs the fetch, and the
// latch stays set whatever that fetch's outcome.
func (s *Session) LatchWeather() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weatherFetched {
		return false
	}
	s.weatherFetched = true
	return true
}

// WeatherFetched reports whether the weather fetch has been latched.
func (s *Session) WeatherFetched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weatherFetched
}
