package geotrack

import (
	"sync"

	"github.com/equitrack/equitrack/internal/weather"
)

// PositionView is the last rendered map position.
type PositionView struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	FromCache bool    `json:"from_cache"`
}

// ViewSnapshot is the full rendered state exposed to clients.
type ViewSnapshot struct {
	Position            *PositionView    `json:"position,omitempty"`
	PositionUnavailable bool             `json:"position_unavailable"`
	Weather             *weather.Summary `json:"weather,omitempty"`
	WeatherUnavailable  bool             `json:"weather_unavailable"`
}

// ViewState collects pipeline render output for polling clients. It
// implements Renderer, WeatherView, and StatusView.
type ViewState struct {
	mu       sync.Mutex
	snapshot ViewSnapshot
}

// NewViewState returns an empty view state.
func NewViewState() *ViewState {
	return &ViewState{}
}

// RenderPosition records the position to show on the map.
func (v *ViewState) RenderPosition(lat, lon float64, fromCache bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot.Position = &PositionView{Lat: lat, Lon: lon, FromCache: fromCache}
	v.snapshot.PositionUnavailable = false
}

// ShowWeather records the weather summary to display.
func (v *ViewState) ShowWeather(summary weather.Summary) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := summary
	v.snapshot.Weather = &s
	v.snapshot.WeatherUnavailable = false
}

// ShowWeatherUnavailable marks the weather panel as unavailable.
func (v *ViewState) ShowWeatherUnavailable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot.Weather = nil
	v.snapshot.WeatherUnavailable = true
}

// ShowPositionUnavailable marks the map as having no position at all.
func (v *ViewState) ShowPositionUnavailable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot.Position = nil
	v.snapshot.PositionUnavailable = true
}

// Snapshot returns a copy of the current view state.
func (v *ViewState) Snapshot() ViewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}
