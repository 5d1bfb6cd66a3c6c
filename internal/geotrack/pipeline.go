// Package geotrack consumes the continuous position stream, forwards fresh
// coordinates to the map renderer and the weather client, and falls back to
// the application data cache when acquisition fails.
package geotrack

import (
	"context"
	"encoding/json"
	"time"

	"github.com/equitrack/equitrack/internal/appdata"
	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/weather"
)

// ErrPositionUnavailable reports that no fresh fix has occurred and no
// cached fallback exists. Terminal for the session until a fresh fix
// arrives.
var ErrPositionUnavailable = errors.New("position unavailable")

// Fix is one live GPS reading.
type Fix struct {
	Lat float64
	Lon float64
}

// Renderer renders or moves the position marker. FromCache marks fallback
// coordinates so the view can show the offline banner.
type Renderer interface {
	RenderPosition(lat, lon float64, fromCache bool)
}

// WeatherView presents forecast results.
type WeatherView interface {
	ShowWeather(summary weather.Summary)
	ShowWeatherUnavailable()
}

// StatusView presents acquisition status messages.
type StatusView interface {
	ShowPositionUnavailable()
}

// ForecastSource fetches the simple forecast. Satisfied by *weather.Client.
type ForecastSource interface {
	SimpleForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, []byte, error)
}

// Pipeline drives one session of position acquisition. Handlers are invoked
// in stream order and tolerate re-entrant invocation; all session state
// lives behind the Session's lock.
type Pipeline struct {
	session *Session
	store   appdata.Store
	source  ForecastSource
	render  Renderer
	view    WeatherView
	status  StatusView
	log     logger.Logger
	now     func() time.Time
}

// NewPipeline creates a Pipeline with a fresh session.
func NewPipeline(store appdata.Store, source ForecastSource, render Renderer, view WeatherView, status StatusView, log logger.Logger) *Pipeline {
	return &Pipeline{
		session: NewSession(),
		store:   store,
		source:  source,
		render:  render,
		view:    view,
		status:  status,
		log:     log,
		now:     time.Now,
	}
}

// Session exposes the session state, for the SOS module and the API.
func (p *Pipeline) Session() *Session {
	return p.session
}

// HandleFix processes one fresh fix: persist it, render it, and fetch the
// weather once per session.
func (p *Pipeline) HandleFix(ctx context.Context, fix Fix) {
	p.session.RecordFix(fix.Lat, fix.Lon)

	if err := p.store.SaveLocation(ctx, appdata.Location{Lat: fix.Lat, Lon: fix.Lon}); err != nil {
		p.log.Warn("failed to persist position", logger.Error(err))
	}

	p.log.Debug("position update",
		logger.Float64("lat", fix.Lat),
		logger.Float64("lon", fix.Lon))
	p.render.RenderPosition(fix.Lat, fix.Lon, false)

	if p.session.LatchWeather() {
		p.fetchWeather(ctx, fix.Lat, fix.Lon)
	}
}

// HandleError processes an acquisition failure. The cached fallback is used
// only while no fresh fix has occurred this session; once fresh data has
// rendered, later stream errors change nothing.
func (p *Pipeline) HandleError(ctx context.Context, cause error) {
	p.log.Warn("position acquisition error", logger.Error(cause))

	if p.session.HasFreshFix() {
		return
	}

	loc, err := p.store.LastKnownLocation(ctx)
	if err != nil {
		if !errors.Is(err, appdata.ErrNotCached) {
			p.log.Error("failed to read cached position", logger.Error(err))
		}
		p.status.ShowPositionUnavailable()
		return
	}

	// Render from cache without promoting the coordinates to fresh: a
	// stale position must never feed the SOS message.
	p.render.RenderPosition(loc.Lat, loc.Lon, true)

	if p.session.LatchWeather() {
		p.fetchWeather(ctx, loc.Lat, loc.Lon)
	}
}

// FreshPosition returns the latest fresh coordinates, or
// ErrPositionUnavailable when none have been observed this session.
func (p *Pipeline) FreshPosition() (appdata.Location, error) {
	lat, lon, ok := p.session.FreshPosition()
	if !ok {
		return appdata.Location{}, ErrPositionUnavailable
	}
	return appdata.Location{Lat: lat, Lon: lon}, nil
}

func (p *Pipeline) fetchWeather(ctx context.Context, lat, lon float64) {
	forecast, payload, err := p.source.SimpleForecast(ctx, lat, lon)
	if err == nil {
		if saveErr := p.store.SaveWeather(ctx, entities.KeyWeatherSimple, payload); saveErr != nil {
			p.log.Warn("failed to persist weather payload", logger.Error(saveErr))
		}
		summary, sumErr := weather.Summarize(forecast, p.now())
		if sumErr != nil {
			p.log.Error("failed to summarize forecast", logger.Error(sumErr))
			p.view.ShowWeatherUnavailable()
			return
		}
		p.view.ShowWeather(summary)
		return
	}

	p.log.Warn("weather fetch failed, trying cached payload", logger.Error(err))

	cached, cacheErr := p.store.LastKnownWeather(ctx, entities.KeyWeatherSimple)
	if cacheErr != nil {
		p.view.ShowWeatherUnavailable()
		return
	}
	var forecastFromCache weather.Forecast
	if jsonErr := json.Unmarshal(cached, &forecastFromCache); jsonErr != nil {
		p.log.Error("corrupt cached weather payload", logger.Error(jsonErr))
		p.view.ShowWeatherUnavailable()
		return
	}
	summary, sumErr := weather.Summarize(&forecastFromCache, p.now())
	if sumErr != nil {
		p.view.ShowWeatherUnavailable()
		return
	}
	summary.Stale = true
	p.view.ShowWeather(summary)
}
