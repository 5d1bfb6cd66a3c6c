package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/appdata"
	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/weather"
)

// initWeatherRoutes registers the forecast endpoints.
func (c *Controller) initWeatherRoutes() {
	if c.weather == nil {
		return
	}
	w := c.Group.Group("/weather")
	w.GET("/summary", c.WeatherSummary)
	w.GET("/detail", c.WeatherDetail)
}

// WeatherSummary returns the simple forecast summary for the current
// position. When the provider is unreachable the last fetched payload is
// served instead, marked stale.
func (c *Controller) WeatherSummary(ctx echo.Context) error {
	loc, err := c.resolveLocation(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "No position available", http.StatusBadRequest)
	}

	forecast, payload, err := c.weather.SimpleForecast(ctx.Request().Context(), loc.Lat, loc.Lon)
	stale := false
	if err != nil {
		c.log.Warn("live forecast unavailable, trying cached payload", logger.Error(err))
		forecast, err = c.cachedForecast(ctx.Request().Context(), entities.KeyWeatherSimple)
		if err != nil {
			return c.HandleError(ctx, err, "Weather unavailable", http.StatusServiceUnavailable)
		}
		stale = true
	} else if err := c.appData.SaveWeather(ctx.Request().Context(), entities.KeyWeatherSimple, payload); err != nil {
		c.log.Warn("failed to cache forecast payload", logger.Error(err))
	}

	summary, err := weather.Summarize(forecast, time.Now())
	if err != nil {
		return c.HandleError(ctx, err, "Malformed forecast", http.StatusBadGateway)
	}
	summary.Stale = stale
	return ctx.JSON(http.StatusOK, summary)
}

// WeatherDetail returns the hourly multi-day forecast for the current
// position, with the same cached fallback as the summary.
func (c *Controller) WeatherDetail(ctx echo.Context) error {
	loc, err := c.resolveLocation(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "No position available", http.StatusBadRequest)
	}

	forecast, payload, err := c.weather.DetailForecast(ctx.Request().Context(), loc.Lat, loc.Lon)
	stale := false
	if err != nil {
		c.log.Warn("live forecast unavailable, trying cached payload", logger.Error(err))
		forecast, err = c.cachedForecast(ctx.Request().Context(), entities.KeyWeatherDetail)
		if err != nil {
			return c.HandleError(ctx, err, "Weather unavailable", http.StatusServiceUnavailable)
		}
		stale = true
	} else if err := c.appData.SaveWeather(ctx.Request().Context(), entities.KeyWeatherDetail, payload); err != nil {
		c.log.Warn("failed to cache forecast payload", logger.Error(err))
	}

	items, err := weather.HourlyItems(forecast, time.Now())
	if err != nil {
		return c.HandleError(ctx, err, "Malformed forecast", http.StatusBadGateway)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"hours": items,
		"stale": stale,
	})
}

// resolveLocation prefers the session's fresh position, then the persisted
// last known one.
func (c *Controller) resolveLocation(ctx context.Context) (appdata.Location, error) {
	if c.pipeline != nil {
		if loc, err := c.pipeline.FreshPosition(); err == nil {
			return loc, nil
		}
	}
	return c.appData.LastKnownLocation(ctx)
}

// cachedForecast loads and decodes the last fetched payload for slot key.
func (c *Controller) cachedForecast(ctx context.Context, key string) (*weather.Forecast, error) {
	payload, err := c.appData.LastKnownWeather(ctx, key)
	if err != nil {
		return nil, err
	}
	var forecast weather.Forecast
	if err := json.Unmarshal(payload, &forecast); err != nil {
		return nil, errors.Wrap(err).
			Component("api").
			Category(errors.CategoryState).
			Context("key", key).
			Build()
	}
	return &forecast, nil
}
