package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/geotrack"
)

// initGeoRoutes registers position ingestion and view endpoints.
func (c *Controller) initGeoRoutes() {
	if c.pipeline == nil {
		return
	}
	pos := c.Group.Group("/position")
	pos.POST("", c.ReportFix)
	pos.POST("/error", c.ReportFixError)
	pos.GET("", c.CurrentPosition)
	pos.POST("/session/reset", c.ResetSession)
	c.Group.GET("/view", c.ViewSnapshot)
}

type fixRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ReportFix ingests one fresh GPS reading from the device.
func (c *Controller) ReportFix(ctx echo.Context) error {
	var req fixRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid position payload", http.StatusBadRequest)
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return c.HandleError(ctx, errors.New("coordinates out of range"),
			"Invalid coordinates", http.StatusBadRequest)
	}
	c.pipeline.HandleFix(ctx.Request().Context(), geotrack.Fix{Lat: req.Lat, Lon: req.Lon})
	return ctx.NoContent(http.StatusAccepted)
}

type fixErrorRequest struct {
	Message string `json:"message"`
}

// ReportFixError ingests a position acquisition failure. The pipeline falls
// back to the last known position unless a fresh fix already arrived.
func (c *Controller) ReportFixError(ctx echo.Context) error {
	var req fixErrorRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid error payload", http.StatusBadRequest)
	}
	cause := errors.New("position acquisition failed")
	if req.Message != "" {
		cause = errors.New(req.Message)
	}
	c.pipeline.HandleError(ctx.Request().Context(), cause)
	return ctx.NoContent(http.StatusAccepted)
}

// CurrentPosition returns the session's fresh position, 404 when none
// arrived yet.
func (c *Controller) CurrentPosition(ctx echo.Context) error {
	loc, err := c.pipeline.FreshPosition()
	if errors.Is(err, geotrack.ErrPositionUnavailable) {
		return c.HandleError(ctx, err, "No fresh position this session", http.StatusNotFound)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read position", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, loc)
}

// ResetSession clears session state, rearming the one-shot weather fetch.
func (c *Controller) ResetSession(ctx echo.Context) error {
	c.pipeline.Session().Reset()
	return ctx.NoContent(http.StatusNoContent)
}

// ViewSnapshot returns the rendered map and weather state for polling
// clients.
func (c *Controller) ViewSnapshot(ctx echo.Context) error {
	if c.view == nil {
		return c.HandleError(ctx, errors.New("view state not configured"),
			"View unavailable", http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, c.view.Snapshot())
}
