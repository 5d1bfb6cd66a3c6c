package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/carelog"
	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
)

// initCareLogRoutes registers care log and horse profile endpoints.
func (c *Controller) initCareLogRoutes() {
	if c.careLog == nil {
		return
	}
	care := c.Group.Group("/care")
	care.GET("/events", c.ListCareEvents)
	care.POST("/events", c.CreateCareEvent)
	care.DELETE("/events/:id", c.DeleteCareEvent)
	care.GET("/calendar", c.CareCalendar)
	care.GET("/profile", c.GetProfile)
	care.PUT("/profile", c.SaveProfile)
}

// ListCareEvents returns all care events, most recent first.
func (c *Controller) ListCareEvents(ctx echo.Context) error {
	events, err := c.careLog.ListEvents(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list care events", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// CreateCareEvent appends a new care event.
func (c *Controller) CreateCareEvent(ctx echo.Context) error {
	var event entities.CareEvent
	if err := ctx.Bind(&event); err != nil {
		return c.HandleError(ctx, err, "Invalid care event payload", http.StatusBadRequest)
	}
	if err := c.careLog.AddEvent(ctx.Request().Context(), &event); err != nil {
		var enhanced *errors.EnhancedError
		if errors.As(err, &enhanced) && enhanced.GetCategory() == errors.CategoryValidation {
			return c.HandleError(ctx, err, "Invalid care event", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "Failed to save care event", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusCreated, event)
}

// DeleteCareEvent removes a care event by ID.
func (c *Controller) DeleteCareEvent(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid event ID", http.StatusBadRequest)
	}
	if err := c.careLog.DeleteEvent(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, carelog.ErrEventNotFound) {
			return c.HandleError(ctx, err, "Care event not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to delete care event", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CareCalendar returns the event log shaped for the calendar widget.
func (c *Controller) CareCalendar(ctx echo.Context) error {
	events, err := c.careLog.ListEvents(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list care events", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, carelog.ToCalendarEvents(events))
}

// GetProfile returns the saved horse profile.
func (c *Controller) GetProfile(ctx echo.Context) error {
	profile, err := c.careLog.GetProfile(ctx.Request().Context())
	if errors.Is(err, carelog.ErrProfileNotFound) {
		return c.HandleError(ctx, err, "No profile saved", http.StatusNotFound)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}

// SaveProfile stores the horse profile, replacing any previous one.
func (c *Controller) SaveProfile(ctx echo.Context) error {
	var profile entities.HorseProfile
	if err := ctx.Bind(&profile); err != nil {
		return c.HandleError(ctx, err, "Invalid profile payload", http.StatusBadRequest)
	}
	if err := c.careLog.SaveProfile(ctx.Request().Context(), &profile); err != nil {
		return c.HandleError(ctx, err, "Failed to save profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}
