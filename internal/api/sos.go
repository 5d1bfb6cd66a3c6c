package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/sos"
)

// initSOSRoutes registers fall monitoring endpoints.
func (c *Controller) initSOSRoutes() {
	if c.monitor == nil {
		return
	}
	g := c.Group.Group("/sos")
	g.POST("/arm", c.ArmSOS)
	g.POST("/disarm", c.DisarmSOS)
	g.POST("/sample", c.ReportSample)
	g.POST("/confirm", c.ConfirmSOS)
	g.POST("/dismiss", c.DismissSOS)
	g.GET("/state", c.SOSState)
}

type armRequest struct {
	Phone string `json:"phone"`
}

// ArmSOS validates the emergency number and starts fall monitoring.
func (c *Controller) ArmSOS(ctx echo.Context) error {
	var req armRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid payload", http.StatusBadRequest)
	}
	if err := c.monitor.Arm(req.Phone); err != nil {
		if errors.Is(err, sos.ErrInvalidPhone) {
			return c.HandleError(ctx, err, "Numéro trop court ou invalide !", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "Failed to arm monitoring", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"state": c.monitor.State().String()})
}

// DisarmSOS stops fall monitoring.
func (c *Controller) DisarmSOS(ctx echo.Context) error {
	c.monitor.Disarm()
	return ctx.JSON(http.StatusOK, map[string]string{"state": c.monitor.State().String()})
}

type sampleRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ReportSample ingests one accelerometer reading and reports whether it
// raised a fall alert.
func (c *Controller) ReportSample(ctx echo.Context) error {
	var req sampleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid sample payload", http.StatusBadRequest)
	}
	sample := sos.Sample{X: req.X, Y: req.Y, Z: req.Z}
	fall := c.monitor.HandleSample(sample)
	return ctx.JSON(http.StatusOK, map[string]any{
		"force": sample.Force(),
		"fall":  fall,
		"state": c.monitor.State().String(),
	})
}

// ConfirmSOS confirms the pending fall and dispatches the alert. Only a
// fresh session position is embedded; cached coordinates are never sent.
func (c *Controller) ConfirmSOS(ctx echo.Context) error {
	phone, ok := c.monitor.Confirm()
	if !ok {
		return c.HandleError(ctx, errors.New("no fall pending"),
			"No fall to confirm", http.StatusConflict)
	}

	alert := sos.Alert{Phone: phone, Time: time.Now()}
	if c.pipeline != nil {
		if loc, err := c.pipeline.FreshPosition(); err == nil {
			alert.Lat = loc.Lat
			alert.Lon = loc.Lon
			alert.HasPosition = true
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Dispatch(ctx.Request().Context(), alert); err != nil {
			c.log.Error("alert dispatch incomplete", logger.Error(err))
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"message":  alert.Message(),
		"sms_link": alert.SMSLink(),
	})
}

// DismissSOS cancels the pending fall and resumes monitoring.
func (c *Controller) DismissSOS(ctx echo.Context) error {
	c.monitor.Dismiss()
	return ctx.JSON(http.StatusOK, map[string]string{"state": c.monitor.State().String()})
}

// SOSState returns the monitor state.
func (c *Controller) SOSState(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"state": c.monitor.State().String()})
}
