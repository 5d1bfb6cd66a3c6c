package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/lifecycle"
)

// initLifecycleRoutes registers install lifecycle endpoints. The host client
// reports its signals here and polls the affordance state back.
func (c *Controller) initLifecycleRoutes() {
	if c.lifecycle == nil || c.bridge == nil {
		return
	}
	g := c.Group.Group("/install")
	g.GET("/state", c.InstallState)
	g.POST("/start", c.StartLifecycle)
	g.POST("/available", c.InstallAvailable)
	g.POST("/trigger", c.TriggerInstall)
	g.POST("/installed", c.AppInstalled)
	g.POST("/updated", c.UpdateInstalled)
	g.POST("/reload", c.TriggerReload)
	g.POST("/reload/ack", c.AckReload)
}

// InstallState returns the lifecycle state and affordances.
func (c *Controller) InstallState(ctx echo.Context) error {
	snap := c.bridge.Snapshot()
	return ctx.JSON(http.StatusOK, map[string]any{
		"state":            c.lifecycle.State().String(),
		"update_available": c.lifecycle.UpdateAvailable(),
		"offline_capable":  c.lifecycle.OfflineCapable(),
		"install_enabled":  snap.InstallEnabled,
		"reload_enabled":   snap.ReloadEnabled,
		"reload_requested": snap.ReloadRequested,
	})
}

type startRequest struct {
	Standalone bool `json:"standalone"`
}

// StartLifecycle begins the lifecycle for a newly loaded client.
func (c *Controller) StartLifecycle(ctx echo.Context) error {
	var req startRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid payload", http.StatusBadRequest)
	}
	c.lifecycle.Start(ctx.Request().Context(), req.Standalone)
	return c.InstallState(ctx)
}

// InstallAvailable records the host's installability signal.
func (c *Controller) InstallAvailable(ctx echo.Context) error {
	c.lifecycle.HandleInstallAvailable(c.bridge.NewPrompt())
	return c.InstallState(ctx)
}

type triggerRequest struct {
	Outcome lifecycle.PromptOutcome `json:"outcome"`
}

// TriggerInstall consumes the captured prompt. The client reports the
// user's answer in the request body.
func (c *Controller) TriggerInstall(ctx echo.Context) error {
	var req triggerRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid payload", http.StatusBadRequest)
	}
	if req.Outcome != "" {
		c.bridge.SetNextOutcome(req.Outcome)
	}

	outcome, err := c.lifecycle.TriggerInstall(ctx.Request().Context())
	if errors.Is(err, lifecycle.ErrNoPromptCaptured) {
		return c.HandleError(ctx, err, "No install prompt captured", http.StatusConflict)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Install failed", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"outcome": string(outcome)})
}

// AppInstalled records the host's installed signal, which registers the
// background worker and provisions the cache.
func (c *Controller) AppInstalled(ctx echo.Context) error {
	c.lifecycle.HandleAppInstalled(ctx.Request().Context())
	return c.InstallState(ctx)
}

type updatedRequest struct {
	ControllerActive bool `json:"controller_active"`
}

// UpdateInstalled records that a new worker version finished installing.
func (c *Controller) UpdateInstalled(ctx echo.Context) error {
	var req updatedRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid payload", http.StatusBadRequest)
	}
	c.lifecycle.HandleUpdateInstalled(req.ControllerActive)
	return c.InstallState(ctx)
}

// TriggerReload asks the client to fully reload so the new worker takes
// control.
func (c *Controller) TriggerReload(ctx echo.Context) error {
	c.lifecycle.TriggerReload()
	return c.InstallState(ctx)
}

// AckReload clears the pending reload request after the client performed it.
func (c *Controller) AckReload(ctx echo.Context) error {
	c.bridge.AckReload()
	return c.InstallState(ctx)
}
