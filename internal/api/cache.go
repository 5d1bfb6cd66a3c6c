package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initCacheRoutes registers cache provisioning endpoints.
func (c *Controller) initCacheRoutes() {
	if c.provisioner == nil {
		return
	}
	g := c.Group.Group("/cache")
	g.GET("/state", c.CacheState)
	g.POST("/provision", c.ProvisionCache)
}

// CacheState reports the provisioning state and the registered generations.
func (c *Controller) CacheState(ctx echo.Context) error {
	names, err := c.repo.ListNames(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list cache generations", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"state":       c.provisioner.State().String(),
		"version":     c.provisioner.Version(),
		"generations": names,
	})
}

// ProvisionCache runs provisioning for the configured version. Idempotent:
// an already provisioned generation is left untouched.
func (c *Controller) ProvisionCache(ctx echo.Context) error {
	if err := c.provisioner.Provision(ctx.Request().Context()); err != nil {
		return c.HandleError(ctx, err, "Provisioning failed", http.StatusBadGateway)
	}
	return c.CacheState(ctx)
}
