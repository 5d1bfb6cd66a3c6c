package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/strategy"
)

// registerPWARoutes registers routes for PWA support files.
// The manifest and service worker must be served from root paths
// so the service worker scope covers the entire application.
func (c *Controller) registerPWARoutes() {
	if c.fulfiller == nil {
		return
	}

	c.Echo.GET("/favicon/site.webmanifest", func(ctx echo.Context) error {
		ctx.Response().Header().Set("Cache-Control", "no-cache")
		return c.handlePWAFile(ctx, "/favicon/site.webmanifest")
	})

	// The worker script gets a root scope and must never be cached by the
	// browser, or updates would not be picked up.
	c.Echo.GET("/service_worker.js", func(ctx echo.Context) error {
		ctx.Response().Header().Set("Service-Worker-Allowed", "/")
		ctx.Response().Header().Set("Cache-Control", "no-cache")
		return c.handlePWAFile(ctx, "/service_worker.js")
	})
}

// handlePWAFile serves a PWA support file through the resource cache, so it
// stays available offline like every other asset.
func (c *Controller) handlePWAFile(ctx echo.Context, key string) error {
	entry, err := c.fulfiller.Fulfill(ctx.Request().Context(), http.MethodGet, key)
	if errors.Is(err, strategy.ErrNetworkUnavailable) {
		return c.HandleError(ctx, err, "Resource unavailable offline", http.StatusServiceUnavailable)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to serve resource", http.StatusInternalServerError)
	}
	contentType := entry.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return ctx.Blob(entry.Status, contentType, entry.Body)
}
