package strategy

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
)

// headerCacheGeneration marks responses served through the fulfiller with the
// store generation that handled them.
const headerCacheGeneration = "X-Cache-Generation"

// AssetHandler returns an echo handler serving the request path through the
// fulfiller: cached entries when present, live responses otherwise, and 503
// when the network is down and nothing is cached.
func AssetHandler(f *Fulfiller) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		entry, err := f.Fulfill(req.Context(), req.Method, req.URL.Path)
		if err != nil {
			if errors.Is(err, ErrNetworkUnavailable) {
				return c.JSON(http.StatusServiceUnavailable,
					map[string]string{"error": "resource unavailable offline"})
			}
			return err
		}

		h := c.Response().Header()
		for key, values := range entry.Header {
			if key == echo.HeaderContentType || key == echo.HeaderContentLength {
				continue
			}
			for _, v := range values {
				h.Add(key, v)
			}
		}
		h.Set(headerCacheGeneration, f.version)
		if entry.ContentType != "" {
			return c.Blob(entry.Status, entry.ContentType, entry.Body)
		}
		c.Response().WriteHeader(entry.Status)
		_, werr := c.Response().Write(entry.Body)
		return werr
	}
}
