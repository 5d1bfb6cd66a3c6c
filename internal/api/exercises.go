package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/exercises"
)

// initExerciseRoutes registers the exercise catalog endpoints. These live at
// the root, not under /api/v1: existing clients depend on the paths.
func (c *Controller) initExerciseRoutes() {
	if c.catalog == nil {
		return
	}
	c.Echo.GET("/exercices", c.ListExercises)
	c.Echo.GET("/exercices/random", c.RandomExercise)
	c.Group.GET("/exercices/categories", c.ListExerciseCategories)
}

// ListExercises returns the catalog, filtered by the categorie query
// parameter when present.
func (c *Controller) ListExercises(ctx echo.Context) error {
	if category := ctx.QueryParam("categorie"); category != "" {
		return ctx.JSON(http.StatusOK, c.catalog.ByCategory(category))
	}
	return ctx.JSON(http.StatusOK, c.catalog.All())
}

// RandomExercise returns one random exercise, restricted to the categorie
// query parameter when present. An empty pool yields a 404 with the
// French-keyed error body the catalog clients expect.
func (c *Controller) RandomExercise(ctx echo.Context) error {
	ex, err := c.catalog.Random(ctx.QueryParam("categorie"))
	if errors.Is(err, exercises.ErrNoExercises) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"erreur": "Aucun exercice trouvé"})
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to pick exercise", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, ex)
}

// ListExerciseCategories returns the distinct categories.
func (c *Controller) ListExerciseCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.catalog.Categories())
}
