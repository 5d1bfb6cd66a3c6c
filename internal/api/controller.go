// Package api implements the HTTP surface: the exercise catalog contract,
// care log and profile endpoints, weather, position ingestion, SOS, install
// lifecycle, and the cached-asset fallthrough.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/equitrack/equitrack/internal/appdata"
	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/carelog"
	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/exercises"
	"github.com/equitrack/equitrack/internal/geotrack"
	"github.com/equitrack/equitrack/internal/lifecycle"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/provisioning"
	"github.com/equitrack/equitrack/internal/sos"
	"github.com/equitrack/equitrack/internal/strategy"
	"github.com/equitrack/equitrack/internal/weather"
)

// Config carries the controller's dependencies.
type Config struct {
	Settings *conf.Settings
	Log      logger.Logger

	Repo        cachestore.Repository
	Provisioner *provisioning.Provisioner
	Fulfiller   *strategy.Fulfiller

	AppData appdata.Store
	Weather *weather.Client
	Catalog *exercises.Catalog
	CareLog carelog.Repository

	Pipeline *geotrack.Pipeline
	View     *geotrack.ViewState

	Lifecycle *lifecycle.Controller
	Bridge    *lifecycle.Bridge

	Monitor    *sos.Monitor
	Dispatcher *sos.Dispatcher

	Registry *prometheus.Registry
}

// Controller owns the echo instance and all route handlers.
type Controller struct {
	Echo  *echo.Echo
	Group *echo.Group

	settings *conf.Settings
	log      logger.Logger

	repo        cachestore.Repository
	provisioner *provisioning.Provisioner
	fulfiller   *strategy.Fulfiller

	appData appdata.Store
	weather *weather.Client
	catalog *exercises.Catalog
	careLog carelog.Repository

	pipeline *geotrack.Pipeline
	view     *geotrack.ViewState

	lifecycle *lifecycle.Controller
	bridge    *lifecycle.Bridge

	monitor    *sos.Monitor
	dispatcher *sos.Dispatcher
}

// New creates the controller and registers all routes.
func New(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = logger.Silent()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodOptions,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowHeaders: []string{"X-Requested-With", echo.HeaderContentType},
	}))

	c := &Controller{
		Echo:        e,
		Group:       e.Group("/api/v1"),
		settings:    cfg.Settings,
		log:         log,
		repo:        cfg.Repo,
		provisioner: cfg.Provisioner,
		fulfiller:   cfg.Fulfiller,
		appData:     cfg.AppData,
		weather:     cfg.Weather,
		catalog:     cfg.Catalog,
		careLog:     cfg.CareLog,
		pipeline:    cfg.Pipeline,
		view:        cfg.View,
		lifecycle:   cfg.Lifecycle,
		bridge:      cfg.Bridge,
		monitor:     cfg.Monitor,
		dispatcher:  cfg.Dispatcher,
	}

	e.GET("/healthz", c.Healthz)
	if cfg.Registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	c.initExerciseRoutes()
	c.initCareLogRoutes()
	c.initWeatherRoutes()
	c.initGeoRoutes()
	c.initSOSRoutes()
	c.initLifecycleRoutes()
	c.initCacheRoutes()
	c.registerPWARoutes()

	// Everything else falls through to the offline resource cache.
	if cfg.Fulfiller != nil {
		e.GET("/*", strategy.AssetHandler(cfg.Fulfiller))
	}

	return c
}

// HandleError logs err and returns a JSON error response with message.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	c.log.Error(message, logger.Error(err))
	return ctx.JSON(code, map[string]string{"error": message})
}

// Healthz reports liveness and the provisioning state.
func (c *Controller) Healthz(ctx echo.Context) error {
	state := "disabled"
	if c.provisioner != nil {
		state = c.provisioner.State().String()
	}
	return ctx.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"cache":  state,
	})
}
