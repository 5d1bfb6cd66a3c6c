package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/equitrack/equitrack/internal/api"
	"github.com/equitrack/equitrack/internal/appdata"
	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/carelog"
	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/datastore"
	"github.com/equitrack/equitrack/internal/exercises"
	"github.com/equitrack/equitrack/internal/geotrack"
	"github.com/equitrack/equitrack/internal/lifecycle"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/mqtt"
	"github.com/equitrack/equitrack/internal/observability/metrics"
	"github.com/equitrack/equitrack/internal/provisioning"
	"github.com/equitrack/equitrack/internal/sos"
	"github.com/equitrack/equitrack/internal/strategy"
	"github.com/equitrack/equitrack/internal/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the EquiTrack server",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, log, err := loadSettings()
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), settings, log)
	},
}

func runServer(ctx context.Context, settings *conf.Settings, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := datastore.NewSQLiteManager(datastore.Config{DataDir: settings.Data.Dir})
	if err != nil {
		return err
	}
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	repo := cachestore.NewRepository(manager.DB())
	fetcher := strategy.NewHTTPFetcher(settings.Cache.UpstreamOrigin, settings.Cache.FetchTimeout.Std())
	provisioner := provisioning.New(repo, fetcher, settings.Cache.Version, settings.Cache.Manifest, log, m)
	fulfiller := strategy.NewFulfiller(repo, fetcher, settings.Cache.Version, log, m)

	store := appdata.NewStore(manager.DB())
	careLog := carelog.NewRepository(manager.DB())

	catalog, err := exercises.NewCatalog(settings.Exercises, log)
	if err != nil {
		return err
	}

	weatherClient := weather.NewClient(settings.Weather, m)
	view := geotrack.NewViewState()
	pipeline := geotrack.NewPipeline(store, weatherClient, view, view, view, log)

	bridge := lifecycle.NewBridge()
	lc := lifecycle.NewController(bridge, lifecycle.RegistrarFunc(provisioner.Provision), bridge, log)

	monitor := sos.NewMonitor(settings.SOS, log)
	var notifiers []sos.Notifier
	if settings.MQTT.Enabled {
		broker, err := mqtt.NewClient(settings.MQTT, log)
		if err != nil {
			return err
		}
		defer broker.Disconnect()
		notifiers = append(notifiers, sos.NewMQTTNotifier(broker, settings.MQTT.Topic))
	}
	dispatcher := sos.NewDispatcher(log, m, notifiers...)

	controller := api.New(api.Config{
		Settings:    settings,
		Log:         log,
		Repo:        repo,
		Provisioner: provisioner,
		Fulfiller:   fulfiller,
		AppData:     store,
		Weather:     weatherClient,
		Catalog:     catalog,
		CareLog:     careLog,
		Pipeline:    pipeline,
		View:        view,
		Lifecycle:   lc,
		Bridge:      bridge,
		Monitor:     monitor,
		Dispatcher:  dispatcher,
		Registry:    registry,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("address", settings.Server.Address()))
		errCh <- controller.Echo.Start(settings.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return controller.Echo.Shutdown(shutdownCtx)
}
