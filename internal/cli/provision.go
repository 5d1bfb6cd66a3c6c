package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/equitrack/equitrack/internal/cachestore"
	"github.com/equitrack/equitrack/internal/datastore"
	"github.com/equitrack/equitrack/internal/logger"
	"github.com/equitrack/equitrack/internal/observability/metrics"
	"github.com/equitrack/equitrack/internal/provisioning"
	"github.com/equitrack/equitrack/internal/strategy"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Populate the offline resource cache and exit",
	Long: "Fetches every manifest resource from the upstream origin into the " +
		"configured cache generation, then deletes stale generations. " +
		"Idempotent: an already provisioned generation is left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, log, err := loadSettings()
		if err != nil {
			return err
		}

		manager, err := datastore.NewSQLiteManager(datastore.Config{DataDir: settings.Data.Dir})
		if err != nil {
			return err
		}
		if err := manager.Initialize(); err != nil {
			return err
		}
		defer func() { _ = manager.Close() }()

		repo := cachestore.NewRepository(manager.DB())
		fetcher := strategy.NewHTTPFetcher(settings.Cache.UpstreamOrigin, settings.Cache.FetchTimeout.Std())
		provisioner := provisioning.New(repo, fetcher, settings.Cache.Version,
			settings.Cache.Manifest, log, metrics.New(prometheus.NewRegistry()))

		if err := provisioner.Provision(cmd.Context()); err != nil {
			return err
		}
		log.Info("cache provisioned", logger.String("version", settings.Cache.Version))
		return nil
	},
}
