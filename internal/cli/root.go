// Package cli implements the equitrack commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/logger"
)

var configFile string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "equitrack",
	Short: "Offline-first horse care companion",
	Long: "EquiTrack serves the horse care companion app: exercise catalog, " +
		"care log, weather, GPS tracking with fall detection, and the " +
		"versioned offline resource cache behind it.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (default: config.yaml if present)")
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(provisionCmd)
}

func loadSettings() (*conf.Settings, logger.Logger, error) {
	settings, err := conf.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	level := logger.LogLevelInfo
	switch settings.Log.Level {
	case "debug":
		level = logger.LogLevelDebug
	case "warn":
		level = logger.LogLevelWarn
	case "error":
		level = logger.LogLevelError
	}
	return settings, logger.NewSlogLogger(level), nil
}
