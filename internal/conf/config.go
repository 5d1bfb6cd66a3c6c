// Package conf holds the application settings, loaded from a YAML file with
// environment-variable overrides via Viper.
package conf

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the root configuration for the EquiTrack service.
type Settings struct {
	Server    ServerSettings   `mapstructure:"server"`
	Data      DataSettings     `mapstructure:"data"`
	Cache     CacheSettings    `mapstructure:"cache"`
	Weather   WeatherSettings  `mapstructure:"weather"`
	Exercises ExerciseSettings `mapstructure:"exercises"`
	SOS       SOSSettings      `mapstructure:"sos"`
	MQTT      MQTTSettings     `mapstructure:"mqtt"`
	Log       LogSettings      `mapstructure:"log"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns the host:port listen address.
func (s ServerSettings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataSettings configures persistent storage.
type DataSettings struct {
	// Dir is the directory holding the SQLite databases.
	Dir string `mapstructure:"dir"`
}

// CacheSettings configures the offline resource cache.
type CacheSettings struct {
	// Version labels the current cache generation. Bumped by the maintainer on
	// every deploy that changes the manifest; compared by string equality only.
	Version string `mapstructure:"version"`

	// Manifest is the exhaustive list of resource keys required for full
	// offline operation (local assets plus third-party CDN assets).
	Manifest []string `mapstructure:"manifest"`

	// UpstreamOrigin is the origin that serves local assets on a cache miss.
	UpstreamOrigin string `mapstructure:"upstream_origin"`

	// FetchTimeout bounds a single resource fetch during population or
	// miss handling.
	FetchTimeout Duration `mapstructure:"fetch_timeout"`
}

// WeatherSettings configures the forecast provider client.
type WeatherSettings struct {
	BaseURL            string   `mapstructure:"base_url"`
	SimpleForecastDays int      `mapstructure:"simple_forecast_days"`
	DetailForecastDays int      `mapstructure:"detail_forecast_days"`
	FetchTimeout       Duration `mapstructure:"fetch_timeout"`
}

// ExerciseSettings configures the exercise catalog service.
type ExerciseSettings struct {
	// File is the path to the JSON exercise catalog.
	File string `mapstructure:"file"`
}

// SOSSettings configures fall detection.
type SOSSettings struct {
	// FallThreshold is the acceleration magnitude (m/s²) above which a fall
	// is assumed.
	FallThreshold float64 `mapstructure:"fall_threshold"`

	// MinPhoneDigits is the minimum digit count for the emergency number.
	MinPhoneDigits int `mapstructure:"min_phone_digits"`
}

// MQTTSettings configures the optional emergency alert broker.
type MQTTSettings struct {
	Enabled        bool     `mapstructure:"enabled"`
	Broker         string   `mapstructure:"broker"`
	ClientID       string   `mapstructure:"client_id"`
	Topic          string   `mapstructure:"topic"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	ConnectTimeout Duration `mapstructure:"connect_timeout"`
}

// LogSettings configures logging.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// DefaultManifest lists the assets the app needs offline, local pages and
// scripts plus the CDN libraries the design depends on.
func DefaultManifest() []string {
	return []string{
		"/",
		"/index.html",
		"/formul_cheval.html",
		"/meteo.html",
		"/service_worker.js",
		"/css/style.css",
		"/favicon/apple-touch-icon.png",
		"/favicon/favicon.ico",
		"/favicon/favicon.svg",
		"/favicon/favicon-96x96.png",
		"/favicon/site.webmanifest",
		"/favicon/web-app-manifest-192x192.png",
		"/favicon/web-app-manifest-512x512.png",
		"/js/pwa.js",
		"/js/app.js",
		"/js/formul_cheval.js",
		"/js/meteo_detail.js",
		"/son/cheval.mp3",
		"https://code.getmdl.io/1.3.0/material.teal-amber.min.css",
		"https://code.getmdl.io/1.3.0/material.min.js",
		"https://fonts.googleapis.com/icon?family=Material+Icons",
		"https://fonts.googleapis.com/css2?family=Poppins:wght@300;500;700&family=Roboto:wght@300;400;500&display=swap",
		"https://unpkg.com/leaflet@1.9.4/dist/leaflet.css",
		"https://unpkg.com/leaflet@1.9.4/dist/leaflet.js",
		"https://cdn.jsdelivr.net/npm/fullcalendar@6.1.10/index.global.min.js",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("data.dir", "data")
	v.SetDefault("cache.version", "3.0")
	v.SetDefault("cache.manifest", DefaultManifest())
	v.SetDefault("cache.upstream_origin", "http://localhost:8080")
	v.SetDefault("cache.fetch_timeout", "15s")
	v.SetDefault("weather.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.simple_forecast_days", 1)
	v.SetDefault("weather.detail_forecast_days", 3)
	v.SetDefault("weather.fetch_timeout", "10s")
	v.SetDefault("exercises.file", "exercices.json")
	v.SetDefault("sos.fall_threshold", 50.0)
	v.SetDefault("sos.min_phone_digits", 10)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.client_id", "equitrack")
	v.SetDefault("mqtt.topic", "equitrack/sos")
	v.SetDefault("mqtt.connect_timeout", "10s")
	v.SetDefault("log.level", "info")
}

// Load reads settings from the given config file (optional) and the
// EQUITRACK_* environment, applying defaults for everything unset.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EQUITRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks settings for consistency.
func (s *Settings) Validate() error {
	if s.Cache.Version == "" {
		return fmt.Errorf("cache.version must not be empty")
	}
	if len(s.Cache.Manifest) == 0 {
		return fmt.Errorf("cache.manifest must not be empty")
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", s.Server.Port)
	}
	if s.Weather.SimpleForecastDays <= 0 || s.Weather.DetailForecastDays <= 0 {
		return fmt.Errorf("weather forecast days must be positive")
	}
	if s.MQTT.Enabled && s.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker required when mqtt is enabled")
	}
	return nil
}
