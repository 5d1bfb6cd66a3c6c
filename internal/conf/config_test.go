package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3.0", settings.Cache.Version)
	assert.NotEmpty(t, settings.Cache.Manifest)
	assert.Contains(t, settings.Cache.Manifest, "/index.html")
	assert.Contains(t, settings.Cache.Manifest, "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js")
	assert.Equal(t, "0.0.0.0:3000", settings.Server.Address())
	assert.Equal(t, 1, settings.Weather.SimpleForecastDays)
	assert.Equal(t, 3, settings.Weather.DetailForecastDays)
	assert.Equal(t, 50.0, settings.SOS.FallThreshold)
	assert.Equal(t, 10, settings.SOS.MinPhoneDigits)
	assert.False(t, settings.MQTT.Enabled)
	assert.Equal(t, 10*time.Second, settings.Weather.FetchTimeout.Std())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 4000
cache:
  version: "4.1"
  manifest:
    - /index.html
    - /js/app.js
  fetch_timeout: 5s
weather:
  base_url: http://localhost:9999/v1/forecast
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, settings.Server.Port)
	assert.Equal(t, "4.1", settings.Cache.Version)
	assert.Equal(t, []string{"/index.html", "/js/app.js"}, settings.Cache.Manifest)
	assert.Equal(t, 5*time.Second, settings.Cache.FetchTimeout.Std())
	assert.Equal(t, "http://localhost:9999/v1/forecast", settings.Weather.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Settings {
		return &Settings{
			Server:  ServerSettings{Port: 3000},
			Cache:   CacheSettings{Version: "3.0", Manifest: []string{"/"}},
			Weather: WeatherSettings{SimpleForecastDays: 1, DetailForecastDays: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(s *Settings) {}, ""},
		{"empty version", func(s *Settings) { s.Cache.Version = "" }, "cache.version"},
		{"empty manifest", func(s *Settings) { s.Cache.Manifest = nil }, "cache.manifest"},
		{"bad port", func(s *Settings) { s.Server.Port = -1 }, "server.port"},
		{"zero forecast days", func(s *Settings) { s.Weather.DetailForecastDays = 0 }, "forecast days"},
		{"mqtt enabled without broker", func(s *Settings) { s.MQTT.Enabled = true }, "mqtt.broker"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
