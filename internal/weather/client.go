package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/observability/metrics"
)

// Client fetches forecasts from an Open-Meteo compatible endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	simpleDays int
	detailDays int
	metrics    *metrics.Metrics
}

// NewClient creates a forecast client from settings.
func NewClient(settings conf.WeatherSettings, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: settings.FetchTimeout.Std()},
		baseURL:    settings.BaseURL,
		simpleDays: settings.SimpleForecastDays,
		detailDays: settings.DetailForecastDays,
		metrics:    m,
	}
}

// HTTPClient exposes the underlying client for transport stubbing in tests.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// SimpleForecast fetches the landing-page forecast: current conditions plus
// one day of hourly temperature and rain probability. Returns the parsed
// forecast and the raw payload for the application data cache.
func (c *Client) SimpleForecast(ctx context.Context, lat, lon float64) (*Forecast, []byte, error) {
	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("current_weather", "true")
	query.Set("hourly", "temperature_2m,precipitation_probability")
	query.Set("forecast_days", strconv.Itoa(c.simpleDays))
	query.Set("models", "best_match")
	return c.fetch(ctx, query)
}

// DetailForecast fetches the multi-day hourly forecast for the detail view.
func (c *Client) DetailForecast(ctx context.Context, lat, lon float64) (*Forecast, []byte, error) {
	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("hourly", "temperature_2m,precipitation_probability,weathercode")
	query.Set("forecast_days", strconv.Itoa(c.detailDays))
	query.Set("models", "best_match")
	query.Set("timezone", "auto")
	return c.fetch(ctx, query)
}

func (c *Client) fetch(ctx context.Context, query url.Values) (*Forecast, []byte, error) {
	reqURL := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, fmt.Errorf("forecast fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, fmt.Errorf("forecast provider returned %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, fmt.Errorf("failed to read forecast response: %w", err)
	}

	var forecast Forecast
	if err := json.Unmarshal(payload, &forecast); err != nil {
		c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	if err := forecast.Validate(); err != nil {
		c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, err
	}

	c.metrics.WeatherFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	return &forecast, payload, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
