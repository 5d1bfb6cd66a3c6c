// Package weather fetches forecasts from the Open-Meteo provider and derives
// the summary and hourly views the front-end renders.
package weather

import (
	"time"

	"github.com/equitrack/equitrack/internal/errors"
)

// Forecast is the provider response. The hourly series are index-aligned by
// hour.
type Forecast struct {
	CurrentWeather CurrentWeather `json:"current_weather"`
	Hourly         Hourly         `json:"hourly"`
}

// CurrentWeather is the provider's current conditions block.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
}

// Hourly holds the aligned forecast series.
type Hourly struct {
	Time                     []string  `json:"time"`
	Temperature2m            []float64 `json:"temperature_2m"`
	PrecipitationProbability []int     `json:"precipitation_probability"`
	WeatherCode              []int     `json:"weathercode,omitempty"`
}

// Validate checks series alignment.
func (f *Forecast) Validate() error {
	n := len(f.Hourly.Time)
	if len(f.Hourly.Temperature2m) != n || len(f.Hourly.PrecipitationProbability) != n {
		return errors.Newf("hourly series are not index-aligned").
			Component("weather").
			Category(errors.CategoryValidation).
			Context("time", n).
			Context("temperature_2m", len(f.Hourly.Temperature2m)).
			Context("precipitation_probability", len(f.Hourly.PrecipitationProbability)).
			Build()
	}
	return nil
}

// Summary is the compact view for the landing page: current temperature,
// rain probability for the current hour, and the day's range.
type Summary struct {
	Temperature     float64 `json:"temperature"`
	RainProbability int     `json:"rain_probability"`
	DayMin          float64 `json:"day_min"`
	DayMax          float64 `json:"day_max"`
	// Stale marks a summary rendered from the application data cache
	// instead of a live fetch.
	Stale bool `json:"stale"`
}

// Summarize derives the landing-page summary from a forecast. The rain
// probability is the series value at the current hour.
func Summarize(f *Forecast, now time.Time) (Summary, error) {
	if err := f.Validate(); err != nil {
		return Summary{}, err
	}
	if len(f.Hourly.Temperature2m) == 0 {
		return Summary{}, errors.Newf("empty hourly series").
			Component("weather").
			Category(errors.CategoryValidation).
			Build()
	}

	s := Summary{Temperature: f.CurrentWeather.Temperature}

	hour := now.Hour()
	if hour < len(f.Hourly.PrecipitationProbability) {
		s.RainProbability = f.Hourly.PrecipitationProbability[hour]
	}

	s.DayMin = f.Hourly.Temperature2m[0]
	s.DayMax = f.Hourly.Temperature2m[0]
	for _, temp := range f.Hourly.Temperature2m {
		if temp < s.DayMin {
			s.DayMin = temp
		}
		if temp > s.DayMax {
			s.DayMax = temp
		}
	}
	return s, nil
}

// Hourly display conditions, bucketed by rain probability.
const (
	ConditionSun   = "sun"
	ConditionCloud = "cloud"
	ConditionRain  = "rain"
)

// HourlyItem is one row of the detailed forecast listing.
type HourlyItem struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	Hour            string  `json:"hour"` // HH:MM
	Temperature     float64 `json:"temperature"`
	RainProbability int     `json:"rain_probability"`
	Condition       string  `json:"condition"`
	// Past marks hours of the current day that have already elapsed.
	Past bool `json:"past"`
}

// HourlyItems flattens the forecast into display rows. Rain probability at or
// above 50% buckets as rain, above 20% as cloud, otherwise sun.
func HourlyItems(f *Forecast, now time.Time) ([]HourlyItem, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	items := make([]HourlyItem, 0, len(f.Hourly.Time))
	today := now.Format("2006-01-02")
	currentHour := now.Hour()

	for i, stamp := range f.Hourly.Time {
		t, err := time.Parse("2006-01-02T15:04", stamp)
		if err != nil {
			return nil, errors.Wrap(err).
				Component("weather").
				Category(errors.CategoryValidation).
				Context("stamp", stamp).
				Build()
		}

		rain := f.Hourly.PrecipitationProbability[i]
		condition := ConditionSun
		switch {
		case rain >= 50:
			condition = ConditionRain
		case rain > 20:
			condition = ConditionCloud
		}

		date := t.Format("2006-01-02")
		items = append(items, HourlyItem{
			Date:            date,
			Hour:            t.Format("15:04"),
			Temperature:     f.Hourly.Temperature2m[i],
			RainProbability: rain,
			Condition:       condition,
			Past:            date == today && t.Hour() < currentHour,
		})
	}
	return items, nil
}
