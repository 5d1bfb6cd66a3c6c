// Package appdata is the application data cache: a small persisted key-value
// store holding the last known position and the last retrieved weather
// payloads, used as fallback sources when live acquisition fails. Distinct
// from the resource cache.
package appdata

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
)

// ErrNotCached reports that a slot has never been written.
var ErrNotCached = errors.New("no cached value")

// Location is a persisted GPS coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Store is the application data cache contract. Each key is a single slot
// with overwrite semantics; concurrent writers race last-writer-wins, which
// is acceptable for fallback data.
type Store interface {
	SaveLocation(ctx context.Context, loc Location) error
	LastKnownLocation(ctx context.Context) (Location, error)

	// SaveWeather stores the full provider payload under the given slot key
	// (simple or detailed forecast).
	SaveWeather(ctx context.Context, key string, payload []byte) error
	LastKnownWeather(ctx context.Context, key string) ([]byte, error)
}

type store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) set(ctx context.Context, key, value string) error {
	entry := entities.AppDataEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *store) get(ctx context.Context, key string) (string, error) {
	var entry entities.AppDataEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotCached, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *store) SaveLocation(ctx context.Context, loc Location) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	return s.set(ctx, entities.KeyLastKnownLocation, string(payload))
}

func (s *store) LastKnownLocation(ctx context.Context) (Location, error) {
	raw, err := s.get(ctx, entities.KeyLastKnownLocation)
	if err != nil {
		return Location{}, err
	}
	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return Location{}, fmt.Errorf("corrupt location payload: %w", err)
	}
	return loc, nil
}

func (s *store) SaveWeather(ctx context.Context, key string, payload []byte) error {
	if key != entities.KeyWeatherSimple && key != entities.KeyWeatherDetail {
		return errors.Newf("unknown weather slot %q", key).
			Component("appdata").
			Category(errors.CategoryValidation).
			Build()
	}
	return s.set(ctx, key, string(payload))
}

func (s *store) LastKnownWeather(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
