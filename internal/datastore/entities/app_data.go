package entities

import "time"

// Well-known application data keys. These mirror the persisted keys the
// front-end reads and writes.
const (
	KeyLastKnownLocation = "lastKnownLocation"
	KeyWeatherSimple     = "meteoCacheSimple"
	KeyWeatherDetail     = "meteoCacheDetail"
)

// AppDataEntry is one slot of the application data cache: a persisted
// key → JSON payload pair with single-slot overwrite semantics.
type AppDataEntry struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
