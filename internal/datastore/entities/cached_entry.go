package entities

import "time"

// CachedEntry is one stored response inside a named cache generation.
// Entries are addressed by (store, method, key); a fresh 200 GET response
// overwrites the previous entry for the same key.
type CachedEntry struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	StoreName   string `gorm:"size:64;uniqueIndex:idx_store_method_key,priority:1" json:"store_name"`
	Method      string `gorm:"size:8;uniqueIndex:idx_store_method_key,priority:2" json:"method"`
	Key         string `gorm:"size:2048;uniqueIndex:idx_store_method_key,priority:3" json:"key"`
	Status      int    `json:"status"`
	ContentType string `gorm:"size:255" json:"content_type"`
	// Headers holds the response headers as a JSON object.
	Headers   string    `json:"headers"`
	Body      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
