package entities

import "time"

// CacheStore registers a named cache generation. A generation exists from the
// moment it is opened, even while it holds no entries yet.
type CacheStore struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
