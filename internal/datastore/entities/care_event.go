package entities

import "time"

// Care event types.
const (
	CareTypeVaccine = "vaccin"
	CareTypeFarrier = "marechal"
	CareTypeOsteo   = "osteo"
	CareTypeLesson  = "cours"
	CareTypeContest = "concours"
)

// CareEvent is one logged care entry. IDs are caller-assigned millisecond
// timestamps, matching the persisted event log format.
type CareEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Type      string    `gorm:"size:32" json:"type"`
	Date      string    `gorm:"size:10" json:"date"` // ISO date, YYYY-MM-DD
	Desc      string    `gorm:"size:512" json:"desc"`
	CreatedAt time.Time `json:"created_at"`
}

// HorseProfile is the single saved horse profile. Only one row exists,
// pinned at ID 1.
type HorseProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"nom"`
	Breed     string    `gorm:"size:128" json:"race"`
	Age       string    `gorm:"size:8" json:"age"`
	UpdatedAt time.Time `json:"updated_at"`
}
