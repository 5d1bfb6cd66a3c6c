// Package carelog stores the horse care log: profile data and the care event
// history backing the calendar view.
package carelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/equitrack/equitrack/internal/datastore/entities"
	"github.com/equitrack/equitrack/internal/errors"
)

// Sentinel errors.
var (
	ErrEventNotFound   = errors.New("care event not found")
	ErrProfileNotFound = errors.New("horse profile not found")
)

// profileID pins the single horse profile row.
const profileID = 1

var validEventTypes = map[string]bool{
	entities.CareTypeVaccine: true,
	entities.CareTypeFarrier: true,
	entities.CareTypeOsteo:   true,
	entities.CareTypeLesson:  true,
	entities.CareTypeContest: true,
}

// Repository handles care event and profile persistence.
type Repository interface {
	AddEvent(ctx context.Context, event *entities.CareEvent) error
	ListEvents(ctx context.Context) ([]entities.CareEvent, error)
	DeleteEvent(ctx context.Context, id int64) error

	SaveProfile(ctx context.Context, profile *entities.HorseProfile) error
	GetProfile(ctx context.Context) (*entities.HorseProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository backed by the given database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AddEvent appends a care event. A zero ID is assigned from the current
// time in milliseconds, matching the event log's ID convention.
func (r *repository) AddEvent(ctx context.Context, event *entities.CareEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if event.ID == 0 {
		event.ID = time.Now().UnixMilli()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to add care event: %w", err)
	}
	return nil
}

// ListEvents returns all care events, most recent date first.
func (r *repository) ListEvents(ctx context.Context) ([]entities.CareEvent, error) {
	var events []entities.CareEvent
	err := r.db.WithContext(ctx).Order("date DESC, id DESC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list care events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes a care event by ID.
func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entities.CareEvent{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete care event %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}
	return nil
}

// SaveProfile upserts the single horse profile.
func (r *repository) SaveProfile(ctx context.Context, profile *entities.HorseProfile) error {
	profile.ID = profileID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns the saved horse profile.
func (r *repository) GetProfile(ctx context.Context) (*entities.HorseProfile, error) {
	var profile entities.HorseProfile
	err := r.db.WithContext(ctx).First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

func validateEvent(event *entities.CareEvent) error {
	if !validEventTypes[event.Type] {
		return errors.Newf("unknown care event type %q", event.Type).
			Component("carelog").
			Category(errors.CategoryValidation).
			Build()
	}
	if event.Date == "" {
		return errors.Newf("care event date is required").
			Component("carelog").
			Category(errors.CategoryValidation).
			Build()
	}
	if _, err := time.Parse("2006-01-02", event.Date); err != nil {
		return errors.Newf("invalid care event date %q", event.Date).
			Component("carelog").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// Calendar colors per event type, consumed by the external calendar widget.
var eventColors = map[string]string{
	entities.CareTypeVaccine: "#e91e63",
	entities.CareTypeFarrier: "#795548",
	entities.CareTypeOsteo:   "#9c27b0",
	entities.CareTypeContest: "#ff9800",
}

// defaultEventColor is used for any type without a dedicated color.
const defaultEventColor = "#3788d8"

// CalendarEvent is one entry in the format the calendar widget consumes.
type CalendarEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"` // YYYY-MM-DD
	Color string `json:"color"`
}

// ToCalendarEvents converts care events into calendar entries.
func ToCalendarEvents(events []entities.CareEvent) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		title := strings.ToUpper(ev.Type)
		if ev.Desc != "" {
			title += " - " + ev.Desc
		}
		color, ok := eventColors[ev.Type]
		if !ok {
			color = defaultEventColor
		}
		out = append(out, CalendarEvent{
			ID:    ev.ID,
			Title: title,
			Start: ev.Date,
			Color: color,
		})
	}
	return out
}
