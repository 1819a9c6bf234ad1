package models

import (
	"fmt"
	"time"
)

// Calendar event sources.
const (
	EventSourceManual          = "manual"
	EventSourceCourseSync      = "course_sync"
	EventSourceAgentSuggestion = "agent_suggestion"
)

// CalendarEvent is a busy interval on a user's calendar.
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	EventType   string    `db:"event_type" json:"event_type"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Source      string    `db:"source" json:"source"`
	ExternalID  *string   `db:"external_id" json:"external_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the interval is well formed.
func (e CalendarEvent) Validate() error {
	if !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("calendar event %q: end_time must be after start_time", e.ID)
	}
	return nil
}

// FreeSlot is a derived, never persisted, gap between busy events.
type FreeSlot struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
}
