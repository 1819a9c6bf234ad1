package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AssignmentStatus tracks progress on an assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusInProgress, AssignmentStatusCompleted:
		return true
	}
	return false
}

const (
	MinAssignmentPriority = 1
	MaxAssignmentPriority = 5
)

// Assignment is a piece of coursework owned by a single user.
type Assignment struct {
	ID                  string           `db:"id" json:"id"`
	UserID              string           `db:"user_id" json:"user_id"`
	CourseID            string           `db:"course_id" json:"course_id"`
	Title               string           `db:"title" json:"title"`
	Description         *string          `db:"description" json:"description,omitempty"`
	DueDate             time.Time        `db:"due_date" json:"due_date"`
	Priority            int              `db:"priority" json:"priority"`
	EstimatedHours      float64          `db:"estimated_hours" json:"estimated_hours"`
	Status              AssignmentStatus `db:"status" json:"status"`
	Category            *string          `db:"category" json:"category,omitempty"`
	SuggestedStudyTimes TimeList         `db:"suggested_study_times" json:"suggested_study_times"`
	RemindersSent       TimeList         `db:"reminders_sent" json:"reminders_sent"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// IsCompleted reports whether the assignment no longer needs work.
func (a Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// Validate reports why a stored record cannot take part in planning.
func (a Assignment) Validate() error {
	var problems []string
	if strings.TrimSpace(a.ID) == "" {
		problems = append(problems, "missing id")
	}
	if a.Priority < MinAssignmentPriority || a.Priority > MaxAssignmentPriority {
		problems = append(problems, fmt.Sprintf("priority %d outside [%d,%d]", a.Priority, MinAssignmentPriority, MaxAssignmentPriority))
	}
	if a.EstimatedHours < 0 {
		problems = append(problems, fmt.Sprintf("negative estimated_hours %.2f", a.EstimatedHours))
	}
	if a.DueDate.IsZero() {
		problems = append(problems, "missing due_date")
	}
	if !a.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", a.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("assignment %q: %s", a.ID, strings.Join(problems, "; "))
	}
	return nil
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	Status           *AssignmentStatus
	ExcludeCompleted bool
	Limit            int
}

// TimeList is a list of UTC timestamps stored as a JSONB array.
type TimeList []time.Time

// Value implements driver.Valuer.
func (l TimeList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]time.Time(l))
}

// Scan implements sql.Scanner.
func (l *TimeList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = TimeList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan time list: unsupported type %T", src)
	}
	var out []time.Time
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan time list: %w", err)
	}
	*l = TimeList(out)
	return nil
}
