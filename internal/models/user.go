package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// UserRole represents the available roles for route protection.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// User represents a student account stored in the users table.
type User struct {
	ID               string         `db:"id" json:"id"`
	Email            string         `db:"email" json:"email"`
	Name             string         `db:"name" json:"name"`
	PasswordHash     string         `db:"password_hash" json:"-"`
	Role             UserRole       `db:"role" json:"role"`
	Timezone         string         `db:"timezone" json:"timezone"`
	StudyPreferences types.JSONText `db:"study_preferences" json:"study_preferences"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// StudyPreferences is the typed view of User.StudyPreferences.
type StudyPreferences struct {
	PreferredHours []int `json:"preferred_hours,omitempty"`
}

// Preferences decodes the stored study preferences, returning the zero value on malformed JSON.
func (u User) Preferences() StudyPreferences {
	var prefs StudyPreferences
	if len(u.StudyPreferences) == 0 {
		return prefs
	}
	if err := json.Unmarshal(u.StudyPreferences, &prefs); err != nil {
		return StudyPreferences{}
	}
	return prefs
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
