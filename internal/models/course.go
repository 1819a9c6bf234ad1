package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Course is a class the student is enrolled in. Schedule holds free-form days/times/location.
type Course struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	Name       string         `db:"name" json:"name"`
	Code       string         `db:"code" json:"code"`
	Credits    int            `db:"credits" json:"credits"`
	Instructor *string        `db:"instructor" json:"instructor,omitempty"`
	Schedule   types.JSONText `db:"schedule" json:"schedule"`
	Semester   string         `db:"semester" json:"semester"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
