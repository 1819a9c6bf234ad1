package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

// CourseRepository persists courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByUser returns courses owned by a user.
func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	const query = `SELECT id, user_id, name, code, credits, instructor, schedule, semester, created_at, updated_at FROM courses WHERE user_id = $1 ORDER BY name ASC`
	var items []models.Course
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return items, nil
}

// GetByID fetches a course.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, user_id, name, code, credits, instructor, schedule, semester, created_at, updated_at FROM courses WHERE id = $1`
	var item models.Course
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &item, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if len(c.Schedule) == 0 {
		c.Schedule = types.JSONText("{}")
	}
	const query = `INSERT INTO courses (id, user_id, name, code, credits, instructor, schedule, semester, created_at, updated_at)
VALUES (:id, :user_id, :name, :code, :credits, :instructor, :schedule, :semester, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	c.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, code = :code, credits = :credits, instructor = :instructor, schedule = :schedule, semester = :semester, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
