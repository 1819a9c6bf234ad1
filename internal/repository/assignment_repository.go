package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

const assignmentColumns = `id, user_id, course_id, title, description, due_date, priority, estimated_hours, status, category, suggested_study_times, reminders_sent, created_at, updated_at`

const defaultAssignmentLimit = 100

// AssignmentRepository persists assignments and their study/reminder history.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByUser returns a user's assignments ordered by due date.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.ExcludeCompleted {
		where = append(where, fmt.Sprintf("status <> $%d", len(args)+1))
		args = append(args, string(models.AssignmentStatusCompleted))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultAssignmentLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE %s ORDER BY due_date ASC LIMIT %d`, assignmentColumns, strings.Join(where, " AND "), limit)
	var items []models.Assignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}

// ListDueBetween returns a user's unfinished assignments due within [from, to].
func (r *AssignmentRepository) ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3 AND status <> $4 ORDER BY due_date ASC LIMIT %d`, assignmentColumns, defaultAssignmentLimit)
	var items []models.Assignment
	if err := r.db.SelectContext(ctx, &items, query, userID, from, to, string(models.AssignmentStatusCompleted)); err != nil {
		return nil, fmt.Errorf("list assignments due between: %w", err)
	}
	return items, nil
}

// GetByID fetches an assignment.
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1`, assignmentColumns)
	var item models.Assignment
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &item, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.SuggestedStudyTimes == nil {
		a.SuggestedStudyTimes = models.TimeList{}
	}
	if a.RemindersSent == nil {
		a.RemindersSent = models.TimeList{}
	}
	query := fmt.Sprintf(`INSERT INTO assignments (%s) VALUES (:id, :user_id, :course_id, :title, :description, :due_date, :priority, :estimated_hours, :status, :category, :suggested_study_times, :reminders_sent, :created_at, :updated_at)`, assignmentColumns)
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies the user editable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET course_id = :course_id, title = :title, description = :description, due_date = :due_date, priority = :priority,
estimated_hours = :estimated_hours, status = :status, category = :category, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// AppendReminder records that a reminder went out at ts.
func (r *AssignmentRepository) AppendReminder(ctx context.Context, id string, ts time.Time) error {
	return r.appendTimes(ctx, "reminders_sent", id, []time.Time{ts})
}

// AppendSuggestions appends suggested study start times. Duplicates are kept.
func (r *AssignmentRepository) AppendSuggestions(ctx context.Context, id string, times []time.Time) error {
	if len(times) == 0 {
		return nil
	}
	return r.appendTimes(ctx, "suggested_study_times", id, times)
}

func (r *AssignmentRepository) appendTimes(ctx context.Context, column, id string, times []time.Time) error {
	utc := make([]time.Time, len(times))
	for i, ts := range times {
		utc[i] = ts.UTC()
	}
	payload, err := json.Marshal(utc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", column, err)
	}
	query := fmt.Sprintf(`UPDATE assignments SET %[1]s = COALESCE(%[1]s, '[]'::jsonb) || $2::jsonb, updated_at = $3 WHERE id = $1`, column)
	if _, err := r.db.ExecContext(ctx, query, id, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("append %s: %w", column, err)
	}
	return nil
}
