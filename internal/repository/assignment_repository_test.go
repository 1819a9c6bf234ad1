package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

var assignmentRowColumns = []string{"id", "user_id", "course_id", "title", "description", "due_date", "priority", "estimated_hours", "status", "category", "suggested_study_times", "reminders_sent", "created_at", "updated_at"}

func TestAssignmentListByUserExcludesCompleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	due := time.Date(2024, time.March, 6, 17, 0, 0, 0, time.UTC)
	sent := time.Date(2024, time.March, 5, 17, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a1", "u1", "c1", "Essay", nil, due, 4, 3.5, "pending", nil, []byte(`[]`), []byte(`["2024-03-05T17:00:00Z"]`), due, due)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE user_id = $1 AND status <> $2 ORDER BY due_date ASC LIMIT 100")).
		WithArgs("u1", "completed").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "u1", models.AssignmentFilter{ExcludeCompleted: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Priority)
	assert.Empty(t, items[0].SuggestedStudyTimes)
	require.Len(t, items[0].RemindersSent, 1)
	assert.True(t, sent.Equal(items[0].RemindersSent[0]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListByUserStatusFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	status := models.AssignmentStatusInProgress
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND status = $2 ORDER BY due_date ASC LIMIT 20")).
		WithArgs("u1", "in_progress").
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	items, err := repo.ListByUser(context.Background(), "u1", models.AssignmentFilter{Status: &status, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListByUserWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	boom := errors.New("connection refused")
	mock.ExpectQuery("FROM assignments").WillReturnError(boom)

	_, err := repo.ListByUser(context.Background(), "u1", models.AssignmentFilter{})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListDueBetween(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3 AND status <> $4")).
		WithArgs("u1", from, to, "completed").
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	_, err := repo.ListDueBetween(context.Background(), "u1", from, to)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAppendReminder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	ts := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET reminders_sent = COALESCE(reminders_sent, '[]'::jsonb) || $2::jsonb")).
		WithArgs("a1", `["2024-03-05T09:00:00Z"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AppendReminder(context.Background(), "a1", ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAppendSuggestions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	loc := time.FixedZone("UTC+2", 2*60*60)
	times := []time.Time{
		time.Date(2024, time.March, 5, 11, 0, 0, 0, loc),
		time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec(regexp.QuoteMeta("SET suggested_study_times = COALESCE(suggested_study_times, '[]'::jsonb) || $2::jsonb")).
		WithArgs("a1", `["2024-03-05T09:00:00Z","2024-03-05T14:00:00Z"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AppendSuggestions(context.Background(), "a1", times))
	require.NoError(t, repo.AppendSuggestions(context.Background(), "a1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{UserID: "u1", CourseID: "c1", Title: "Lab", DueDate: time.Now().Add(time.Hour), Priority: 2, Status: models.AssignmentStatusPending}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.NotNil(t, a.RemindersSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
