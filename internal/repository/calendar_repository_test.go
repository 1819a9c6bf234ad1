package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

func TestCalendarListEventsOverlap(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	start := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "start_time", "end_time", "event_type", "location", "source", "external_id", "created_at", "updated_at"}).
		AddRow("e1", "u1", "Lecture", nil, start.Add(time.Hour), start.Add(2*time.Hour), "class", nil, "manual", nil, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_events WHERE user_id = $1 AND end_time > $2 AND start_time < $3 ORDER BY start_time ASC")).
		WithArgs("u1", start, end).
		WillReturnRows(rows)

	events, err := repo.ListEvents(context.Background(), "u1", start, end)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Lecture", events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarCreateDefaultsSource(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("INSERT INTO calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.CalendarEvent{UserID: "u1", Title: "Gym", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour), EventType: "personal"}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, models.EventSourceManual, event.Source)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_events WHERE id = $1")).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
