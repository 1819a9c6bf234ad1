package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

type calendarStoreStub struct {
	fakeCalendar
	created []models.CalendarEvent
}

func (s *calendarStoreStub) GetByID(_ context.Context, id string) (*models.CalendarEvent, error) {
	for _, e := range s.events {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, errNoRows
}

func (s *calendarStoreStub) Create(_ context.Context, e *models.CalendarEvent) error {
	s.created = append(s.created, *e)
	return nil
}

func (s *calendarStoreStub) Update(context.Context, *models.CalendarEvent) error { return nil }

func (s *calendarStoreStub) Delete(context.Context, string) error { return nil }

func TestCalendarServiceFreeSlotsSkipsMalformedEvents(t *testing.T) {
	day := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	store := &calendarStoreStub{fakeCalendar: fakeCalendar{events: []models.CalendarEvent{
		{ID: "lecture", StartTime: day.Add(time.Hour), EndTime: day.Add(3 * time.Hour)},
		{ID: "inverted", StartTime: day.Add(5 * time.Hour), EndTime: day.Add(4 * time.Hour)},
	}}}
	svc := NewCalendarService(store, nil, nil)

	slots, err := svc.FreeSlots(context.Background(), "u1", day, day.Add(8*time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, day, slots[0].Start)
	assert.Equal(t, day.Add(3*time.Hour), slots[1].Start)
	assert.Equal(t, 5.0, slots[1].DurationHours)
}

func TestCalendarServiceFreeSlotsFetchFailure(t *testing.T) {
	store := &calendarStoreStub{fakeCalendar: fakeCalendar{err: errStoreDown}}
	svc := NewCalendarService(store, nil, nil)

	_, err := svc.FreeSlots(context.Background(), "u1", runNow, runNow.Add(time.Hour), 0)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDataFetch.Code, appErr.Code)
}

func TestCalendarServiceFreeSlotsEmptyWindow(t *testing.T) {
	store := &calendarStoreStub{}
	slots, err := NewCalendarService(store, nil, nil).FreeSlots(context.Background(), "u1", runNow, runNow, 1)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Zero(t, store.calls)
}

func TestCalendarServiceCreateDefaultsSource(t *testing.T) {
	store := &calendarStoreStub{}
	svc := NewCalendarService(store, nil, nil)

	event, err := svc.Create(context.Background(), CalendarEventRequest{
		UserID:    "u1",
		Title:     "Office hours",
		StartTime: runNow,
		EndTime:   runNow.Add(time.Hour),
		EventType: "meeting",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventSourceManual, event.Source)

	_, err = svc.Create(context.Background(), CalendarEventRequest{
		UserID:    "u1",
		Title:     "Backwards",
		StartTime: runNow,
		EndTime:   runNow.Add(-time.Hour),
		EventType: "meeting",
	})
	require.Error(t, err)
	assert.Len(t, store.created, 1)
}
