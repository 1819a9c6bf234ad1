package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

type fakeAssignmentStore struct {
	mu          sync.Mutex
	items       []models.Assignment
	listErr     error
	appendErr   error
	lastFilter  models.AssignmentFilter
	suggestions map[string][]time.Time
	reminders   map[string][]time.Time
}

func (f *fakeAssignmentStore) ListByUser(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Assignment
	for _, a := range f.items {
		if a.UserID != userID {
			continue
		}
		if filter.ExcludeCompleted && a.IsCompleted() {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Assignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Assignment
	for _, a := range f.items {
		if a.UserID == userID && !a.DueDate.Before(from) && !a.DueDate.After(to) && !a.IsCompleted() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	for _, a := range f.items {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, errNoRows
}

func (f *fakeAssignmentStore) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = "generated"
	}
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeAssignmentStore) Update(ctx context.Context, a *models.Assignment) error {
	for i := range f.items {
		if f.items[i].ID == a.ID {
			f.items[i] = *a
			return nil
		}
	}
	return errNoRows
}

func (f *fakeAssignmentStore) Delete(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errNoRows
}

func (f *fakeAssignmentStore) AppendReminder(ctx context.Context, id string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.reminders == nil {
		f.reminders = map[string][]time.Time{}
	}
	f.reminders[id] = append(f.reminders[id], ts)
	return nil
}

func (f *fakeAssignmentStore) AppendSuggestions(ctx context.Context, id string, times []time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.suggestions == nil {
		f.suggestions = map[string][]time.Time{}
	}
	f.suggestions[id] = append(f.suggestions[id], times...)
	return nil
}

type fakeCourses struct {
	items []models.Course
	err   error
}

func (f *fakeCourses) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	return f.items, f.err
}

type fakeCalendar struct {
	events []models.CalendarEvent
	err    error
	calls  int
}

func (f *fakeCalendar) ListEvents(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CalendarEvent
	for _, e := range f.events {
		if e.EndTime.After(start) && e.StartTime.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDeadlines struct {
	sent []models.ReminderRecord
	err  error
}

func (f *fakeDeadlines) CheckUpcomingDeadlines(ctx context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error) {
	return f.sent, f.err
}

type memoryPlanCache struct {
	items map[string]models.PlanningResult
	err   error
}

func (m *memoryPlanCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	v, ok := m.items[key]
	if !ok {
		return false, nil
	}
	*(dest.(*models.PlanningResult)) = v
	return true, nil
}

func (m *memoryPlanCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.items == nil {
		m.items = map[string]models.PlanningResult{}
	}
	m.items[key] = *(value.(*models.PlanningResult))
	return nil
}

type stubEnricher struct {
	extra []string
}

func (s stubEnricher) Enrich(_ context.Context, plan models.StudyPlan) models.StudyPlan {
	plan.Recommendations = append(append([]string{}, plan.Recommendations...), s.extra...)
	return plan
}

var (
	errStoreDown = errors.New("store unavailable")
	errNoRows    = sql.ErrNoRows
)
