package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

// 2024-03-04 is a Monday; runs start at 08:00 UTC.
var runNow = time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)

type planningFixture struct {
	assignments *fakeAssignmentStore
	courses     *fakeCourses
	calendar    *fakeCalendar
	users       *userRepoStub
	deadlines   *fakeDeadlines
	cache       *memoryPlanCache
	metrics     *MetricsService
	enricher    RecommendationEnricher
}

func newPlanningFixture() *planningFixture {
	return &planningFixture{
		assignments: &fakeAssignmentStore{},
		courses:     &fakeCourses{items: []models.Course{{ID: "c1", UserID: "u1", Name: "Algorithms"}}},
		calendar:    &fakeCalendar{},
		users:       newUserRepoStub(&models.User{ID: "u1", Email: "u1@example.com"}),
		deadlines:   &fakeDeadlines{},
		cache:       &memoryPlanCache{},
		metrics:     NewMetricsService(),
		enricher:    NoopEnricher{},
	}
}

func (f *planningFixture) service() *PlanningService {
	svc := NewPlanningService(PlanningServiceParams{
		Assignments: f.assignments,
		Courses:     f.courses,
		Calendar:    f.calendar,
		Users:       f.users,
		Reminders:   f.deadlines,
		Enricher:    f.enricher,
		Cache:       f.cache,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
	})
	svc.now = func() time.Time { return runNow }
	return svc
}

func pending(id string, due time.Duration, priority int, hours float64) models.Assignment {
	return models.Assignment{
		ID:             id,
		UserID:         "u1",
		CourseID:       "c1",
		Title:          "Task " + id,
		DueDate:        runNow.Add(due),
		Priority:       priority,
		EstimatedHours: hours,
		Status:         models.AssignmentStatusPending,
	}
}

func TestRunPlanningOrdersAndSuggests(t *testing.T) {
	f := newPlanningFixture()
	done := pending("done", 10*time.Hour, 5, 1)
	done.Status = models.AssignmentStatusCompleted
	f.assignments.items = []models.Assignment{
		pending("later", 10*24*time.Hour, 2, 2),
		pending("soon", 30*time.Hour, 4, 2),
		done,
	}
	// busy 09:00-14:00 on the first day
	f.calendar.events = []models.CalendarEvent{{
		ID: "e1", UserID: "u1", StartTime: runNow.Add(time.Hour), EndTime: runNow.Add(6 * time.Hour),
	}}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	assert.Equal(t, "soon", result.Assignments[0].ID)
	assert.Equal(t, "later", result.Assignments[1].ID)
	assert.True(t, f.assignments.lastFilter.ExcludeCompleted)

	require.Len(t, result.Suggestions, 2)
	first := result.Suggestions[0]
	assert.Equal(t, "soon", first.AssignmentID)
	// 08:00-09:00 is too short for 2h; 14:00 onward covers the whole estimate
	require.Len(t, first.SuggestedTimes, 1)
	assert.Equal(t, runNow.Add(6*time.Hour), first.SuggestedTimes[0])
	assert.Equal(t, first.SuggestedTimes, f.assignments.suggestions["soon"])

	assert.Equal(t, 1, result.StudyPlan.UrgentCount)
	assert.Equal(t, 1, result.StudyPlan.FutureCount)
	assert.InDelta(t, 4.0, result.StudyPlan.TotalHoursNeeded, 1e-9)
	assert.Equal(t, runNow, result.GeneratedAt)
	assert.Equal(t, 1, f.calendar.calls)
}

func TestRunPlanningOnlySchedulesTopFive(t *testing.T) {
	f := newPlanningFixture()
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		f.assignments.items = append(f.assignments.items, pending(id, time.Duration(48+i)*time.Hour, 3, 1))
	}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 7)
	assert.Len(t, result.Suggestions, MaxScheduledAssignments)
}

func TestRunPlanningSkipsMalformedAssignments(t *testing.T) {
	f := newPlanningFixture()
	bad := pending("bad", 48*time.Hour, 9, 1)
	f.assignments.items = []models.Assignment{bad, pending("ok", 48*time.Hour, 3, 1)}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "ok", result.Assignments[0].ID)
	assert.Equal(t, 1.0, gathered(t, f.metrics, "planning_skipped_records_total", "prioritize"))
}

func TestRunPlanningFetchFailureAborts(t *testing.T) {
	cases := map[string]func(f *planningFixture){
		"assignments": func(f *planningFixture) { f.assignments.listErr = errStoreDown },
		"courses":     func(f *planningFixture) { f.courses.err = errStoreDown },
		"calendar":    func(f *planningFixture) { f.calendar.err = errStoreDown },
	}
	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			f := newPlanningFixture()
			breakIt(f)

			result, err := f.service().RunPlanning(context.Background(), "u1")
			assert.Nil(t, result)
			var appErr *appErrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, appErrors.ErrDataFetch.Code, appErr.Code)
			assert.ErrorIs(t, err, errStoreDown)
			assert.Empty(t, f.cache.items)
			assert.Equal(t, 1.0, gathered(t, f.metrics, "planning_runs_total", PlanningOutcomeFetchFail))
		})
	}
}

func TestRunPlanningToleratesReminderAndPersistFailures(t *testing.T) {
	f := newPlanningFixture()
	f.assignments.items = []models.Assignment{pending("a", 20*time.Hour, 3, 1)}
	f.assignments.appendErr = errors.New("write failed")
	f.deadlines.err = errors.New("smtp down")

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, result.RemindersSent)
	require.Len(t, result.Suggestions, 1)
	assert.NotEmpty(t, result.Suggestions[0].SuggestedTimes)
}

func TestRunPlanningIncludesReminders(t *testing.T) {
	f := newPlanningFixture()
	f.deadlines.sent = []models.ReminderRecord{{AssignmentID: "a", Title: "Task a"}}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, f.deadlines.sent, result.RemindersSent)
}

func TestRunPlanningUsesUserPreferredHours(t *testing.T) {
	f := newPlanningFixture()
	f.users = newUserRepoStub(&models.User{ID: "u1", StudyPreferences: types.JSONText(`{"preferred_hours":[20]}`)})
	f.assignments.items = []models.Assignment{pending("a", 20*time.Hour, 3, 3)}
	// free: 08:00-10:00 (2h, too short to cover 3h) and 20:00-04:00
	f.calendar.events = []models.CalendarEvent{{ID: "e", UserID: "u1", StartTime: runNow.Add(2 * time.Hour), EndTime: runNow.Add(12 * time.Hour)}}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, []time.Time{runNow.Add(12 * time.Hour)}, result.Suggestions[0].SuggestedTimes)
}

func TestRunPlanningAppendsEnrichedRecommendations(t *testing.T) {
	f := newPlanningFixture()
	f.enricher = stubEnricher{extra: []string{"Study in 50 minute blocks"}}

	result, err := f.service().RunPlanning(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{RecommendationPreferredHours, "Study in 50 minute blocks"}, result.StudyPlan.Recommendations)
}

func TestLatestPlan(t *testing.T) {
	f := newPlanningFixture()
	svc := f.service()

	_, err := svc.LatestPlan(context.Background(), "u1")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, err = svc.RunPlanning(context.Background(), "u1")
	require.NoError(t, err)

	latest, err := svc.LatestPlan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", latest.UserID)
}

func TestPlanForExportRunsWhenNothingCached(t *testing.T) {
	f := newPlanningFixture()
	f.assignments.items = []models.Assignment{pending("a", 20*time.Hour, 3, 1)}

	result, err := f.service().PlanForExport(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 1)
	assert.Contains(t, f.cache.items, PlanCacheKey("u1"))
}

func TestPlanForExportRunsFreshPlanWhenCacheUnreadable(t *testing.T) {
	f := newPlanningFixture()
	f.assignments.items = []models.Assignment{pending("a", 20*time.Hour, 3, 1)}
	f.cache.err = errors.New("redis: connection refused")

	result, err := f.service().PlanForExport(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 1)
}

func TestPlanForExportStopsOnCanceledContext(t *testing.T) {
	f := newPlanningFixture()
	f.assignments.items = []models.Assignment{pending("a", 20*time.Hour, 3, 1)}
	f.cache.err = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service().PlanForExport(ctx, "u1")
	require.Error(t, err)
	assert.Empty(t, f.cache.items)
}
