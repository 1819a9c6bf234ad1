package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

const (
	// MaxScheduledAssignments is how many top-priority assignments get study suggestions per run.
	MaxScheduledAssignments = 5
	planningFetchLimit      = 100
	defaultPlanningHorizon  = 30 * 24 * time.Hour
)

// PlanCacheKey is the cache key holding the latest plan of a user.
func PlanCacheKey(userID string) string {
	return "plan:" + userID
}

type planningAssignments interface {
	ListByUser(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, error)
	AppendSuggestions(ctx context.Context, id string, times []time.Time) error
}

type planningCourses interface {
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
}

type planningCalendar interface {
	ListEvents(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error)
}

type planningUsers interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type deadlineChecker interface {
	CheckUpcomingDeadlines(ctx context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error)
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PlanningOptions tunes a planning run.
type PlanningOptions struct {
	Horizon           time.Duration
	ReminderLookahead time.Duration
	CacheTTL          time.Duration
	DefaultHours      []int
}

// PlanningServiceParams groups the collaborators of PlanningService.
type PlanningServiceParams struct {
	Assignments planningAssignments
	Courses     planningCourses
	Calendar    planningCalendar
	Users       planningUsers
	Reminders   deadlineChecker
	Enricher    RecommendationEnricher
	Cache       planCache
	Metrics     *MetricsService
	Logger      *zap.Logger
	Options     PlanningOptions
}

// PlanningService runs the study planning pipeline for one user at a time.
type PlanningService struct {
	assignments planningAssignments
	courses     planningCourses
	calendar    planningCalendar
	users       planningUsers
	reminders   deadlineChecker
	enricher    RecommendationEnricher
	cache       planCache
	metrics     *MetricsService
	logger      *zap.Logger
	opts        PlanningOptions
	now         func() time.Time
}

// NewPlanningService builds the orchestrator. Cache, Reminders, Users and Metrics are optional.
func NewPlanningService(p PlanningServiceParams) *PlanningService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Enricher == nil {
		p.Enricher = NoopEnricher{}
	}
	if p.Options.Horizon <= 0 {
		p.Options.Horizon = defaultPlanningHorizon
	}
	if p.Options.ReminderLookahead <= 0 {
		p.Options.ReminderLookahead = DefaultReminderLookahead
	}
	if len(p.Options.DefaultHours) == 0 {
		p.Options.DefaultHours = DefaultPreferredHours
	}
	return &PlanningService{
		assignments: p.Assignments,
		courses:     p.Courses,
		calendar:    p.Calendar,
		users:       p.Users,
		reminders:   p.Reminders,
		enricher:    p.Enricher,
		cache:       p.Cache,
		metrics:     p.Metrics,
		logger:      p.Logger,
		opts:        p.Options,
		now:         time.Now,
	}
}

// RunPlanning fetches the user's state, prioritizes, suggests study times, sends reminders
// and aggregates a plan. Only a failed fetch aborts the run.
func (s *PlanningService) RunPlanning(ctx context.Context, userID string) (*models.PlanningResult, error) {
	started := time.Now()
	state := &models.PlanningRunState{
		UserID: userID,
		Now:    s.now().UTC(),
		Stage:  models.PlanningStageInitialized,
	}
	logger := s.logger.With(zap.String("user_id", userID))

	if err := s.fetchState(ctx, state); err != nil {
		logger.Error("planning aborted", zap.Error(err))
		s.metrics.ObservePlanningRun(PlanningOutcomeFetchFail, time.Since(started), 0)
		return nil, err
	}
	s.prioritize(state, logger)
	s.suggestSchedule(ctx, state, logger)
	s.sendReminders(ctx, state, logger)
	s.aggregate(ctx, state)

	result := &models.PlanningResult{
		UserID:        userID,
		Assignments:   state.Assignments,
		Suggestions:   state.Suggestions,
		StudyPlan:     state.Plan,
		RemindersSent: state.Reminders,
		GeneratedAt:   state.Now,
	}
	if s.cache != nil {
		// set failures are logged by the cache service
		_ = s.cache.Set(ctx, PlanCacheKey(userID), result, s.opts.CacheTTL)
	}

	suggested := 0
	for _, sg := range state.Suggestions {
		suggested += len(sg.SuggestedTimes)
	}
	s.metrics.ObservePlanningRun(PlanningOutcomeSuccess, time.Since(started), suggested)
	logger.Info("planning complete",
		zap.Int("assignments", len(state.Assignments)),
		zap.Int("suggested_times", suggested),
		zap.Int("reminders", len(state.Reminders)),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

// LatestPlan returns the cached result of the last run.
func (s *PlanningService) LatestPlan(ctx context.Context, userID string) (*models.PlanningResult, error) {
	if s.cache == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan available")
	}
	var result models.PlanningResult
	hit, err := s.cache.Get(ctx, PlanCacheKey(userID), &result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "plan cache unavailable")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no plan available")
	}
	return &result, nil
}

// PlanForExport returns the latest plan, running a fresh one when none is cached or the cache is unreadable.
func (s *PlanningService) PlanForExport(ctx context.Context, userID string) (*models.PlanningResult, error) {
	result, err := s.LatestPlan(ctx, userID)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if !appErrors.HasCode(err, appErrors.ErrNotFound) {
		s.logger.Warn("plan cache read failed, running fresh plan", zap.String("user_id", userID), zap.Error(err))
	}
	return s.RunPlanning(ctx, userID)
}

func (s *PlanningService) fetchState(ctx context.Context, state *models.PlanningRunState) error {
	fetchFailed := func(err error, what string) error {
		return appErrors.Wrap(err, appErrors.ErrDataFetch.Code, appErrors.ErrDataFetch.Status, "failed to fetch "+what)
	}

	assignments, err := s.assignments.ListByUser(ctx, state.UserID, models.AssignmentFilter{ExcludeCompleted: true, Limit: planningFetchLimit})
	if err != nil {
		return fetchFailed(err, "assignments")
	}
	courses, err := s.courses.ListByUser(ctx, state.UserID)
	if err != nil {
		return fetchFailed(err, "courses")
	}
	events, err := s.calendar.ListEvents(ctx, state.UserID, state.Now, state.Now.Add(s.opts.Horizon))
	if err != nil {
		return fetchFailed(err, "calendar events")
	}

	state.PreferredHours = s.opts.DefaultHours
	if s.users != nil {
		user, err := s.users.FindByID(ctx, state.UserID)
		switch {
		case err == nil:
			if hours := user.Preferences().PreferredHours; len(hours) > 0 {
				state.PreferredHours = hours
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fetchFailed(err, "user")
		}
	}

	state.Assignments = assignments
	state.Courses = courses
	state.CalendarEvents = make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			s.logger.Warn("skipping malformed calendar event", zap.String("event_id", e.ID), zap.Error(err))
			s.metrics.RecordSkippedRecord("fetch")
			continue
		}
		state.CalendarEvents = append(state.CalendarEvents, e)
	}
	state.Stage = models.PlanningStageFetched
	return nil
}

func (s *PlanningService) prioritize(state *models.PlanningRunState, logger *zap.Logger) {
	valid := make([]models.Assignment, 0, len(state.Assignments))
	for _, a := range state.Assignments {
		if err := a.Validate(); err != nil {
			logger.Warn("skipping malformed assignment", zap.String("assignment_id", a.ID), zap.Error(err))
			s.metrics.RecordSkippedRecord("prioritize")
			continue
		}
		valid = append(valid, a)
	}
	state.Assignments = PrioritizeAssignments(valid, state.Now)
	state.Stage = models.PlanningStagePrioritized
}

func (s *PlanningService) suggestSchedule(ctx context.Context, state *models.PlanningRunState, logger *zap.Logger) {
	top := state.Assignments
	if len(top) > MaxScheduledAssignments {
		top = top[:MaxScheduledAssignments]
	}
	state.Suggestions = make([]models.StudySuggestion, 0, len(top))
	for _, a := range top {
		busy, err := s.busyBetween(ctx, state, state.Now, a.DueDate)
		if err != nil {
			logger.Warn("skipping schedule suggestion", zap.String("assignment_id", a.ID), zap.Error(err))
			s.metrics.RecordSkippedRecord("suggest")
			continue
		}
		slots := FindFreeSlots(busy, state.Now, a.DueDate, a.EstimatedHours)
		times := SuggestStudyTimes(a, slots, state.PreferredHours)
		if len(times) > 0 {
			if err := s.assignments.AppendSuggestions(ctx, a.ID, times); err != nil {
				logger.Warn("failed to persist study suggestions", zap.String("assignment_id", a.ID), zap.Error(err))
			}
		}
		state.Suggestions = append(state.Suggestions, models.StudySuggestion{
			AssignmentID:   a.ID,
			Title:          a.Title,
			SuggestedTimes: times,
			EstimatedHours: a.EstimatedHours,
		})
	}
	state.Stage = models.PlanningStageSuggested
}

// busyBetween serves events from the run snapshot when the window lies inside the fetched horizon.
func (s *PlanningService) busyBetween(ctx context.Context, state *models.PlanningRunState, start, end time.Time) ([]models.CalendarEvent, error) {
	if !start.Before(end) {
		return nil, nil
	}
	if !end.After(state.Now.Add(s.opts.Horizon)) {
		busy := make([]models.CalendarEvent, 0, len(state.CalendarEvents))
		for _, e := range state.CalendarEvents {
			if e.EndTime.After(start) && e.StartTime.Before(end) {
				busy = append(busy, e)
			}
		}
		return busy, nil
	}
	events, err := s.calendar.ListEvents(ctx, state.UserID, start, end)
	if err != nil {
		return nil, err
	}
	busy := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.Validate() == nil {
			busy = append(busy, e)
		}
	}
	return busy, nil
}

func (s *PlanningService) sendReminders(ctx context.Context, state *models.PlanningRunState, logger *zap.Logger) {
	state.Reminders = []models.ReminderRecord{}
	if s.reminders != nil {
		sent, err := s.reminders.CheckUpcomingDeadlines(ctx, state.UserID, s.opts.ReminderLookahead)
		if err != nil {
			logger.Warn("deadline reminders failed", zap.Error(err))
		} else {
			state.Reminders = sent
		}
	}
	state.Stage = models.PlanningStageReminded
}

func (s *PlanningService) aggregate(ctx context.Context, state *models.PlanningRunState) {
	state.Plan = s.enricher.Enrich(ctx, AggregateStudyPlan(state.Assignments, state.Now))
	state.Stage = models.PlanningStageComplete
}
