package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

// CalendarStore is the persistence surface for calendar events.
type CalendarStore interface {
	ListEvents(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// CalendarEventRequest payload for creating or replacing events.
type CalendarEventRequest struct {
	UserID      string    `json:"user_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	EventType   string    `json:"event_type" validate:"required"`
	Location    *string   `json:"location"`
	Source      string    `json:"source" validate:"omitempty,oneof=manual course_sync agent_suggestion"`
}

// CalendarService manages calendar events and computes free time.
type CalendarService struct {
	repo      CalendarStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo CalendarStore, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, validator: validate, logger: logger}
}

// List returns events overlapping [start, end).
func (s *CalendarService) List(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error) {
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	}
	events, err := s.repo.ListEvents(ctx, userID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	return events, nil
}

// Get returns a single event.
func (s *CalendarService) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar event")
	}
	return event, nil
}

// Create stores a new event.
func (s *CalendarService) Create(ctx context.Context, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar event payload")
	}
	event := &models.CalendarEvent{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		EventType:   req.EventType,
		Location:    req.Location,
		Source:      req.Source,
	}
	if event.Source == "" {
		event.Source = models.EventSourceManual
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar event")
	}
	return event, nil
}

// Update replaces an event's editable fields.
func (s *CalendarService) Update(ctx context.Context, id string, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar event payload")
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Title = req.Title
	event.Description = req.Description
	event.StartTime = req.StartTime.UTC()
	event.EndTime = req.EndTime.UTC()
	event.EventType = req.EventType
	event.Location = req.Location
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update calendar event")
	}
	return event, nil
}

// Delete removes an event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete calendar event")
	}
	return nil
}

// FreeSlots loads busy events in [start, end) and returns the free gaps of at least minHours.
// Store failures surface as ErrDataFetch.
func (s *CalendarService) FreeSlots(ctx context.Context, userID string, start, end time.Time, minHours float64) ([]models.FreeSlot, error) {
	if minHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min_hours must not be negative")
	}
	if !start.Before(end) {
		return []models.FreeSlot{}, nil
	}
	events, err := s.repo.ListEvents(ctx, userID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataFetch.Code, appErrors.ErrDataFetch.Status, "failed to load calendar events")
	}
	busy := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			s.logger.Warn("skipping malformed calendar event", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		busy = append(busy, e)
	}
	return FindFreeSlots(busy, start, end, minHours), nil
}
