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

// AssignmentStore is the persistence surface shared by the assignment, notification and planning services.
type AssignmentStore interface {
	ListByUser(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, error)
	ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Assignment, error)
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, a *models.Assignment) error
	Update(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, id string) error
	AppendReminder(ctx context.Context, id string, ts time.Time) error
	AppendSuggestions(ctx context.Context, id string, times []time.Time) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// CreateAssignmentRequest captures the payload for a new assignment.
type CreateAssignmentRequest struct {
	UserID         string    `json:"user_id" validate:"required"`
	CourseID       string    `json:"course_id" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	Description    *string   `json:"description"`
	DueDate        time.Time `json:"due_date" validate:"required"`
	Priority       int       `json:"priority" validate:"required,min=1,max=5"`
	EstimatedHours float64   `json:"estimated_hours" validate:"min=0"`
	Category       *string   `json:"category"`
}

// UpdateAssignmentRequest patches an assignment. Nil fields are left untouched.
type UpdateAssignmentRequest struct {
	CourseID       *string                  `json:"course_id"`
	Title          *string                  `json:"title" validate:"omitempty,min=1"`
	Description    *string                  `json:"description"`
	DueDate        *time.Time               `json:"due_date"`
	Priority       *int                     `json:"priority" validate:"omitempty,min=1,max=5"`
	EstimatedHours *float64                 `json:"estimated_hours" validate:"omitempty,min=0"`
	Status         *models.AssignmentStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Category       *string                  `json:"category"`
}

// AssignmentService manages assignments and keeps the cached plan fresh.
type AssignmentService struct {
	repo      AssignmentStore
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService builds the service. cache may be nil.
func NewAssignmentService(repo AssignmentStore, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListByUser returns the user's assignments ordered by due date.
func (s *AssignmentService) ListByUser(ctx context.Context, userID string, status *models.AssignmentStatus) ([]models.Assignment, error) {
	if status != nil && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	items, err := s.repo.ListByUser(ctx, userID, models.AssignmentFilter{Status: status})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, nil
}

// Get returns an assignment.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return item, nil
}

// Create stores a new pending assignment.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	item := &models.Assignment{
		UserID:         req.UserID,
		CourseID:       req.CourseID,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate.UTC(),
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		Status:         models.AssignmentStatusPending,
		Category:       req.Category,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.invalidatePlan(ctx, item.UserID)
	return item, nil
}

// Update applies a partial update.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CourseID != nil {
		item.CourseID = *req.CourseID
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.DueDate != nil {
		item.DueDate = req.DueDate.UTC()
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.EstimatedHours != nil {
		item.EstimatedHours = *req.EstimatedHours
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	if req.Category != nil {
		item.Category = req.Category
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.invalidatePlan(ctx, item.UserID)
	return item, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.invalidatePlan(ctx, item.UserID)
	return nil
}

func (s *AssignmentService) invalidatePlan(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, PlanCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate cached plan", zap.String("user_id", userID), zap.Error(err))
	}
}
