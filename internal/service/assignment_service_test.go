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

type invalidationRecorder struct {
	keys []string
	err  error
}

func (r *invalidationRecorder) Invalidate(_ context.Context, keys ...string) error {
	r.keys = append(r.keys, keys...)
	return r.err
}

func TestAssignmentServiceCreateInvalidatesPlan(t *testing.T) {
	store := &fakeAssignmentStore{}
	cache := &invalidationRecorder{}
	svc := NewAssignmentService(store, cache, nil, nil)

	item, err := svc.Create(context.Background(), CreateAssignmentRequest{
		UserID:         "u1",
		CourseID:       "c1",
		Title:          "Lab report",
		DueDate:        runNow.Add(48 * time.Hour),
		Priority:       3,
		EstimatedHours: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusPending, item.Status)
	assert.Equal(t, []string{PlanCacheKey("u1")}, cache.keys)
	require.Len(t, store.items, 1)
}

func TestAssignmentServiceCreateValidates(t *testing.T) {
	svc := NewAssignmentService(&fakeAssignmentStore{}, nil, nil, nil)
	_, err := svc.Create(context.Background(), CreateAssignmentRequest{UserID: "u1", CourseID: "c1", Title: "x", DueDate: runNow, Priority: 9})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAssignmentServiceUpdatePatchesFields(t *testing.T) {
	store := &fakeAssignmentStore{items: []models.Assignment{pending("a1", 24*time.Hour, 2, 3)}}
	cache := &invalidationRecorder{err: errors.New("redis down")}
	svc := NewAssignmentService(store, cache, nil, nil)

	completed := models.AssignmentStatusCompleted
	title := "Renamed"
	item, err := svc.Update(context.Background(), "a1", UpdateAssignmentRequest{Status: &completed, Title: &title})
	require.NoError(t, err)

	assert.True(t, item.IsCompleted())
	assert.Equal(t, "Renamed", store.items[0].Title)
	assert.Equal(t, 2, store.items[0].Priority)
	assert.Len(t, cache.keys, 1)
}

func TestAssignmentServiceNotFound(t *testing.T) {
	svc := NewAssignmentService(&fakeAssignmentStore{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	err = svc.Delete(context.Background(), "missing")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAssignmentServiceListRejectsUnknownStatus(t *testing.T) {
	store := &fakeAssignmentStore{}
	svc := NewAssignmentService(store, nil, nil, nil)

	status := models.AssignmentStatus("archived")
	_, err := svc.ListByUser(context.Background(), "u1", &status)
	require.Error(t, err)

	done := models.AssignmentStatusCompleted
	_, err = svc.ListByUser(context.Background(), "u1", &done)
	require.NoError(t, err)
	assert.Equal(t, &done, store.lastFilter.Status)
}
