package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/service"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

type fakeUserSrv struct {
	created []service.CreateUserRequest
	updates []service.UpdateUserRequest
}

func (f *fakeUserSrv) Get(_ context.Context, id string) (*models.User, error) {
	if id != "u1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &models.User{ID: "u1", Email: "ada@example.com", Name: "Ada", PasswordHash: "secret-hash"}, nil
}

func (f *fakeUserSrv) Create(_ context.Context, req service.CreateUserRequest) (*models.User, error) {
	f.created = append(f.created, req)
	return &models.User{ID: "u9", Email: req.Email, Name: req.Name, Role: models.RoleStudent}, nil
}

func (f *fakeUserSrv) Update(_ context.Context, id string, req service.UpdateUserRequest) (*models.User, error) {
	f.updates = append(f.updates, req)
	return &models.User{ID: id}, nil
}

func TestUserHandlerCreate(t *testing.T) {
	srv := &fakeUserSrv{}
	h := NewUserHandler(srv)

	rec := serve(t, h.Create, testRequest{method: http.MethodPost, target: "/users", body: `{"email":"ada@example.com","name":"Ada","password":"hunter22"}`})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, srv.created, 1)
	assert.Equal(t, "ada@example.com", srv.created[0].Email)
}

func TestUserHandlerGetHidesPasswordHash(t *testing.T) {
	h := NewUserHandler(&fakeUserSrv{})

	rec := serve(t, h.Get, testRequest{method: http.MethodGet, target: "/users/u1", params: userParam("u1")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = serve(t, h.Get, testRequest{method: http.MethodGet, target: "/users/u2", params: userParam("u2")})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandlerUpdatePreferences(t *testing.T) {
	srv := &fakeUserSrv{}
	h := NewUserHandler(srv)

	rec := serve(t, h.Update, testRequest{method: http.MethodPut, target: "/users/u1", body: `{"study_preferences":{"preferred_hours":[7,21]}}`, params: userParam("u1")})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.updates, 1)
	require.NotNil(t, srv.updates[0].StudyPreferences)
	assert.Equal(t, []int{7, 21}, srv.updates[0].StudyPreferences.PreferredHours)
}
