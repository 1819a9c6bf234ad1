package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/dto"
	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

type fakeChatSrv struct {
	available bool
	last      dto.ChatRequest
}

func (f *fakeChatSrv) Reply(_ context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	f.last = req
	if !f.available {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "chat is not available")
	}
	return &dto.ChatResponse{Message: "Start early.", Model: "m"}, nil
}

func (f *fakeChatSrv) Health() dto.ChatHealthResponse {
	if !f.available {
		return dto.ChatHealthResponse{Status: "unavailable"}
	}
	return dto.ChatHealthResponse{Status: "healthy", LLMAvailable: true}
}

const chatBody = `{"messages":[{"role":"user","content":"How should I study?"}]}`

func TestChatHandlerReplies(t *testing.T) {
	srv := &fakeChatSrv{available: true}
	h := NewChatHandler(srv)

	rec := serve(t, h.Chat, testRequest{method: http.MethodPost, target: "/chat", body: chatBody, claims: &models.JWTClaims{UserID: "u1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), "Start early.")
	assert.Equal(t, "u1", srv.last.UserID)
}

func TestChatHandlerUnavailable(t *testing.T) {
	h := NewChatHandler(&fakeChatSrv{})

	rec := serve(t, h.Chat, testRequest{method: http.MethodPost, target: "/chat", body: chatBody})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, h.Health, testRequest{method: http.MethodGet, target: "/chat/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"status":"unavailable"`)
}
