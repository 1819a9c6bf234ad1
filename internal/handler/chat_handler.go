package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyplanner-api/internal/dto"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/response"
)

type chatService interface {
	Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
	Health() dto.ChatHealthResponse
}

// ChatHandler relays conversations to the assistant.
type ChatHandler struct {
	service chatService
}

// NewChatHandler constructs handler.
func NewChatHandler(svc chatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// Chat godoc
// @Summary Chat with the study assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Conversation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && req.UserID == "" {
		req.UserID = claims.UserID
	}

	res, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Health godoc
// @Summary Chat availability
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/health [get]
func (h *ChatHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Health(), nil)
}
