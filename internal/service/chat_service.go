package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/dto"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/textgen"
)

const (
	chatHistoryWindow = 5
	chatSystemPrompt  = "You are a helpful study planning assistant for students. You help with time management, study tips, and academic planning."
)

// ChatService relays a conversation to the text generation backend.
type ChatService struct {
	generator textgen.Generator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs the service. A nil generator behaves as unconfigured.
func NewChatService(generator textgen.Generator, logger *zap.Logger) *ChatService {
	if generator == nil {
		generator = textgen.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{generator: generator, validator: validator.New(), logger: logger}
}

// Reply generates the assistant's next message.
func (s *ChatService) Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if !s.generator.Available() {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "chat is not available: text generation backend is not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}

	text, err := s.generator.Generate(ctx, chatPrompt(req.Messages))
	if err != nil {
		var statusErr *textgen.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusGone {
			return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status,
				fmt.Sprintf("model %q is no longer available", s.generator.Model()))
		}
		s.logger.Error("chat generation failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate chat response")
	}

	return &dto.ChatResponse{Message: cleanChatReply(text), Model: s.generator.Model()}, nil
}

// Health reports chat availability.
func (s *ChatService) Health() dto.ChatHealthResponse {
	if !s.generator.Available() {
		return dto.ChatHealthResponse{Status: "unavailable"}
	}
	model := s.generator.Model()
	return dto.ChatHealthResponse{Status: "healthy", LLMAvailable: true, Model: &model}
}

func chatPrompt(messages []dto.ChatMessage) string {
	if len(messages) > chatHistoryWindow {
		messages = messages[len(messages)-chatHistoryWindow:]
	}
	parts := make([]string, 0, len(messages)+1)
	parts = append(parts, chatSystemPrompt)
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			parts = append(parts, "User: "+msg.Content)
		case "assistant":
			parts = append(parts, "Assistant: "+msg.Content)
		}
	}
	prompt := strings.Join(parts, "\n\n")
	if !strings.HasSuffix(prompt, "Assistant:") {
		prompt += "\n\nAssistant:"
	}
	return prompt
}

// cleanChatReply strips any echoed turns around the generated answer.
func cleanChatReply(text string) string {
	if idx := strings.LastIndex(text, "Assistant:"); idx >= 0 {
		text = text[idx+len("Assistant:"):]
	}
	if idx := strings.Index(text, "User:"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
