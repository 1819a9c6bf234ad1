package dto

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest carries the conversation so far.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	UserID   string        `json:"user_id,omitempty"`
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

// ChatHealthResponse reports whether chat is usable.
type ChatHealthResponse struct {
	Status       string  `json:"status"`
	LLMAvailable bool    `json:"llm_available"`
	Model        *string `json:"model"`
}
