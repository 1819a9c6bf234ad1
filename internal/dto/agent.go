package dto

import "github.com/noah-isme/studyplanner-api/internal/models"

// AgentHealthResponse describes the planning agent and its optional text generation backend.
type AgentHealthResponse struct {
	Status       string `json:"status"`
	AgentType    string `json:"agent_type"`
	LLMAvailable bool   `json:"llm_available"`
	Model        string `json:"model,omitempty"`
	Note         string `json:"note,omitempty"`
}

// DeadlineCheckResponse lists the reminders sent by a deadline check.
type DeadlineCheckResponse struct {
	UserID        string                  `json:"user_id"`
	RemindersSent []models.ReminderRecord `json:"reminders_sent"`
}
