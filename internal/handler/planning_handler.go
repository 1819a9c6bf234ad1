package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyplanner-api/internal/dto"
	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/service"
	"github.com/noah-isme/studyplanner-api/pkg/response"
	"github.com/noah-isme/studyplanner-api/pkg/textgen"
)

const agentType = "StudyPlannerAgent"

type planningService interface {
	RunPlanning(ctx context.Context, userID string) (*models.PlanningResult, error)
	LatestPlan(ctx context.Context, userID string) (*models.PlanningResult, error)
}

type planExporter interface {
	ExportPlan(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportFile, error)
}

type deadlineService interface {
	CheckUpcomingDeadlines(ctx context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error)
}

// PlanningHandler exposes the planning agent.
type PlanningHandler struct {
	planner   planningService
	exporter  planExporter
	deadlines deadlineService
	llm       textgen.Generator
	lookahead time.Duration
}

// NewPlanningHandler constructs handler. llm is only consulted for health reporting.
func NewPlanningHandler(planner planningService, exporter planExporter, deadlines deadlineService, llm textgen.Generator, lookahead time.Duration) *PlanningHandler {
	if llm == nil {
		llm = textgen.Disabled{}
	}
	return &PlanningHandler{planner: planner, exporter: exporter, deadlines: deadlines, llm: llm, lookahead: lookahead}
}

// Run godoc
// @Summary Run study planning
// @Description Prioritizes open assignments, suggests study times, sends due reminders and summarises the plan
// @Tags Agent
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /agent/plan/{userId} [post]
func (h *PlanningHandler) Run(c *gin.Context) {
	result, err := h.planner.RunPlanning(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Latest godoc
// @Summary Latest cached plan
// @Tags Agent
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /agent/plan/{userId}/latest [get]
func (h *PlanningHandler) Latest(c *gin.Context) {
	result, err := h.planner.LatestPlan(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"cache_hit": true})
}

// Export godoc
// @Summary Export plan
// @Description Download the latest plan as CSV or PDF, running one if none is cached
// @Tags Agent
// @Produce text/csv
// @Produce application/pdf
// @Param userId path string true "User ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /agent/plan/{userId}/export [get]
func (h *PlanningHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.ExportPlan(c.Request.Context(), c.Param("userId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Deadlines godoc
// @Summary Check upcoming deadlines
// @Description Sends reminders for assignments due soon that were not reminded recently
// @Tags Agent
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /agent/deadlines/{userId} [post]
func (h *PlanningHandler) Deadlines(c *gin.Context) {
	userID := c.Param("userId")
	sent, err := h.deadlines.CheckUpcomingDeadlines(c.Request.Context(), userID, h.lookahead)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeadlineCheckResponse{UserID: userID, RemindersSent: sent}, nil)
}

// Health godoc
// @Summary Agent health
// @Tags Agent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agent/health [get]
func (h *PlanningHandler) Health(c *gin.Context) {
	res := dto.AgentHealthResponse{
		Status:       "healthy",
		AgentType:    agentType,
		LLMAvailable: h.llm.Available(),
		Model:        h.llm.Model(),
	}
	if !res.LLMAvailable {
		res.Note = "planning works without a text generation backend; recommendations are not enriched"
	}
	response.JSON(c, http.StatusOK, res, nil)
}
