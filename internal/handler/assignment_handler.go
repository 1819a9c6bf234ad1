package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/service"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/response"
)

type assignmentService interface {
	ListByUser(ctx context.Context, userID string, status *models.AssignmentStatus) ([]models.Assignment, error)
	Get(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, id string, req service.UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListByUser godoc
// @Summary List assignments of a user
// @Description Ordered by due date, optionally filtered by status
// @Tags Assignments
// @Produce json
// @Param userId path string true "User ID"
// @Param status query string false "pending, in_progress or completed"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/user/{userId} [get]
func (h *AssignmentHandler) ListByUser(c *gin.Context) {
	var status *models.AssignmentStatus
	if raw := c.Query("status"); raw != "" {
		s := models.AssignmentStatus(raw)
		status = &s
	}
	items, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	item, err := h.owned(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := authorizeOwner(c, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update assignment
// @Description Partial update; omitted fields keep their value
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if _, err := h.owned(c); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if _, err := h.owned(c); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AssignmentHandler) owned(c *gin.Context) (*models.Assignment, error) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, item.UserID); err != nil {
		return nil, err
	}
	return item, nil
}
