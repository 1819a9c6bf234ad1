package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/service"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/response"
)

const (
	defaultCalendarWindow = 7 * 24 * time.Hour
	defaultMinSlotHours   = 1.0
)

type calendarService interface {
	List(ctx context.Context, userID string, start, end time.Time) ([]models.CalendarEvent, error)
	Get(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, req service.CalendarEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, id string, req service.CalendarEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
	FreeSlots(ctx context.Context, userID string, start, end time.Time, minHours float64) ([]models.FreeSlot, error)
}

// CalendarHandler exposes calendar events and free time lookups.
type CalendarHandler struct {
	service calendarService
	now     func() time.Time
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc, now: time.Now}
}

// List godoc
// @Summary List calendar events
// @Description Events overlapping [start, end). Defaults to the next 7 days.
// @Tags Calendar
// @Produce json
// @Param userId path string true "User ID"
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/user/{userId} [get]
func (h *CalendarHandler) List(c *gin.Context) {
	start, end, err := h.window(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.service.List(c.Request.Context(), c.Param("userId"), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// FreeSlots godoc
// @Summary Find free time
// @Description Gaps between events in [start, end) lasting at least min_hours
// @Tags Calendar
// @Produce json
// @Param userId path string true "User ID"
// @Param start query string false "RFC3339 start"
// @Param end query string false "RFC3339 end"
// @Param min_hours query number false "Minimum slot length in hours"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /calendar/user/{userId}/free-slots [get]
func (h *CalendarHandler) FreeSlots(c *gin.Context) {
	start, end, err := h.window(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	minHours := defaultMinSlotHours
	if raw := c.Query("min_hours"); raw != "" {
		minHours, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "min_hours must be a number"))
			return
		}
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), c.Param("userId"), start, end, minHours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil, map[string]interface{}{"min_hours": minHours})
}

// Get godoc
// @Summary Get calendar event
// @Tags Calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	event, err := h.owned(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body service.CalendarEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar event payload"))
		return
	}
	if err := authorizeOwner(c, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.CalendarEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	var req service.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar event payload"))
		return
	}
	if _, err := h.owned(c); err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete calendar event
// @Tags Calendar
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /calendar/events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
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

func (h *CalendarHandler) window(c *gin.Context) (time.Time, time.Time, error) {
	start, err := queryTime(c, "start", h.now().UTC())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := queryTime(c, "end", start.Add(defaultCalendarWindow))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *CalendarHandler) owned(c *gin.Context) (*models.CalendarEvent, error) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, event.UserID); err != nil {
		return nil, err
	}
	return event, nil
}
