package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/service"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/response"
)

type editValidator interface {
	ValidateEdit(ctx context.Context, req dto.ValidateEditRequest) (*dto.ValidateEditResponse, error)
	Suggest(ctx context.Context, req dto.SuggestRequest) (*dto.SuggestResponse, error)
	UpdateMeeting(ctx context.Context, meetingID string, req dto.UpdateMeetingRequest) (*dto.UpdateMeetingResponse, error)
}

// EditHandler exposes the interactive editing endpoints.
type EditHandler struct {
	service editValidator
}

// NewEditHandler constructs the handler.
func NewEditHandler(svc *service.EditService) *EditHandler {
	return &EditHandler{service: svc}
}

// ValidateEdit godoc
// @Summary Dry-run a proposed meeting change
// @Description Business-rule violations are reported in the body with ok=false; the endpoint only errors on malformed requests.
// @Tags Editing
// @Accept json
// @Produce json
// @Param payload body dto.ValidateEditRequest true "Proposed change"
// @Success 200 {object} response.Envelope
// @Router /schedules/validate-edit [post]
func (h *EditHandler) ValidateEdit(c *gin.Context) {
	var req dto.ValidateEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}
	resp, err := h.service.ValidateEdit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Suggest godoc
// @Summary Suggest alternative slots for an edit
// @Tags Editing
// @Accept json
// @Produce json
// @Param payload body dto.SuggestRequest true "Suggestion query"
// @Success 200 {object} response.Envelope
// @Router /schedules/suggest [post]
func (h *EditHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	resp, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// UpdateMeeting godoc
// @Summary Apply an edit to a meeting
// @Description Re-validates the change and persists it only when conflict-free.
// @Tags Editing
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param payload body dto.UpdateMeetingRequest true "Updated meeting fields"
// @Success 200 {object} response.Envelope
// @Router /schedules/meetings/{id} [put]
func (h *EditHandler) UpdateMeeting(c *gin.Context) {
	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}
	resp, err := h.service.UpdateMeeting(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if !resp.OK {
		status = http.StatusConflict
	}
	response.JSON(c, status, resp, nil)
}
