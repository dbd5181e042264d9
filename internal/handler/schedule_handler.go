package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadsync/timetable-api/internal/dto"
	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/internal/service"
	appErrors "github.com/acadsync/timetable-api/pkg/errors"
	"github.com/acadsync/timetable-api/pkg/jobs"
	"github.com/acadsync/timetable-api/pkg/response"
)

const maxGenerationRows = 512

// TaskWarmConflicts asks the background queue to precompute a group's
// conflict report so the first read after a write hits the cache.
const TaskWarmConflicts = "conflict_report.warm"

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

type scheduleReader interface {
	ListGroups(ctx context.Context, department, schoolYear, semester string) ([]models.ScheduleGroup, error)
	GetGroup(ctx context.Context, id string) (*models.ScheduleGroup, error)
	ListMeetings(ctx context.Context, groupID string) ([]models.MeetingDetail, error)
	DeleteGroup(ctx context.Context, id string) error
	ConflictReport(ctx context.Context, groupID string) (*models.ConflictReport, error)
	Repair(ctx context.Context, groupID string) (*dto.RepairResponse, error)
}

type taskEnqueuer interface {
	Enqueue(task jobs.Task) error
}

// ScheduleHandler exposes generation and group lifecycle endpoints.
type ScheduleHandler struct {
	generator scheduleGenerator
	schedules scheduleReader
	warmQueue taskEnqueuer
}

// NewScheduleHandler constructs the handler. warmQueue may be nil, in which
// case conflict reports are computed lazily on first read.
func NewScheduleHandler(generator *service.AllocatorService, schedules *service.ScheduleService, warmQueue *jobs.Queue) *ScheduleHandler {
	h := &ScheduleHandler{generator: generator, schedules: schedules}
	if warmQueue != nil {
		h.warmQueue = warmQueue
	}
	return h
}

func (h *ScheduleHandler) warmConflicts(groupID string) {
	if h.warmQueue == nil || groupID == "" {
		return
	}
	// Best effort; the report is rebuilt on demand if warming fails.
	_ = h.warmQueue.Enqueue(jobs.Task{Kind: TaskWarmConflicts, GroupID: groupID})
}

// Generate godoc
// @Summary Generate a timetable for a term
// @Description Runs the allocation engine over the submitted course load and persists the result as a new schedule group.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	if len(req.Rows) > maxGenerationRows {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "too many course rows in one request"))
		return
	}
	resp, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.warmConflicts(resp.GroupID)
	response.JSON(c, http.StatusOK, resp, nil)
}

// ListGroups godoc
// @Summary List schedule groups
// @Tags Scheduler
// @Produce json
// @Param department query string false "Department"
// @Param schoolYear query string false "School year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /schedules/groups [get]
func (h *ScheduleHandler) ListGroups(c *gin.Context) {
	groups, err := h.schedules.ListGroups(c.Request.Context(),
		c.Query("department"), c.Query("schoolYear"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// GetGroup godoc
// @Summary Get one schedule group
// @Tags Scheduler
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/groups/{id} [get]
func (h *ScheduleHandler) GetGroup(c *gin.Context) {
	group, err := h.schedules.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// ListMeetings godoc
// @Summary List a group's meetings
// @Tags Scheduler
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/groups/{id}/meetings [get]
func (h *ScheduleHandler) ListMeetings(c *gin.Context) {
	meetings, err := h.schedules.ListMeetings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings, nil)
}

// DeleteGroup godoc
// @Summary Delete a schedule group
// @Tags Scheduler
// @Param id path string true "Group ID"
// @Success 204
// @Router /schedules/groups/{id} [delete]
func (h *ScheduleHandler) DeleteGroup(c *gin.Context) {
	if err := h.schedules.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Clustered conflict report for a group
// @Tags Conflicts
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/groups/{id}/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	report, err := h.schedules.ConflictReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Repair godoc
// @Summary Shift overlapping meetings apart
// @Description Runs the post-save repair pass over a group, sliding clustered meetings into adjacent free intervals.
// @Tags Conflicts
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/groups/{id}/repair [post]
func (h *ScheduleHandler) Repair(c *gin.Context) {
	resp, err := h.schedules.Repair(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(resp.Moves) > 0 {
		h.warmConflicts(c.Param("id"))
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
