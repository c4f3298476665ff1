package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/service"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/response"
)

type scheduleRunner interface {
	Draft(ctx context.Context) (*dto.RunStats, error)
	Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.RunStats, error)
}

// ScheduleHandler exposes the solver endpoints.
type ScheduleHandler struct {
	service scheduleRunner
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Draft godoc
// @Summary Build a complete draft timetable
// @Description Places every exam with the greedy heuristic and commits the result, replacing all non-finalized assignments.
// @Tags Scheduling
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "A run is already in progress"
// @Failure 422 {object} response.Envelope "Exam demand exceeds room and slot capacity"
// @Security BearerAuth
// @Router /optimize/draft [post]
func (h *ScheduleHandler) Draft(c *gin.Context) {
	stats, err := h.service.Draft(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stats)
}

// Optimize godoc
// @Summary Optimize the timetable with simulated annealing
// @Description Improves the committed schedule or a fresh draft within the requested iteration and time budgets.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeRequest false "Optimization budgets"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "A run is already in progress"
// @Security BearerAuth
// @Router /optimize/run [post]
func (h *ScheduleHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
			return
		}
	}

	stats, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
