package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-fst/exam-planner-api/internal/middleware"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/service"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	"github.com/univ-fst/exam-planner-api/pkg/response"
)

type statsProvider interface {
	DashboardKPIs(ctx context.Context, scope solver.Scope) (*solver.KpiReport, error)
	DetailedConflicts(ctx context.Context) ([]solver.ConflictRow, error)
}

// StatsHandler exposes the dashboard aggregation endpoints.
type StatsHandler struct {
	service statsProvider
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// DashboardKPI godoc
// @Summary Timetable KPIs for the dashboard
// @Description Totals, conflicts per department and program, room occupancy, supervisor loads, and the quality score. Department-bound roles see their department only.
// @Tags Statistics
// @Produce json
// @Param department_id query string false "Filter by department"
// @Param program_id query string false "Filter by program"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /stats/dashboard-kpi [get]
func (h *StatsHandler) DashboardKPI(c *gin.Context) {
	scope := solver.Scope{
		DepartmentID: c.Query("department_id"),
		ProgramID:    c.Query("program_id"),
	}
	if claims := middleware.CurrentClaims(c); claims != nil {
		switch claims.Role {
		case models.RoleHead, models.RoleProfessor:
			if claims.DepartmentID != "" {
				scope.DepartmentID = claims.DepartmentID
			}
		}
	}

	report, err := h.service.DashboardKPIs(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// DetailedConflicts godoc
// @Summary Every violation of the committed timetable
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /stats/conflicts-detailed [get]
func (h *StatsHandler) DetailedConflicts(c *gin.Context) {
	rows, err := h.service.DetailedConflicts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
