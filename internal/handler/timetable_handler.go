package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/middleware"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/service"
	"github.com/univ-fst/exam-planner-api/pkg/response"
)

type timetableProvider interface {
	Rows(ctx context.Context, query dto.TimetableQuery, claims *models.JWTClaims) ([]models.TimetableRow, error)
	Export(ctx context.Context, query dto.TimetableQuery, format string, claims *models.JWTClaims) (*service.ExportResult, error)
}

// TimetableHandler exposes the timetable read and export endpoints.
type TimetableHandler struct {
	service timetableProvider
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary Flattened timetable listing
// @Description Assignments joined with exam, room, slot, and supervisor names. Department-bound roles only see their department.
// @Tags Timetable
// @Produce json
// @Param department_id query string false "Filter by department"
// @Param program_id query string false "Filter by program"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.service.Rows(c.Request.Context(), query, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export the timetable as CSV or PDF
// @Tags Timetable
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param department_id query string false "Filter by department"
// @Param program_id query string false "Filter by program"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Export(c.Request.Context(), query.TimetableQuery, query.Format, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
