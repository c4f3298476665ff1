package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/middleware"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/service"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/response"
)

type workflowDriver interface {
	ValidateDepartment(ctx context.Context, departmentID string) (*dto.WorkflowResponse, error)
	ApproveFinal(ctx context.Context) (*dto.WorkflowResponse, error)
	Reset(ctx context.Context, req dto.ResetRequest) (*dto.WorkflowResponse, error)
	StatusSummary(ctx context.Context) (*dto.StatusSummary, error)
}

// WorkflowHandler exposes the approval workflow endpoints.
type WorkflowHandler struct {
	service workflowDriver
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

// ValidateDepartment godoc
// @Summary Approve a department's draft assignments
// @Description Promotes the department's DRAFT assignments to DEPT_APPROVED. Refused while the department has unresolved hard conflicts. A HEAD may only validate their own department.
// @Tags Workflow
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Unresolved hard conflicts"
// @Security BearerAuth
// @Router /workflow/validate-dept/{id} [post]
func (h *WorkflowHandler) ValidateDepartment(c *gin.Context) {
	departmentID := c.Param("id")

	claims := middleware.CurrentClaims(c)
	if claims != nil && claims.Role == models.RoleHead && claims.DepartmentID != departmentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "heads may only validate their own department"))
		return
	}

	result, err := h.service.ValidateDepartment(c.Request.Context(), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ApproveFinal godoc
// @Summary Finalize the timetable
// @Description Promotes every DEPT_APPROVED assignment to FINAL_APPROVED once all departments validated.
// @Tags Workflow
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope "Departments still pending validation"
// @Security BearerAuth
// @Router /workflow/approve-final [post]
func (h *WorkflowHandler) ApproveFinal(c *gin.Context) {
	result, err := h.service.ApproveFinal(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Reset approvals back to draft, department-wide or institution-wide
// @Tags Workflow
// @Accept json
// @Produce json
// @Param payload body dto.ResetRequest false "Reset payload; omit department_id to reset every department"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Finalized assignments require force"
// @Security BearerAuth
// @Router /workflow/reset [post]
func (h *WorkflowHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
			return
		}
	}

	result, err := h.service.Reset(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StatusSummary godoc
// @Summary Approval workflow status at a glance
// @Tags Workflow
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /workflow/status-summary [get]
func (h *WorkflowHandler) StatusSummary(c *gin.Context) {
	summary, err := h.service.StatusSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
