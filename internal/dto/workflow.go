package dto

import "github.com/univ-fst/exam-planner-api/internal/models"

// WorkflowResponse returns the status histogram after a transition.
type WorkflowResponse struct {
	Message          string                 `json:"message"`
	ValidationStatus models.StatusHistogram `json:"validation_status"`
}

// StatusSummary reports the approval workflow state at a glance.
type StatusSummary struct {
	ValidationStatus    models.StatusHistogram `json:"validation_status"`
	PendingDepartments  []string               `json:"pending_departments"`
	ReadyForFinal       bool                   `json:"ready_for_final"`
	ScheduleIsFinalized bool                   `json:"schedule_is_finalized"`
}

// ResetRequest demotes assignments back to DRAFT so a new draft may run.
// Force is required to touch FINAL_APPROVED rows.
type ResetRequest struct {
	DepartmentID string `json:"department_id"`
	Force        bool   `json:"force"`
}
