package models

import "time"

// AssignmentStatus tracks the approval lifecycle of one assignment.
// Transitions are linear: DRAFT -> DEPT_APPROVED -> FINAL_APPROVED.
type AssignmentStatus string

const (
	StatusDraft         AssignmentStatus = "DRAFT"
	StatusDeptApproved  AssignmentStatus = "DEPT_APPROVED"
	StatusFinalApproved AssignmentStatus = "FINAL_APPROVED"
)

// Frozen reports whether the solver must leave the assignment untouched.
// Department approval pins the assignment; final approval makes it immutable.
func (s AssignmentStatus) Frozen() bool {
	return s == StatusDeptApproved || s == StatusFinalApproved
}

// Assignment binds one exam to a room, a time slot, and a supervisor.
// RunID records the scheduling run that last touched the row, for audit.
type Assignment struct {
	ExamID       string           `db:"exam_id" json:"exam_id"`
	RoomID       string           `db:"room_id" json:"room_id"`
	TimeSlotID   string           `db:"time_slot_id" json:"time_slot_id"`
	SupervisorID string           `db:"supervisor_id" json:"supervisor_id"`
	Status       AssignmentStatus `db:"status" json:"status"`
	RunID        string           `db:"run_id" json:"run_id"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// TimetableRow is an assignment joined with display names for listing.
type TimetableRow struct {
	ExamID         string           `db:"exam_id" json:"exam_id"`
	ExamName       string           `db:"exam_name" json:"exam_name"`
	RoomID         string           `db:"room_id" json:"room_id"`
	RoomName       string           `db:"room_name" json:"room_name"`
	SupervisorID   string           `db:"supervisor_id" json:"supervisor_id"`
	SupervisorName string           `db:"supervisor_name" json:"supervisor_name"`
	StartTime      time.Time        `db:"start_time" json:"start_time"`
	EndTime        time.Time        `db:"end_time" json:"end_time"`
	DayIndex       int              `db:"day_index" json:"day_index"`
	Status         AssignmentStatus `db:"status" json:"status"`
	ProgramID      string           `db:"program_id" json:"program_id"`
	DepartmentID   string           `db:"department_id" json:"department_id"`
}

// StatusHistogram counts assignments per approval status.
type StatusHistogram struct {
	Draft         int `json:"draft"`
	DeptApproved  int `json:"dept_approved"`
	FinalApproved int `json:"final_approved"`
}

// Add increments the bucket for the given status.
func (h *StatusHistogram) Add(status AssignmentStatus) {
	switch status {
	case StatusDraft:
		h.Draft++
	case StatusDeptApproved:
		h.DeptApproved++
	case StatusFinalApproved:
		h.FinalApproved++
	}
}

// Total returns the histogram sum.
func (h StatusHistogram) Total() int {
	return h.Draft + h.DeptApproved + h.FinalApproved
}
