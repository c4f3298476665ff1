// Package solver implements the exam timetabling core: a pure constraint
// evaluator, a deterministic greedy draft builder, an annealing optimizer,
// and the KPI aggregation consumed by the dashboard endpoints.
package solver

import "time"

// Violation kinds reported by the evaluator.
const (
	KindRoomDoubleBooked       = "ROOM_DOUBLE_BOOKED"
	KindSupervisorDoubleBooked = "SUPERVISOR_DOUBLE_BOOKED"
	KindStudentConflict        = "STUDENT_CONFLICT"
	KindRoomCapacityExceeded   = "ROOM_CAPACITY_EXCEEDED"
)

// WarnNoOptimizableAssignments is reported, not thrown, when every
// assignment is pinned by an approval and the optimizer has nothing to do.
const WarnNoOptimizableAssignments = "NO_OPTIMIZABLE_ASSIGNMENTS"

// Violation is a single constraint breach tied to an exam.
type Violation struct {
	Kind              string `json:"kind"`
	ExamID            string `json:"exam_id"`
	ConflictingExamID string `json:"conflicting_exam_id,omitempty"`
	Target            string `json:"target,omitempty"`
	Detail            string `json:"detail,omitempty"`
}

// Report is the evaluator output: blocking breaches plus the soft quality
// cost used to rank otherwise-valid schedules.
type Report struct {
	HardViolations []Violation `json:"hard_violations"`
	SoftViolations []Violation `json:"soft_violations"`
	SoftCost       float64     `json:"soft_cost"`
}

// Violations returns hard and soft breaches as one audit list.
func (r Report) Violations() []Violation {
	out := make([]Violation, 0, len(r.HardViolations)+len(r.SoftViolations))
	out = append(out, r.HardViolations...)
	out = append(out, r.SoftViolations...)
	return out
}

// Weights rank the soft-cost terms. Operators retune these through
// configuration; they are never hardcoded in the evaluator.
type Weights struct {
	LoadVariance float64 `json:"load_variance"`
	RoomWaste    float64 `json:"room_waste"`
	Spread       float64 `json:"spread"`
	// CapacityDeficit prices each soft ROOM_CAPACITY_EXCEEDED breach by its
	// missing-seat ratio, so an undersized room is never cheaper than a
	// wasteful one.
	CapacityDeficit float64 `json:"capacity_deficit"`
}

// DefaultWeights returns the shipped weight profile.
func DefaultWeights() Weights {
	return Weights{LoadVariance: 2.0, RoomWaste: 1.0, Spread: 1.5, CapacityDeficit: 10.0}
}

// Options configures constraint semantics shared by every solver phase.
type Options struct {
	Weights Weights
	// CapacityHard escalates ROOM_CAPACITY_EXCEEDED from a recorded soft
	// conflict to a blocking hard violation.
	CapacityHard bool
	// SupervisorDailyCap bounds supervisions per supervisor per day.
	// Zero disables the cap.
	SupervisorDailyCap int
	Seed               int64
}

// Budget bounds one optimizer invocation. Zero values fall back to the
// defaults below; the run always terminates when either bound trips.
type Budget struct {
	Iterations  int
	MaxDuration time.Duration
	// StallWindow stops the search early after this many consecutive
	// iterations without an accepted move.
	StallWindow int
	// StartTemperature and CoolingFactor drive the geometric annealing
	// schedule.
	StartTemperature float64
	CoolingFactor    float64
}

const (
	defaultIterations  = 20000
	defaultMaxDuration = 30 * time.Second
	defaultStallWindow = 500
	defaultStartTemp   = 10.0
	defaultCooling     = 0.9995
)

func (b Budget) withDefaults() Budget {
	if b.Iterations <= 0 {
		b.Iterations = defaultIterations
	}
	if b.MaxDuration <= 0 {
		b.MaxDuration = defaultMaxDuration
	}
	if b.StallWindow <= 0 {
		b.StallWindow = defaultStallWindow
	}
	if b.StartTemperature <= 0 {
		b.StartTemperature = defaultStartTemp
	}
	if b.CoolingFactor <= 0 || b.CoolingFactor >= 1 {
		b.CoolingFactor = defaultCooling
	}
	return b
}

// QualityReport summarises the gain of one optimizer invocation.
type QualityReport struct {
	InitialCost          float64 `json:"initial_cost"`
	FinalCost            float64 `json:"final_cost"`
	GainPct              float64 `json:"gain_pct"`
	HardViolationsBefore int     `json:"hard_violations_before"`
	HardViolationsAfter  int     `json:"hard_violations_after"`
	Iterations           int     `json:"iterations"`
	AcceptedMoves        int     `json:"accepted_moves"`
	Converged            bool    `json:"converged"`
	Warning              string  `json:"warning,omitempty"`
}
