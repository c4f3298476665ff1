package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

func cleanAssignments() []models.Assignment {
	return []models.Assignment{
		{ExamID: "e1", RoomID: "r1", TimeSlotID: "s1", SupervisorID: "sup1", Status: models.StatusDraft},
		{ExamID: "e2", RoomID: "r1", TimeSlotID: "s2", SupervisorID: "sup1", Status: models.StatusDraft},
		{ExamID: "e3", RoomID: "r2", TimeSlotID: "s3", SupervisorID: "sup2", Status: models.StatusDraft},
		{ExamID: "e4", RoomID: "r2", TimeSlotID: "s4", SupervisorID: "sup2", Status: models.StatusDraft},
	}
}

func TestEvaluateCleanSchedule(t *testing.T) {
	snap := testSnapshot()

	report := Evaluate(snap.Index(), cleanAssignments(), Options{Weights: DefaultWeights()})

	assert.Empty(t, report.HardViolations)
	assert.Empty(t, report.SoftViolations)
	assert.Greater(t, report.SoftCost, 0.0, "room waste alone keeps the soft cost positive")
}

func TestEvaluateDetectsRoomDoubleBooking(t *testing.T) {
	snap := testSnapshot()
	assignments := cleanAssignments()
	assignments[1].TimeSlotID = "s1" // e2 joins e1 in r1/s1

	report := Evaluate(snap.Index(), assignments, Options{Weights: DefaultWeights()})

	require.GreaterOrEqual(t, len(report.HardViolations), 1)
	assert.Equal(t, 1, countKind(report.HardViolations, KindRoomDoubleBooked))
	// st1 sits e1 and e2, so the same move also raises a student conflict.
	assert.Equal(t, 1, countKind(report.HardViolations, KindStudentConflict))
}

func TestEvaluateDetectsSupervisorDoubleBooking(t *testing.T) {
	snap := testSnapshot()
	assignments := cleanAssignments()
	assignments[2].TimeSlotID = "s1"
	assignments[2].SupervisorID = "sup1"

	report := Evaluate(snap.Index(), assignments, Options{Weights: DefaultWeights()})

	assert.Equal(t, 1, countKind(report.HardViolations, KindSupervisorDoubleBooked))
	assert.Zero(t, countKind(report.HardViolations, KindRoomDoubleBooked))
}

func TestEvaluateCapacityEscalation(t *testing.T) {
	snap := testSnapshot()
	assignments := cleanAssignments()
	assignments[2].RoomID = "r1" // e3 expects 60, r1 seats 30
	assignments[0].RoomID = "r2"

	soft := Evaluate(snap.Index(), assignments, Options{Weights: DefaultWeights()})
	assert.Zero(t, countKind(soft.HardViolations, KindRoomCapacityExceeded))
	assert.Equal(t, 1, countKind(soft.SoftViolations, KindRoomCapacityExceeded))

	hard := Evaluate(snap.Index(), assignments, Options{Weights: DefaultWeights(), CapacityHard: true})
	assert.Equal(t, 1, countKind(hard.HardViolations, KindRoomCapacityExceeded))
	assert.Zero(t, countKind(hard.SoftViolations, KindRoomCapacityExceeded))
}

func TestEvaluateSoftCapacityBreachIsNeverFree(t *testing.T) {
	snap := testSnapshot()
	idx := snap.Index()

	breached := cleanAssignments()
	breached[2].RoomID = "r1" // e3 expects 60, r1 seats 30
	breached[0].RoomID = "r2"

	deficitOnly := Evaluate(idx, breached, Options{Weights: Weights{CapacityDeficit: 5.0}})
	require.Equal(t, 1, countKind(deficitOnly.SoftViolations, KindRoomCapacityExceeded))
	assert.InDelta(t, 5.0*float64(60-30)/30.0, deficitOnly.SoftCost, 1e-9,
		"deficit term is the weighted missing-seat ratio")

	// Under the full profile the breached layout must cost more than the
	// clean one, even though the undersized room leaves the waste sum.
	clean := Evaluate(idx, cleanAssignments(), Options{Weights: DefaultWeights()})
	full := Evaluate(idx, breached, Options{Weights: DefaultWeights()})
	assert.Greater(t, full.SoftCost, clean.SoftCost)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	snap := testSnapshot()
	assignments := cleanAssignments()
	assignments[1].TimeSlotID = "s1"

	idx := snap.Index()
	first := Evaluate(idx, assignments, Options{Weights: DefaultWeights()})
	second := Evaluate(idx, assignments, Options{Weights: DefaultWeights()})

	assert.Equal(t, first, second)
}

func TestEvaluateSoftCostRespondsToWeights(t *testing.T) {
	snap := testSnapshot()
	idx := snap.Index()
	assignments := cleanAssignments()

	zero := Evaluate(idx, assignments, Options{})
	weighted := Evaluate(idx, assignments, Options{Weights: DefaultWeights()})

	assert.Zero(t, zero.SoftCost, "zero weights must zero the soft cost")
	assert.Greater(t, weighted.SoftCost, zero.SoftCost)
}
