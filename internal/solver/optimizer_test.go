package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

func TestOptimizeNeverRegresses(t *testing.T) {
	snap := testSnapshot()
	opts := Options{Weights: DefaultWeights(), Seed: 42}

	start, err := BuildDraft(snap, nil, opts)
	require.NoError(t, err)

	_, report := Optimize(snap, start, Budget{Iterations: 2000}, opts)

	assert.LessOrEqual(t, report.HardViolationsAfter, report.HardViolationsBefore)
	assert.LessOrEqual(t, report.FinalCost, report.InitialCost)
	assert.LessOrEqual(t, report.GainPct, 100.0)
}

func TestOptimizeResolvesSupervisorPressureWithSpareSlot(t *testing.T) {
	snap := testSnapshot()
	snap.Supervisors = snap.Supervisors[:1]
	snap.Exams = snap.Exams[:3]
	snap.Modules = snap.Modules[:3]
	snap.TimeSlots = snap.TimeSlots[:3]
	opts := Options{Weights: DefaultWeights(), Seed: 7}

	// Two slots force a supervisor double-booking; the third slot lets the
	// optimizer spread the exams out again.
	cramped := &models.Snapshot{}
	*cramped = *snap
	cramped.TimeSlots = snap.TimeSlots[:2]
	start, err := BuildDraft(cramped, nil, opts)
	require.NoError(t, err)

	before := Evaluate(snap.Index(), start, opts)
	require.Equal(t, 1, countKind(before.HardViolations, KindSupervisorDoubleBooked))

	_, report := Optimize(snap, start, Budget{Iterations: 20000}, opts)

	assert.Equal(t, 1, report.HardViolationsBefore)
	assert.Zero(t, report.HardViolationsAfter, "a spare slot should absorb the double-booking")
}

// singleProctorCampus has one supervisor, two rooms of 50 and 30 seats, and
// three exams of 40, 20, and 45 students. The two large exams both need the
// big room, so capacity discipline and supervisor spreading pull in
// opposite directions.
func singleProctorCampus() *models.Snapshot {
	return &models.Snapshot{
		CycleID:     "cycle-1",
		Departments: []models.Department{{ID: "d1", Name: "Science"}},
		Programs:    []models.Program{{ID: "p1", Name: "General Science", DepartmentID: "d1"}},
		Modules: []models.Module{
			{ID: "m1", Name: "Biology", ProgramID: "p1"},
			{ID: "m2", Name: "Geology", ProgramID: "p1"},
			{ID: "m3", Name: "Chemistry", ProgramID: "p1"},
		},
		Exams: []models.Exam{
			{ID: "e1", ModuleID: "m1", DurationMinutes: 120, ExpectedHeadcount: 40},
			{ID: "e2", ModuleID: "m2", DurationMinutes: 120, ExpectedHeadcount: 20},
			{ID: "e3", ModuleID: "m3", DurationMinutes: 120, ExpectedHeadcount: 45},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "Amphi A", Capacity: 50},
			{ID: "r2", Name: "Salle B", Capacity: 30},
		},
		TimeSlots: []models.TimeSlot{
			slotAt("s1", 0, 8),
			slotAt("s2", 0, 14),
			slotAt("s3", 1, 8),
		},
		Supervisors: []models.Supervisor{
			{ID: "sup1", Name: "Dr. Chafik", DepartmentID: "d1"},
		},
	}
}

func TestOptimizeFixesSupervisorsWithoutCapacityBreaches(t *testing.T) {
	snap := singleProctorCampus()
	opts := Options{Weights: DefaultWeights(), Seed: 21}

	// Draft on two slots: the lone supervisor must double-book once, but
	// every exam still fits its room.
	cramped := &models.Snapshot{}
	*cramped = *snap
	cramped.TimeSlots = snap.TimeSlots[:2]
	start, err := BuildDraft(cramped, nil, opts)
	require.NoError(t, err)

	idx := snap.Index()
	before := Evaluate(idx, start, opts)
	require.Equal(t, 1, countKind(before.HardViolations, KindSupervisorDoubleBooked))
	require.Zero(t, countKind(before.Violations(), KindRoomCapacityExceeded))

	result, report := Optimize(snap, start, Budget{Iterations: 20000}, opts)

	after := Evaluate(idx, result, opts)
	assert.Zero(t, report.HardViolationsAfter, "the spare slot should absorb the double-booking")
	assert.Empty(t, after.HardViolations)
	assert.Zero(t, countKind(after.SoftViolations, KindRoomCapacityExceeded),
		"re-slotting must not squeeze an exam into an undersized room")
}

func TestOptimizeLeavesFrozenRowsUntouched(t *testing.T) {
	snap := testSnapshot()
	opts := Options{Weights: DefaultWeights(), Seed: 99}

	start, err := BuildDraft(snap, nil, opts)
	require.NoError(t, err)

	frozen := make(map[string]models.Assignment)
	for i := range start {
		if start[i].ExamID == "e1" || start[i].ExamID == "e3" {
			start[i].Status = models.StatusDeptApproved
			frozen[start[i].ExamID] = start[i]
		}
	}

	result, _ := Optimize(snap, start, Budget{Iterations: 5000}, opts)

	for _, a := range result {
		if want, ok := frozen[a.ExamID]; ok {
			assert.Equal(t, want, a, "approved assignment %s was moved", a.ExamID)
		}
	}
}

func TestOptimizeAllFrozenReportsWarning(t *testing.T) {
	snap := testSnapshot()
	opts := Options{Weights: DefaultWeights()}

	start, err := BuildDraft(snap, nil, opts)
	require.NoError(t, err)
	for i := range start {
		start[i].Status = models.StatusFinalApproved
	}

	result, report := Optimize(snap, start, Budget{Iterations: 1000}, opts)

	assert.Equal(t, WarnNoOptimizableAssignments, report.Warning)
	assert.True(t, report.Converged)
	assert.Zero(t, report.Iterations)
	assert.ElementsMatch(t, start, result)
}

func TestOptimizeDeterministicUnderSeed(t *testing.T) {
	snap := testSnapshot()
	opts := Options{Weights: DefaultWeights(), Seed: 12345}

	start, err := BuildDraft(snap, nil, opts)
	require.NoError(t, err)

	first, firstReport := Optimize(snap, start, Budget{Iterations: 3000}, opts)
	second, secondReport := Optimize(snap, start, Budget{Iterations: 3000}, opts)

	assert.Equal(t, first, second)
	assert.Equal(t, firstReport, secondReport)
}

func TestOptimizeEmptyScheduleIsNoop(t *testing.T) {
	snap := testSnapshot()

	result, report := Optimize(snap, nil, Budget{Iterations: 100}, Options{Weights: DefaultWeights()})

	assert.Empty(t, result)
	assert.Equal(t, WarnNoOptimizableAssignments, report.Warning)
	assert.True(t, report.Converged)
}
