package solver

import (
	"time"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

func slotAt(id string, day, hour int) models.TimeSlot {
	start := time.Date(2026, 6, 1+day, hour, 0, 0, 0, time.UTC)
	return models.TimeSlot{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		DayIndex:  day,
	}
}

// testSnapshot builds a small two-department campus: four exams, two rooms,
// four slots over two days, two supervisors, and one student shared between
// the first two exams.
func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		CycleID: "cycle-1",
		Departments: []models.Department{
			{ID: "d1", Name: "Mathematics"},
			{ID: "d2", Name: "Physics"},
		},
		Programs: []models.Program{
			{ID: "p1", Name: "Applied Math", DepartmentID: "d1"},
			{ID: "p2", Name: "Quantum Physics", DepartmentID: "d2"},
		},
		Modules: []models.Module{
			{ID: "m1", Name: "Algebra", ProgramID: "p1"},
			{ID: "m2", Name: "Analysis", ProgramID: "p1"},
			{ID: "m3", Name: "Mechanics", ProgramID: "p2"},
			{ID: "m4", Name: "Optics", ProgramID: "p2"},
		},
		Exams: []models.Exam{
			{ID: "e1", ModuleID: "m1", DurationMinutes: 120, ExpectedHeadcount: 25},
			{ID: "e2", ModuleID: "m2", DurationMinutes: 120, ExpectedHeadcount: 20},
			{ID: "e3", ModuleID: "m3", DurationMinutes: 120, ExpectedHeadcount: 60},
			{ID: "e4", ModuleID: "m4", DurationMinutes: 120, ExpectedHeadcount: 15},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "Amphi A", Capacity: 30},
			{ID: "r2", Name: "Amphi B", Capacity: 100},
		},
		TimeSlots: []models.TimeSlot{
			slotAt("s1", 0, 8),
			slotAt("s2", 0, 14),
			slotAt("s3", 1, 8),
			slotAt("s4", 1, 14),
		},
		Supervisors: []models.Supervisor{
			{ID: "sup1", Name: "Dr. Ayad", DepartmentID: "d1"},
			{ID: "sup2", Name: "Dr. Bensaid", DepartmentID: "d2"},
		},
		Enrollments: []models.Enrollment{
			{StudentID: "st1", ModuleID: "m1"},
			{StudentID: "st1", ModuleID: "m2"},
			{StudentID: "st2", ModuleID: "m1"},
			{StudentID: "st3", ModuleID: "m3"},
			{StudentID: "st4", ModuleID: "m4"},
		},
	}
}

func countKind(violations []Violation, kind string) int {
	n := 0
	for _, v := range violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}
