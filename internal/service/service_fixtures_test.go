package service

import (
	"context"
	"time"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

func fixtureSlot(id string, day, hour int) models.TimeSlot {
	start := time.Date(2026, 6, 1+day, hour, 0, 0, 0, time.UTC)
	return models.TimeSlot{ID: id, StartTime: start, EndTime: start.Add(2 * time.Hour), DayIndex: day}
}

func fixtureSnapshot() *models.Snapshot {
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
		},
		Exams: []models.Exam{
			{ID: "e1", ModuleID: "m1", DurationMinutes: 120, ExpectedHeadcount: 25},
			{ID: "e2", ModuleID: "m2", DurationMinutes: 120, ExpectedHeadcount: 20},
			{ID: "e3", ModuleID: "m3", DurationMinutes: 120, ExpectedHeadcount: 60},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "Amphi A", Capacity: 30},
			{ID: "r2", Name: "Amphi B", Capacity: 100},
		},
		TimeSlots: []models.TimeSlot{
			fixtureSlot("s1", 0, 8),
			fixtureSlot("s2", 0, 14),
			fixtureSlot("s3", 1, 8),
		},
		Supervisors: []models.Supervisor{
			{ID: "sup1", Name: "Dr. Ayad", DepartmentID: "d1"},
			{ID: "sup2", Name: "Dr. Bensaid", DepartmentID: "d2"},
		},
		Enrollments: []models.Enrollment{
			{StudentID: "st1", ModuleID: "m1"},
			{StudentID: "st1", ModuleID: "m2"},
			{StudentID: "st2", ModuleID: "m3"},
		},
	}
}

func fixtureAssignments() []models.Assignment {
	return []models.Assignment{
		{ExamID: "e1", RoomID: "r1", TimeSlotID: "s1", SupervisorID: "sup1", Status: models.StatusDraft},
		{ExamID: "e2", RoomID: "r1", TimeSlotID: "s2", SupervisorID: "sup1", Status: models.StatusDraft},
		{ExamID: "e3", RoomID: "r2", TimeSlotID: "s3", SupervisorID: "sup2", Status: models.StatusDraft},
	}
}

type stubSnapshots struct {
	snap *models.Snapshot
	err  error
}

func (s *stubSnapshots) Load(ctx context.Context) (*models.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

type stubAssignmentStore struct {
	assignments []models.Assignment
	listErr     error

	replacedRunID string
	replaced      []models.Assignment
	replaceErr    error

	statusUpdates []string
	promoted      int64
	resets        []string
	resetForce    bool
	resetCount    int64
	pending       []string
	histogram     models.StatusHistogram
}

func (s *stubAssignmentStore) List(ctx context.Context) ([]models.Assignment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.assignments, nil
}

func (s *stubAssignmentStore) ReplaceForRun(ctx context.Context, runID string, assignments []models.Assignment) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replacedRunID = runID
	s.replaced = assignments
	return nil
}

func (s *stubAssignmentStore) UpdateStatusByDepartment(ctx context.Context, departmentID string, from, to models.AssignmentStatus) (int64, error) {
	s.statusUpdates = append(s.statusUpdates, departmentID+":"+string(from)+">"+string(to))
	var n int64
	for _, a := range s.assignments {
		if a.Status == from {
			n++
		}
	}
	return n, nil
}

func (s *stubAssignmentStore) PromoteAll(ctx context.Context, from, to models.AssignmentStatus) (int64, error) {
	return s.promoted, nil
}

func (s *stubAssignmentStore) ResetStatus(ctx context.Context, departmentID string, force bool) (int64, error) {
	s.resets = append(s.resets, departmentID)
	s.resetForce = force
	return s.resetCount, nil
}

func (s *stubAssignmentStore) CountByStatus(ctx context.Context) (models.StatusHistogram, error) {
	return s.histogram, nil
}

func (s *stubAssignmentStore) PendingDepartments(ctx context.Context) ([]string, error) {
	return s.pending, nil
}

type stubCache struct {
	deleted []string
}

func (c *stubCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}
