package models

// Snapshot is the read-only input batch a scheduling run works on. The CRUD
// collaborators own the records; the core receives them frozen at run start,
// keyed by a scheduling cycle identifier.
type Snapshot struct {
	CycleID     string       `json:"cycle_id"`
	Departments []Department `json:"departments"`
	Programs    []Program    `json:"programs"`
	Modules     []Module     `json:"modules"`
	Exams       []Exam       `json:"exams"`
	Rooms       []Room       `json:"rooms"`
	TimeSlots   []TimeSlot   `json:"time_slots"`
	Supervisors []Supervisor `json:"supervisors"`
	Enrollments []Enrollment `json:"enrollments"`
}

// SnapshotIndex provides id lookups and exam ancestry resolution over a
// snapshot. Build it once per run; the underlying snapshot must not change.
type SnapshotIndex struct {
	Departments map[string]Department
	Programs    map[string]Program
	Modules     map[string]Module
	Exams       map[string]Exam
	Rooms       map[string]Room
	TimeSlots   map[string]TimeSlot
	Supervisors map[string]Supervisor

	// StudentsByExam maps exam id to the set of enrolled student ids.
	StudentsByExam map[string]map[string]struct{}
}

// Index builds lookup maps over the snapshot.
func (s *Snapshot) Index() *SnapshotIndex {
	idx := &SnapshotIndex{
		Departments:    make(map[string]Department, len(s.Departments)),
		Programs:       make(map[string]Program, len(s.Programs)),
		Modules:        make(map[string]Module, len(s.Modules)),
		Exams:          make(map[string]Exam, len(s.Exams)),
		Rooms:          make(map[string]Room, len(s.Rooms)),
		TimeSlots:      make(map[string]TimeSlot, len(s.TimeSlots)),
		Supervisors:    make(map[string]Supervisor, len(s.Supervisors)),
		StudentsByExam: make(map[string]map[string]struct{}, len(s.Exams)),
	}
	for _, d := range s.Departments {
		idx.Departments[d.ID] = d
	}
	for _, p := range s.Programs {
		idx.Programs[p.ID] = p
	}
	for _, m := range s.Modules {
		idx.Modules[m.ID] = m
	}
	for _, e := range s.Exams {
		idx.Exams[e.ID] = e
	}
	for _, r := range s.Rooms {
		idx.Rooms[r.ID] = r
	}
	for _, t := range s.TimeSlots {
		idx.TimeSlots[t.ID] = t
	}
	for _, sv := range s.Supervisors {
		idx.Supervisors[sv.ID] = sv
	}

	examsByModule := make(map[string][]string, len(s.Exams))
	for _, e := range s.Exams {
		examsByModule[e.ModuleID] = append(examsByModule[e.ModuleID], e.ID)
	}
	for _, en := range s.Enrollments {
		for _, examID := range examsByModule[en.ModuleID] {
			set := idx.StudentsByExam[examID]
			if set == nil {
				set = make(map[string]struct{})
				idx.StudentsByExam[examID] = set
			}
			set[en.StudentID] = struct{}{}
		}
	}
	return idx
}

// ProgramOfExam resolves the program an exam belongs to via its module.
func (idx *SnapshotIndex) ProgramOfExam(examID string) (Program, bool) {
	exam, ok := idx.Exams[examID]
	if !ok {
		return Program{}, false
	}
	module, ok := idx.Modules[exam.ModuleID]
	if !ok {
		return Program{}, false
	}
	program, ok := idx.Programs[module.ProgramID]
	return program, ok
}

// DepartmentOfExam resolves the owning department of an exam.
func (idx *SnapshotIndex) DepartmentOfExam(examID string) (Department, bool) {
	program, ok := idx.ProgramOfExam(examID)
	if !ok {
		return Department{}, false
	}
	dept, ok := idx.Departments[program.DepartmentID]
	return dept, ok
}

// DistinctStudents counts unique students across all enrollments.
func (s *Snapshot) DistinctStudents() int {
	seen := make(map[string]struct{}, len(s.Enrollments))
	for _, en := range s.Enrollments {
		seen[en.StudentID] = struct{}{}
	}
	return len(seen)
}
