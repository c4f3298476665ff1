package models

import "time"

// Department is the root of the approval hierarchy.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Program belongs to exactly one department.
type Program struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DepartmentID string `db:"department_id" json:"department_id"`
}

// Module is a taught unit inside a program. ProfessorID is optional; not
// every module has an owning professor in the source data.
type Module struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	ProgramID   string  `db:"program_id" json:"program_id"`
	ProfessorID *string `db:"professor_id" json:"professor_id,omitempty"`
}

// Room is a bookable exam venue.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

// TimeSlot is one entry of the institution-wide candidate calendar.
// Slots are discrete and non-overlapping.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	DayIndex  int       `db:"day_index" json:"day_index"`
}

// Supervisor is a staff member eligible to proctor exams.
type Supervisor struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DepartmentID string `db:"department_id" json:"department_id"`
	MaxLoad      int    `db:"max_load" json:"max_load"`
}

// Enrollment registers a student to a module. Shared students are what make
// two exams conflict.
type Enrollment struct {
	StudentID string `db:"student_id" json:"student_id"`
	ModuleID  string `db:"module_id" json:"module_id"`
}
