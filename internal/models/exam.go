package models

// Exam is one examination of a module within a scheduling cycle.
// Duration is bounded to 30-240 minutes by the intake validation.
type Exam struct {
	ID                string `db:"id" json:"id"`
	ModuleID          string `db:"module_id" json:"module_id"`
	DurationMinutes   int    `db:"duration_minutes" json:"duration_minutes"`
	ExpectedHeadcount int    `db:"expected_headcount" json:"expected_headcount"`
}
