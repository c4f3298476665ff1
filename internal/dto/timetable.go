package dto

// TimetableQuery filters the flattened assignment listing.
type TimetableQuery struct {
	DepartmentID string `form:"department_id" json:"department_id"`
	ProgramID    string `form:"program_id" json:"program_id"`
}

// ExportQuery selects the timetable export rendering on top of the listing
// filters.
type ExportQuery struct {
	TimetableQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
