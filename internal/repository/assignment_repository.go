package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

// AssignmentRepository persists exam placements and their workflow status.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns every stored assignment ordered by exam id.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	const query = `
		SELECT exam_id, room_id, time_slot_id, supervisor_id, status, run_id, updated_at
		FROM exam_assignments
		ORDER BY exam_id`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// ReplaceForRun atomically swaps the working timetable for the given run:
// every row that is not FINAL_APPROVED is deleted and the new placements
// are inserted with the run id. Finalized rows are never touched.
func (r *AssignmentRepository) ReplaceForRun(ctx context.Context, runID string, assignments []models.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_assignments WHERE status <> $1`, models.StatusFinalApproved); err != nil {
		return fmt.Errorf("clear working assignments: %w", err)
	}

	const insert = `
		INSERT INTO exam_assignments (exam_id, room_id, time_slot_id, supervisor_id, status, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (exam_id) DO NOTHING`
	for _, a := range assignments {
		if a.Status == models.StatusFinalApproved {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, a.ExamID, a.RoomID, a.TimeSlotID, a.SupervisorID, a.Status, runID); err != nil {
			return fmt.Errorf("insert assignment %s: %w", a.ExamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

// UpdateStatusByDepartment moves every assignment belonging to a department
// from one status to another and reports how many rows changed. Department
// membership follows the exam's module and program.
func (r *AssignmentRepository) UpdateStatusByDepartment(ctx context.Context, departmentID string, from, to models.AssignmentStatus) (int64, error) {
	const query = `
		UPDATE exam_assignments ea
		SET status = $1, updated_at = NOW()
		FROM exams e
		JOIN modules m ON m.id = e.module_id
		JOIN programs p ON p.id = m.program_id
		WHERE ea.exam_id = e.id
		  AND p.department_id = $2
		  AND ea.status = $3`
	res, err := r.db.ExecContext(ctx, query, to, departmentID, from)
	if err != nil {
		return 0, fmt.Errorf("update status by department: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// PromoteAll moves every assignment in the given status to the target
// status. Used by the final approval step once all departments signed off.
func (r *AssignmentRepository) PromoteAll(ctx context.Context, from, to models.AssignmentStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exam_assignments SET status = $1, updated_at = NOW() WHERE status = $2`, to, from)
	if err != nil {
		return 0, fmt.Errorf("promote assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ResetStatus demotes assignments of a department back to DRAFT. Finalized
// rows are only touched when force is set.
func (r *AssignmentRepository) ResetStatus(ctx context.Context, departmentID string, force bool) (int64, error) {
	statuses := []interface{}{models.StatusDeptApproved}
	if force {
		statuses = append(statuses, models.StatusFinalApproved)
	}

	var query string
	var args []interface{}
	if departmentID == "" {
		// Institution-wide reset.
		placeholders := "$2"
		if force {
			placeholders = "$2, $3"
		}
		query = fmt.Sprintf(`
		UPDATE exam_assignments
		SET status = $1, updated_at = NOW()
		WHERE status IN (%s)`, placeholders)
		args = append([]interface{}{models.StatusDraft}, statuses...)
	} else {
		placeholders := "$3"
		if force {
			placeholders = "$3, $4"
		}
		query = fmt.Sprintf(`
		UPDATE exam_assignments ea
		SET status = $1, updated_at = NOW()
		FROM exams e
		JOIN modules m ON m.id = e.module_id
		JOIN programs p ON p.id = m.program_id
		WHERE ea.exam_id = e.id
		  AND p.department_id = $2
		  AND ea.status IN (%s)`, placeholders)
		args = append([]interface{}{models.StatusDraft, departmentID}, statuses...)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CountByStatus returns the status histogram of the stored timetable.
func (r *AssignmentRepository) CountByStatus(ctx context.Context) (models.StatusHistogram, error) {
	rows := []struct {
		Status models.AssignmentStatus `db:"status"`
		Count  int                     `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM exam_assignments GROUP BY status`); err != nil {
		return models.StatusHistogram{}, fmt.Errorf("count by status: %w", err)
	}

	var hist models.StatusHistogram
	for _, row := range rows {
		switch row.Status {
		case models.StatusDraft:
			hist.Draft = row.Count
		case models.StatusDeptApproved:
			hist.DeptApproved = row.Count
		case models.StatusFinalApproved:
			hist.FinalApproved = row.Count
		}
	}
	return hist, nil
}

// PendingDepartments lists departments that still have assignments below
// DEPT_APPROVED, blocking final approval.
func (r *AssignmentRepository) PendingDepartments(ctx context.Context) ([]string, error) {
	var out []string
	const query = `
		SELECT DISTINCT d.name
		FROM exam_assignments ea
		JOIN exams e ON e.id = ea.exam_id
		JOIN modules m ON m.id = e.module_id
		JOIN programs p ON p.id = m.program_id
		JOIN departments d ON d.id = p.department_id
		WHERE ea.status = $1
		ORDER BY d.name`
	if err := r.db.SelectContext(ctx, &out, query, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("pending departments: %w", err)
	}
	return out, nil
}

// ListRows returns the joined timetable view, optionally filtered by
// department and program.
func (r *AssignmentRepository) ListRows(ctx context.Context, departmentID, programID string) ([]models.TimetableRow, error) {
	query := `
		SELECT ea.exam_id, m.name AS exam_name,
		       ea.room_id, r.name AS room_name,
		       ea.supervisor_id, s.name AS supervisor_name,
		       ts.start_time, ts.end_time, ts.day_index,
		       ea.status, p.id AS program_id, p.department_id
		FROM exam_assignments ea
		JOIN exams e ON e.id = ea.exam_id
		JOIN modules m ON m.id = e.module_id
		JOIN programs p ON p.id = m.program_id
		JOIN rooms r ON r.id = ea.room_id
		JOIN time_slots ts ON ts.id = ea.time_slot_id
		JOIN supervisors s ON s.id = ea.supervisor_id`

	var (
		conditions []string
		args       []interface{}
	)
	if departmentID != "" {
		args = append(args, departmentID)
		conditions = append(conditions, fmt.Sprintf("p.department_id = $%d", len(args)))
	}
	if programID != "" {
		args = append(args, programID)
		conditions = append(conditions, fmt.Sprintf("p.id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ts.start_time, r.name, ea.exam_id"

	var out []models.TimetableRow
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable rows: %w", err)
	}
	return out, nil
}
