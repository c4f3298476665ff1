package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

// SnapshotRepository loads the read-only input batch a scheduling run works
// on: the full catalog of departments, programs, modules, exams, rooms,
// slots, supervisors, and enrollments.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load reads every catalog table in one pass and stamps the snapshot with
// the active scheduling cycle.
func (r *SnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	cycleID, err := r.activeCycle(ctx)
	if err != nil {
		return nil, err
	}
	snap.CycleID = cycleID

	if err := r.db.SelectContext(ctx, &snap.Departments, `SELECT id, name FROM departments ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Programs, `SELECT id, name, department_id FROM programs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Modules, `SELECT id, name, program_id, professor_id FROM modules ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Exams, `SELECT id, module_id, duration_minutes, expected_headcount FROM exams ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load exams: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Rooms, `SELECT id, name, capacity FROM rooms ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.TimeSlots, `SELECT id, start_time, end_time, day_index FROM time_slots ORDER BY start_time, id`); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Supervisors, `SELECT id, name, department_id, max_load FROM supervisors ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load supervisors: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Enrollments, `SELECT student_id, module_id FROM enrollments`); err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	return snap, nil
}

// activeCycle returns the open scheduling cycle, creating one when the
// table is empty so a fresh install can run immediately.
func (r *SnapshotRepository) activeCycle(ctx context.Context) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM scheduling_cycles WHERE active ORDER BY created_at DESC LIMIT 1`)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("load active cycle: %w", err)
	}

	id = uuid.NewString()
	const insert = `INSERT INTO scheduling_cycles (id, active, created_at) VALUES ($1, TRUE, NOW())`
	if _, err := r.db.ExecContext(ctx, insert, id); err != nil {
		return "", fmt.Errorf("create scheduling cycle: %w", err)
	}
	return id, nil
}
