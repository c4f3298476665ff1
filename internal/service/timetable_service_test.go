package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/models"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
)

type stubTimetable struct {
	rows           []models.TimetableRow
	lastDepartment string
	lastProgram    string
}

func (s *stubTimetable) ListRows(ctx context.Context, departmentID, programID string) ([]models.TimetableRow, error) {
	s.lastDepartment = departmentID
	s.lastProgram = programID
	return s.rows, nil
}

func fixtureRows() []models.TimetableRow {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return []models.TimetableRow{
		{
			ExamID: "e1", ExamName: "Algebra", RoomID: "r1", RoomName: "Amphi A",
			SupervisorID: "sup1", SupervisorName: "Dr. Ayad",
			StartTime: start, EndTime: start.Add(2 * time.Hour), DayIndex: 0,
			Status: models.StatusDraft, ProgramID: "p1", DepartmentID: "d1",
		},
	}
}

func newTimetableFixture(store *stubTimetable, enabled bool) *TimetableService {
	return NewTimetableService(store, nil, nil, TimetableConfig{
		ExportsEnabled: enabled,
		ExportTitle:    "Session Exams",
	})
}

func TestTimetableRowsPassesFilters(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	rows, err := svc.Rows(context.Background(), dto.TimetableQuery{DepartmentID: "d2", ProgramID: "p2"}, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "d2", store.lastDepartment)
	assert.Equal(t, "p2", store.lastProgram)
}

func TestTimetableRowsScopesHeadToOwnDepartment(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleHead, DepartmentID: "d1"}
	_, err := svc.Rows(context.Background(), dto.TimetableQuery{DepartmentID: "d2"}, claims)
	require.NoError(t, err)
	assert.Equal(t, "d1", store.lastDepartment, "a head cannot read outside their department")
}

func TestTimetableRowsAdminKeepsRequestedFilter(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	claims := &models.JWTClaims{UserID: "u9", Role: models.RoleAdmin}
	_, err := svc.Rows(context.Background(), dto.TimetableQuery{DepartmentID: "d2"}, claims)
	require.NoError(t, err)
	assert.Equal(t, "d2", store.lastDepartment)
}

func TestTimetableExportCSV(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	result, err := svc.Export(context.Background(), dto.TimetableQuery{}, "csv", nil)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	body := string(result.Payload)
	assert.Contains(t, body, "Algebra")
	assert.Contains(t, body, "Amphi A")
	assert.Contains(t, body, "Dr. Ayad")
}

func TestTimetableExportPDF(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	result, err := svc.Export(context.Background(), dto.TimetableQuery{}, "pdf", nil)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestTimetableExportDefaultsToCSV(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	result, err := svc.Export(context.Background(), dto.TimetableQuery{}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestTimetableExportRejectsUnknownFormat(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, true)

	_, err := svc.Export(context.Background(), dto.TimetableQuery{}, "xlsx", nil)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTimetableExportDisabled(t *testing.T) {
	store := &stubTimetable{rows: fixtureRows()}
	svc := newTimetableFixture(store, false)

	_, err := svc.Export(context.Background(), dto.TimetableQuery{}, "csv", nil)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}
