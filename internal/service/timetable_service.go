package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/models"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/export"
)

type timetableReader interface {
	ListRows(ctx context.Context, departmentID, programID string) ([]models.TimetableRow, error)
}

// TimetableConfig tunes the export boundary.
type TimetableConfig struct {
	ExportsEnabled bool
	ExportTitle    string
}

// ExportResult carries rendered export bytes with their HTTP metadata.
type ExportResult struct {
	ContentType string
	Filename    string
	Payload     []byte
}

// TimetableService serves the flattened timetable and its CSV and PDF
// exports. Reads are scoped: a department-bound caller only sees their
// department regardless of the requested filter.
type TimetableService struct {
	store     timetableReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	config    TimetableConfig
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(store timetableReader, validate *validator.Validate, logger *zap.Logger, cfg TimetableConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExportTitle == "" {
		cfg.ExportTitle = "Exam Timetable"
	}
	return &TimetableService{
		store:     store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// Rows lists the joined timetable. claims scope the read: HEAD and
// PROFESSOR accounts are pinned to their own department.
func (s *TimetableService) Rows(ctx context.Context, query dto.TimetableQuery, claims *models.JWTClaims) ([]models.TimetableRow, error) {
	departmentID, programID := s.applyScope(query, claims)

	rows, err := s.store.ListRows(ctx, departmentID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if rows == nil {
		rows = []models.TimetableRow{}
	}
	return rows, nil
}

// Export renders the scoped timetable as CSV or PDF.
func (s *TimetableService) Export(ctx context.Context, query dto.TimetableQuery, format string, claims *models.JWTClaims) (*ExportResult, error) {
	if !s.config.ExportsEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "timetable exports are disabled")
	}
	if format == "" {
		format = "csv"
	}
	if err := s.validator.Var(format, "oneof=csv pdf"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.Rows(ctx, query, claims)
	if err != nil {
		return nil, err
	}

	data := buildDataset(rows)
	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "pdf":
		payload, err := s.pdf.Render(data, s.config.ExportTitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("timetable-%s.pdf", stamp),
			Payload:     payload,
		}, nil
	default:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("timetable-%s.csv", stamp),
			Payload:     payload,
		}, nil
	}
}

func (s *TimetableService) applyScope(query dto.TimetableQuery, claims *models.JWTClaims) (departmentID, programID string) {
	departmentID = query.DepartmentID
	programID = query.ProgramID
	if claims == nil {
		return departmentID, programID
	}
	switch claims.Role {
	case models.RoleHead, models.RoleProfessor:
		if claims.DepartmentID != "" {
			departmentID = claims.DepartmentID
		}
	}
	return departmentID, programID
}

func buildDataset(rows []models.TimetableRow) export.Dataset {
	headers := []string{"Exam", "Module", "Day", "Start", "End", "Room", "Supervisor", "Status"}
	out := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, map[string]string{
			"Exam":       row.ExamID,
			"Module":     row.ExamName,
			"Day":        fmt.Sprintf("%d", row.DayIndex),
			"Start":      row.StartTime.Format("2006-01-02 15:04"),
			"End":        row.EndTime.Format("15:04"),
			"Room":       row.RoomName,
			"Supervisor": row.SupervisorName,
			"Status":     string(row.Status),
		})
	}
	return out
}
