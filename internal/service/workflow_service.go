package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/runner"
)

type workflowAssignmentStore interface {
	List(ctx context.Context) ([]models.Assignment, error)
	UpdateStatusByDepartment(ctx context.Context, departmentID string, from, to models.AssignmentStatus) (int64, error)
	PromoteAll(ctx context.Context, from, to models.AssignmentStatus) (int64, error)
	ResetStatus(ctx context.Context, departmentID string, force bool) (int64, error)
	CountByStatus(ctx context.Context) (models.StatusHistogram, error)
	PendingDepartments(ctx context.Context) ([]string, error)
}

// WorkflowService drives the approval ladder: DRAFT, DEPT_APPROVED,
// FINAL_APPROVED. Transitions take the mutation guard for their whole
// critical section, so a scheduling run can neither start mid-promotion
// nor be interrupted by one.
type WorkflowService struct {
	snapshots snapshotLoader
	store     workflowAssignmentStore
	guard     *runner.Guard
	validator *validator.Validate
	logger    *zap.Logger
	options   solver.Options
}

// NewWorkflowService wires the workflow dependencies.
func NewWorkflowService(
	snapshots snapshotLoader,
	store workflowAssignmentStore,
	guard *runner.Guard,
	validate *validator.Validate,
	logger *zap.Logger,
	options solver.Options,
) *WorkflowService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = runner.NewGuard(logger)
	}
	return &WorkflowService{
		snapshots: snapshots,
		store:     store,
		guard:     guard,
		validator: validate,
		logger:    logger,
		options:   options,
	}
}

// acquire takes the mutation guard for the named transition, so a solver
// run cannot replace rows while the transition is promoting them. The
// caller must Release on every path.
func (s *WorkflowService) acquire(operation string) error {
	if s.guard.TryAcquire(operation) {
		return nil
	}
	if op, busy := s.guard.Holder(); busy {
		return appErrors.Clone(appErrors.ErrRunInProgress, fmt.Sprintf("a %s operation is in progress", op))
	}
	return appErrors.ErrRunInProgress
}

// ValidateDepartment promotes a department's DRAFT assignments to
// DEPT_APPROVED. The promotion is refused while the department still has
// hard violations touching any of its exams.
func (s *WorkflowService) ValidateDepartment(ctx context.Context, departmentID string) (*dto.WorkflowResponse, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department id is required")
	}
	if err := s.acquire("workflow:validate-dept"); err != nil {
		return nil, err
	}
	defer s.guard.Release()

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}
	if _, ok := s.findDepartment(snap, departmentID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}

	assignments, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	if blocking := s.departmentViolations(snap, assignments, departmentID); len(blocking) > 0 {
		s.logger.Info("department validation refused",
			zap.String("department_id", departmentID),
			zap.Int("hard_violations", len(blocking)))
		return nil, appErrors.Clone(appErrors.ErrUnresolvedConflicts,
			fmt.Sprintf("department has %d unresolved hard conflicts: %s", len(blocking), summarise(blocking)))
	}

	promoted, err := s.store.UpdateStatusByDepartment(ctx, departmentID, models.StatusDraft, models.StatusDeptApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote assignments")
	}

	hist, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count statuses")
	}

	s.logger.Info("department validated",
		zap.String("department_id", departmentID),
		zap.Int64("promoted", promoted))

	return &dto.WorkflowResponse{
		Message:          fmt.Sprintf("%d assignments approved for department %s", promoted, departmentID),
		ValidationStatus: hist,
	}, nil
}

// ApproveFinal promotes every DEPT_APPROVED assignment to FINAL_APPROVED.
// It is refused while any department still has DRAFT rows.
func (s *WorkflowService) ApproveFinal(ctx context.Context) (*dto.WorkflowResponse, error) {
	if err := s.acquire("workflow:approve-final"); err != nil {
		return nil, err
	}
	defer s.guard.Release()

	pending, err := s.store.PendingDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending departments")
	}
	if len(pending) > 0 {
		return nil, appErrors.Clone(appErrors.ErrPendingApproval,
			fmt.Sprintf("departments pending validation: %s", strings.Join(pending, ", ")))
	}

	promoted, err := s.store.PromoteAll(ctx, models.StatusDeptApproved, models.StatusFinalApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize assignments")
	}
	if promoted == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no department-approved assignments to finalize")
	}

	hist, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count statuses")
	}

	s.logger.Info("schedule finalized", zap.Int64("promoted", promoted))

	return &dto.WorkflowResponse{
		Message:          fmt.Sprintf("%d assignments finalized", promoted),
		ValidationStatus: hist,
	}, nil
}

// Reset demotes approved assignments back to DRAFT so the solver may move
// them again. An empty department resets the whole institution. Finalized
// rows require force.
func (s *WorkflowService) Reset(ctx context.Context, req dto.ResetRequest) (*dto.WorkflowResponse, error) {
	if err := s.acquire("workflow:reset"); err != nil {
		return nil, err
	}
	defer s.guard.Release()

	demoted, err := s.store.ResetStatus(ctx, req.DepartmentID, req.Force)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset assignments")
	}
	if demoted == 0 && !req.Force {
		// Either nothing was approved, or everything is FINAL_APPROVED and
		// needs force.
		hist, histErr := s.store.CountByStatus(ctx)
		if histErr == nil && hist.FinalApproved > 0 {
			return nil, appErrors.Clone(appErrors.ErrFinalized, "assignments are finalized, reset requires force")
		}
	}

	hist, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count statuses")
	}

	s.logger.Info("department reset",
		zap.String("department_id", req.DepartmentID),
		zap.Bool("force", req.Force),
		zap.Int64("demoted", demoted))

	return &dto.WorkflowResponse{
		Message:          fmt.Sprintf("%d assignments reset to draft", demoted),
		ValidationStatus: hist,
	}, nil
}

// StatusSummary reports the approval histogram and the departments still
// blocking final approval.
func (s *WorkflowService) StatusSummary(ctx context.Context) (*dto.StatusSummary, error) {
	hist, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count statuses")
	}

	pending, err := s.store.PendingDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending departments")
	}

	return &dto.StatusSummary{
		ValidationStatus:    hist,
		PendingDepartments:  pending,
		ReadyForFinal:       len(pending) == 0 && hist.DeptApproved > 0,
		ScheduleIsFinalized: hist.Total() > 0 && hist.FinalApproved == hist.Total(),
	}, nil
}

// departmentViolations keeps hard violations that touch any exam of the
// given department, on either side of the conflict.
func (s *WorkflowService) departmentViolations(snap *models.Snapshot, assignments []models.Assignment, departmentID string) []solver.Violation {
	idx := snap.Index()
	report := solver.Evaluate(idx, assignments, s.options)

	var out []solver.Violation
	for _, v := range report.HardViolations {
		if s.belongs(idx, v.ExamID, departmentID) || s.belongs(idx, v.ConflictingExamID, departmentID) {
			out = append(out, v)
		}
	}
	return out
}

func (s *WorkflowService) belongs(idx *models.SnapshotIndex, examID, departmentID string) bool {
	if examID == "" {
		return false
	}
	dept, ok := idx.DepartmentOfExam(examID)
	return ok && dept.ID == departmentID
}

func (s *WorkflowService) findDepartment(snap *models.Snapshot, id string) (models.Department, bool) {
	for _, d := range snap.Departments {
		if d.ID == id {
			return d, true
		}
	}
	return models.Department{}, false
}

func summarise(violations []solver.Violation) string {
	limit := len(violations)
	if limit > 3 {
		limit = 3
	}
	parts := make([]string, 0, limit)
	for _, v := range violations[:limit] {
		parts = append(parts, fmt.Sprintf("%s on exam %s", v.Kind, v.ExamID))
	}
	if len(violations) > limit {
		parts = append(parts, "...")
	}
	return strings.Join(parts, "; ")
}
