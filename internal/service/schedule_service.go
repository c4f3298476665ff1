package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/runner"
)

type snapshotLoader interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

type assignmentStore interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ReplaceForRun(ctx context.Context, runID string, assignments []models.Assignment) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type runObserver interface {
	ObserveRun(kind, outcome string, duration time.Duration, hardViolations int, softCost float64)
}

// ScheduleConfig carries the solver tuning loaded from the environment.
type ScheduleConfig struct {
	Options solver.Options
	Budget  solver.Budget
}

// ScheduleService runs the draft builder and the annealing optimizer and
// commits their output. A run guard serialises runs: a second caller gets
// RUN_IN_PROGRESS instead of queueing.
type ScheduleService struct {
	snapshots snapshotLoader
	store     assignmentStore
	cache     cacheInvalidator
	guard     *runner.Guard
	metrics   runObserver
	validator *validator.Validate
	logger    *zap.Logger
	config    ScheduleConfig

	mu          sync.RWMutex
	lastQuality solver.QualityReport
}

// NewScheduleService wires the scheduling dependencies.
func NewScheduleService(
	snapshots snapshotLoader,
	store assignmentStore,
	cache cacheInvalidator,
	guard *runner.Guard,
	metrics runObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = runner.NewGuard(logger)
	}
	return &ScheduleService{
		snapshots: snapshots,
		store:     store,
		cache:     cache,
		guard:     guard,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// Draft builds a complete greedy timetable and commits it, replacing every
// assignment that is not FINAL_APPROVED.
func (s *ScheduleService) Draft(ctx context.Context) (*dto.RunStats, error) {
	if !s.guard.TryAcquire("draft") {
		return nil, appErrors.ErrRunInProgress
	}
	defer s.guard.Release()

	started := time.Now()
	runID := uuid.NewString()

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current assignments")
	}

	assignments, err := solver.BuildDraft(snap, existing, s.config.Options)
	if err != nil {
		s.observe("draft", "failure", time.Since(started), 0, 0)
		return nil, err
	}

	report := solver.Evaluate(snap.Index(), assignments, s.config.Options)

	if err := s.commit(ctx, runID, assignments); err != nil {
		s.observe("draft", "failure", time.Since(started), 0, 0)
		return nil, err
	}
	s.observe("draft", "success", time.Since(started), len(report.HardViolations), report.SoftCost)

	s.setQuality(solver.QualityReport{
		FinalCost:           report.SoftCost,
		HardViolationsAfter: len(report.HardViolations),
	})

	s.logger.Info("draft committed",
		zap.String("run_id", runID),
		zap.Int("exams", len(assignments)),
		zap.Int("hard_violations", len(report.HardViolations)),
		zap.Duration("elapsed", time.Since(started)))

	return &dto.RunStats{
		RunID:                runID,
		TotalExams:           len(assignments),
		ExecutionTimeMs:      time.Since(started).Milliseconds(),
		HardViolationsBefore: len(report.HardViolations),
		HardViolationsAfter:  len(report.HardViolations),
	}, nil
}

// Optimize improves the working timetable with simulated annealing. The
// request chooses the starting point: the committed schedule or a fresh
// draft.
func (s *ScheduleService) Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.RunStats, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}

	if !s.guard.TryAcquire("optimize") {
		return nil, appErrors.ErrRunInProgress
	}
	defer s.guard.Release()

	started := time.Now()
	runID := uuid.NewString()

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}

	current, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current assignments")
	}

	start := current
	if req.From == dto.StartDraft || len(current) == 0 {
		start, err = solver.BuildDraft(snap, current, s.config.Options)
		if err != nil {
			return nil, err
		}
	}

	budget := s.config.Budget
	if req.IterationBudget > 0 {
		budget.Iterations = req.IterationBudget
	}
	if req.TimeBudgetMs > 0 {
		budget.MaxDuration = time.Duration(req.TimeBudgetMs) * time.Millisecond
	}

	optimized, quality := solver.Optimize(snap, start, budget, s.config.Options)

	if err := s.commit(ctx, runID, optimized); err != nil {
		s.observe("optimize", "failure", time.Since(started), 0, 0)
		return nil, err
	}
	s.setQuality(quality)
	s.observe("optimize", "success", time.Since(started), quality.HardViolationsAfter, quality.FinalCost)

	s.logger.Info("optimization committed",
		zap.String("run_id", runID),
		zap.Int("exams", len(optimized)),
		zap.Float64("gain_pct", quality.GainPct),
		zap.Int("hard_before", quality.HardViolationsBefore),
		zap.Int("hard_after", quality.HardViolationsAfter),
		zap.Bool("converged", quality.Converged),
		zap.Duration("elapsed", time.Since(started)))

	return &dto.RunStats{
		RunID:                runID,
		TotalExams:           len(optimized),
		ExecutionTimeMs:      time.Since(started).Milliseconds(),
		GainPct:              quality.GainPct,
		HardViolationsBefore: quality.HardViolationsBefore,
		HardViolationsAfter:  quality.HardViolationsAfter,
		Converged:            quality.Converged,
		Warning:              quality.Warning,
	}, nil
}

// LastQuality returns the quality report of the most recent committed run.
func (s *ScheduleService) LastQuality() solver.QualityReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuality
}

func (s *ScheduleService) observe(kind, outcome string, d time.Duration, hard int, soft float64) {
	if s.metrics != nil {
		s.metrics.ObserveRun(kind, outcome, d, hard, soft)
	}
}

func (s *ScheduleService) setQuality(q solver.QualityReport) {
	s.mu.Lock()
	s.lastQuality = q
	s.mu.Unlock()
}

func (s *ScheduleService) commit(ctx context.Context, runID string, assignments []models.Assignment) error {
	if err := s.store.ReplaceForRun(ctx, runID, assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignments")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "stats:*"); err != nil {
			s.logger.Warn("stats cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}
