package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
)

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type assignmentLister interface {
	List(ctx context.Context) ([]models.Assignment, error)
}

type qualityProvider interface {
	LastQuality() solver.QualityReport
}

// StatsConfig tunes the dashboard aggregations.
type StatsConfig struct {
	CacheTTL time.Duration
	TopLoad  int
}

// StatsService computes dashboard KPIs and conflict audits over the
// committed timetable, with a cache-aside layer in front of the pure
// aggregation.
type StatsService struct {
	snapshots snapshotLoader
	store     assignmentLister
	cache     statsCache
	quality   qualityProvider
	logger    *zap.Logger
	options   solver.Options
	config    StatsConfig
}

// NewStatsService wires the statistics dependencies.
func NewStatsService(
	snapshots snapshotLoader,
	store assignmentLister,
	cache statsCache,
	quality qualityProvider,
	logger *zap.Logger,
	options solver.Options,
	cfg StatsConfig,
) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopLoad <= 0 {
		cfg.TopLoad = 10
	}
	return &StatsService{
		snapshots: snapshots,
		store:     store,
		cache:     cache,
		quality:   quality,
		logger:    logger,
		options:   options,
		config:    cfg,
	}
}

// DashboardKPIs returns the KPI report, scoped when the caller's role only
// covers a department or program.
func (s *StatsService) DashboardKPIs(ctx context.Context, scope solver.Scope) (*solver.KpiReport, error) {
	key := fmt.Sprintf("stats:kpi:%s:%s", scope.DepartmentID, scope.ProgramID)
	if s.cache != nil {
		var cached solver.KpiReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) && !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("kpi cache read failed", zap.Error(err))
		}
	}

	snap, assignments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var lastGain float64
	if s.quality != nil {
		lastGain = s.quality.LastQuality().GainPct
	}

	report := solver.ComputeKPIs(snap, assignments, s.options, scope, s.config.TopLoad, lastGain)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.config.CacheTTL); err != nil {
			s.logger.Warn("kpi cache write failed", zap.Error(err))
		}
	}
	return &report, nil
}

// DetailedConflicts returns every violation of the committed timetable as
// an audit list, hard and soft.
func (s *StatsService) DetailedConflicts(ctx context.Context) ([]solver.ConflictRow, error) {
	snap, assignments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rows := solver.DetailedConflicts(snap, assignments, s.options)
	if rows == nil {
		rows = []solver.ConflictRow{}
	}
	return rows, nil
}

func (s *StatsService) load(ctx context.Context) (*models.Snapshot, []models.Assignment, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduling snapshot")
	}
	assignments, err := s.store.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	return snap, assignments, nil
}
