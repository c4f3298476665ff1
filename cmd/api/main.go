package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/univ-fst/exam-planner-api/api/swagger"
	"github.com/univ-fst/exam-planner-api/internal/handler"
	"github.com/univ-fst/exam-planner-api/internal/middleware"
	"github.com/univ-fst/exam-planner-api/internal/repository"
	"github.com/univ-fst/exam-planner-api/internal/service"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	"github.com/univ-fst/exam-planner-api/pkg/cache"
	"github.com/univ-fst/exam-planner-api/pkg/config"
	"github.com/univ-fst/exam-planner-api/pkg/database"
	"github.com/univ-fst/exam-planner-api/pkg/logger"
	corsmiddleware "github.com/univ-fst/exam-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/univ-fst/exam-planner-api/pkg/middleware/requestid"
	"github.com/univ-fst/exam-planner-api/pkg/runner"
)

// @title Exam Planner API
// @version 1.0.0
// @description Exam timetable generation, optimization, and approval workflow
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	snapshots := repository.NewSnapshotRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	users := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	solverOptions := solver.Options{
		Weights: solver.Weights{
			LoadVariance:    cfg.Solver.LoadVarianceWeight,
			RoomWaste:       cfg.Solver.RoomWasteWeight,
			Spread:          cfg.Solver.SpreadWeight,
			CapacityDeficit: cfg.Solver.CapacityDeficitWeight,
		},
		CapacityHard:       cfg.Solver.CapacityHard,
		SupervisorDailyCap: cfg.Solver.SupervisorDailyCap,
		Seed:               cfg.Solver.Seed,
	}
	solverBudget := solver.Budget{
		Iterations:       cfg.Solver.IterationBudget,
		MaxDuration:      cfg.Solver.TimeBudget,
		StallWindow:      cfg.Solver.StallWindow,
		StartTemperature: cfg.Solver.StartTemperature,
		CoolingFactor:    cfg.Solver.CoolingFactor,
	}

	guard := runner.NewGuard(logr)
	metricsSvc := service.NewMetricsService()

	scheduleSvc := service.NewScheduleService(snapshots, assignments, cacheRepo, guard, metricsSvc, validate, logr, service.ScheduleConfig{
		Options: solverOptions,
		Budget:  solverBudget,
	})
	workflowSvc := service.NewWorkflowService(snapshots, assignments, guard, validate, logr, solverOptions)
	statsSvc := service.NewStatsService(snapshots, assignments, cacheRepo, scheduleSvc, logr, solverOptions, service.StatsConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
		TopLoad:  cfg.Dashboard.TopLoad,
	})
	timetableSvc := service.NewTimetableService(assignments, validate, logr, service.TimetableConfig{
		ExportsEnabled: cfg.Exports.Enabled,
		ExportTitle:    cfg.Exports.Title,
	})
	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/optimize/draft", middleware.Require(middleware.CapRunSolver), scheduleHandler.Draft)
	authed.POST("/optimize/run", middleware.Require(middleware.CapRunSolver), scheduleHandler.Optimize)

	authed.GET("/timetable", middleware.Require(middleware.CapViewTimetable), timetableHandler.List)
	authed.GET("/timetable/export", middleware.Require(middleware.CapExportTimetable), timetableHandler.Export)

	authed.GET("/stats/dashboard-kpi", middleware.Require(middleware.CapViewStats), statsHandler.DashboardKPI)
	authed.GET("/stats/conflicts-detailed", middleware.Require(middleware.CapViewStats), statsHandler.DetailedConflicts)

	authed.POST("/workflow/validate-dept/:id", middleware.Require(middleware.CapValidateDept), workflowHandler.ValidateDepartment)
	authed.POST("/workflow/approve-final", middleware.Require(middleware.CapApproveFinal), workflowHandler.ApproveFinal)
	authed.POST("/workflow/reset", middleware.Require(middleware.CapResetWorkflow), workflowHandler.Reset)
	authed.GET("/workflow/status-summary", middleware.Require(middleware.CapViewWorkflow), workflowHandler.StatusSummary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
