package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Solver    SolverConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig tunes the draft builder and the annealing optimizer.
// Weights rank soft-cost terms; operators retune them without redeploying.
type SolverConfig struct {
	LoadVarianceWeight    float64
	RoomWasteWeight       float64
	SpreadWeight          float64
	CapacityDeficitWeight float64
	CapacityHard          bool

	IterationBudget  int
	TimeBudget       time.Duration
	StartTemperature float64
	CoolingFactor    float64
	StallWindow      int
	Seed             int64

	SupervisorDailyCap int
}

// DashboardConfig governs KPI exposure and cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
	TopLoad  int
}

// ExportsConfig controls timetable export rendering.
type ExportsConfig struct {
	Enabled bool
	Title   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		LoadVarianceWeight:    v.GetFloat64("SOLVER_LOAD_VARIANCE_WEIGHT"),
		RoomWasteWeight:       v.GetFloat64("SOLVER_ROOM_WASTE_WEIGHT"),
		SpreadWeight:          v.GetFloat64("SOLVER_SPREAD_WEIGHT"),
		CapacityDeficitWeight: v.GetFloat64("SOLVER_CAPACITY_DEFICIT_WEIGHT"),
		CapacityHard:          v.GetBool("SOLVER_CAPACITY_HARD"),
		IterationBudget:       v.GetInt("SOLVER_ITERATION_BUDGET"),
		TimeBudget:            parseDuration(v.GetString("SOLVER_TIME_BUDGET"), 30*time.Second),
		StartTemperature:      v.GetFloat64("SOLVER_START_TEMPERATURE"),
		CoolingFactor:         v.GetFloat64("SOLVER_COOLING_FACTOR"),
		StallWindow:           v.GetInt("SOLVER_STALL_WINDOW"),
		Seed:                  v.GetInt64("SOLVER_SEED"),
		SupervisorDailyCap:    v.GetInt("SOLVER_SUPERVISOR_DAILY_CAP"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		TopLoad:  v.GetInt("DASHBOARD_TOP_LOAD"),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
		Title:   v.GetString("EXPORTS_TITLE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "exam-planner-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_LOAD_VARIANCE_WEIGHT", 2.0)
	v.SetDefault("SOLVER_ROOM_WASTE_WEIGHT", 1.0)
	v.SetDefault("SOLVER_SPREAD_WEIGHT", 1.5)
	v.SetDefault("SOLVER_CAPACITY_DEFICIT_WEIGHT", 10.0)
	v.SetDefault("SOLVER_CAPACITY_HARD", false)
	v.SetDefault("SOLVER_ITERATION_BUDGET", 20000)
	v.SetDefault("SOLVER_TIME_BUDGET", "30s")
	v.SetDefault("SOLVER_START_TEMPERATURE", 10.0)
	v.SetDefault("SOLVER_COOLING_FACTOR", 0.9995)
	v.SetDefault("SOLVER_STALL_WINDOW", 500)
	v.SetDefault("SOLVER_SEED", 1)
	v.SetDefault("SOLVER_SUPERVISOR_DAILY_CAP", 3)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_TOP_LOAD", 10)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_TITLE", "Exam Timetable")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
