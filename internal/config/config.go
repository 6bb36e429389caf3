package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

const (
	OracleRandom = "random"
	OracleEngine = "engine"
)

type AppConfig struct {
	ScenarioFile string
	Scenarios    []string
	MessagesDir  string

	Simulations int
	PlyCap      int
	Workers     int
	Seed        int64
	SeedSet     bool

	Oracle         string
	StockfishPath  string
	EnginePreset   string
	EngineMoveTime int
	EngineTimeout  time.Duration
	EngineCapacity int
	Truncation     domain.TruncationPolicy
	Denominator    domain.Denominator
	ClaimDraws     bool
	MinPlies       int
	ProgressEvery  int
	OutputCSV      string
	PlotPath       string
	RedisURL       string
	DatabaseURL    string
	IrisBaseURL    string
	NotifyRoom     string
	DisableConsole bool
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Simulations:   10000,
		PlyCap:        100,
		Oracle:        OracleRandom,
		EnginePreset:  "fast",
		Truncation:    domain.TruncateInvalid,
		Denominator:   domain.DenominatorAll,
		ProgressEvery: 1000,
	}

	cfg.ScenarioFile = strings.TrimSpace(os.Getenv("MC_SCENARIO_FILE"))
	cfg.Scenarios = splitList(os.Getenv("MC_SCENARIOS"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MC_MESSAGES_DIR"))

	var err error
	if cfg.Simulations, err = intEnv("MC_SIMULATIONS", cfg.Simulations); err != nil {
		return nil, err
	}
	if cfg.PlyCap, err = intEnv("MC_PLY_CAP", cfg.PlyCap); err != nil {
		return nil, err
	}
	if cfg.Workers, err = intEnv("MC_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.MinPlies, err = intEnv("MC_MIN_PLIES", cfg.MinPlies); err != nil {
		return nil, err
	}
	if cfg.ProgressEvery, err = intEnv("MC_PROGRESS_EVERY", cfg.ProgressEvery); err != nil {
		return nil, err
	}
	if cfg.EngineMoveTime, err = intEnv("MC_ENGINE_MOVETIME_MS", cfg.EngineMoveTime); err != nil {
		return nil, err
	}
	if cfg.EngineCapacity, err = intEnv("MC_ENGINE_CAPACITY", cfg.EngineCapacity); err != nil {
		return nil, err
	}
	timeoutMS, err := intEnv("MC_ENGINE_TIMEOUT_MS", 0)
	if err != nil {
		return nil, err
	}
	cfg.EngineTimeout = time.Duration(timeoutMS) * time.Millisecond

	if v := strings.TrimSpace(os.Getenv("MC_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MC_SEED: %w", err)
		}
		cfg.Seed = n
		cfg.SeedSet = true
	}
	if v := strings.TrimSpace(os.Getenv("MC_CLAIM_DRAWS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("MC_CLAIM_DRAWS: %w", err)
		}
		cfg.ClaimDraws = b
	}
	if v := strings.TrimSpace(os.Getenv("MC_NO_CONSOLE_TABLE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("MC_NO_CONSOLE_TABLE: %w", err)
		}
		cfg.DisableConsole = b
	}

	if v := strings.TrimSpace(os.Getenv("MC_ORACLE")); v != "" {
		cfg.Oracle = strings.ToLower(v)
	}
	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))
	if v := strings.TrimSpace(os.Getenv("MC_ENGINE_PRESET")); v != "" {
		cfg.EnginePreset = v
	}
	if cfg.Truncation, err = domain.ParseTruncationPolicy(os.Getenv("MC_TRUNCATION")); err != nil {
		return nil, fmt.Errorf("MC_TRUNCATION: %w", err)
	}
	if cfg.Denominator, err = domain.ParseDenominator(os.Getenv("MC_DENOMINATOR")); err != nil {
		return nil, fmt.Errorf("MC_DENOMINATOR: %w", err)
	}

	cfg.OutputCSV = strings.TrimSpace(os.Getenv("MC_OUTPUT_CSV"))
	cfg.PlotPath = strings.TrimSpace(os.Getenv("MC_PLOT_PATH"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.NotifyRoom = strings.TrimSpace(os.Getenv("MC_NOTIFY_ROOM"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Simulations <= 0 {
		return errors.New("MC_SIMULATIONS must be > 0")
	}
	if c.PlyCap <= 0 {
		return errors.New("MC_PLY_CAP must be > 0")
	}
	if c.Workers < 0 || c.MinPlies < 0 || c.ProgressEvery < 0 || c.EngineMoveTime < 0 || c.EngineCapacity < 0 || c.EngineTimeout < 0 {
		return errors.New("numeric settings must not be negative")
	}
	switch c.Oracle {
	case OracleRandom:
	case OracleEngine:
		if c.StockfishPath == "" {
			return errors.New("STOCKFISH_PATH is required for the engine oracle")
		}
	default:
		return fmt.Errorf("MC_ORACLE must be %q or %q, got %q", OracleRandom, OracleEngine, c.Oracle)
	}
	if c.NotifyRoom != "" && c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required when MC_NOTIFY_ROOM is set")
	}
	return nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
