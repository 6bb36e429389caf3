package simbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	corechess "github.com/park285/cheese-montecarlo/internal/chess"
	"github.com/park285/cheese-montecarlo/internal/config"
	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/internal/montecarlo"
	"github.com/park285/cheese-montecarlo/internal/msgcat"
	"github.com/park285/cheese-montecarlo/internal/notify"
	"github.com/park285/cheese-montecarlo/internal/report"
	"github.com/park285/cheese-montecarlo/internal/resultstore"
	"github.com/park285/cheese-montecarlo/internal/scenario"
)

type Deps struct {
	Suite     montecarlo.Suite
	Runner    *montecarlo.Runner
	Presenter *report.Presenter
	Sinks     resultstore.Multi

	closers []io.Closer
}

// Close releases the engine pool and store connections.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New wires scenarios, oracle, runner and outputs from cfg. stdout receives
// the console table unless disabled.
func New(ctx context.Context, cfg *config.AppConfig, stdout io.Writer, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := scenario.New(cfg.ScenarioFile)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	scenarios, err := catalog.Select(cfg.Scenarios)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if !cfg.SeedSet {
		seed = time.Now().UnixNano()
	}
	deps := &Deps{}
	deps.Runner = montecarlo.NewRunner(montecarlo.RunnerConfig{
		Workers:       cfg.Workers,
		Seed:          seed,
		ProgressEvery: cfg.ProgressEvery,
	}, logger)

	provider, err := newProvider(cfg, deps.Runner.Workers(), logger)
	if err != nil {
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		deps.closers = append(deps.closers, c)
	}

	deps.Suite = montecarlo.Suite{
		RunID:       uuid.NewString(),
		Scenarios:   scenarios,
		Provider:    provider,
		Simulations: cfg.Simulations,
		Driver: montecarlo.Driver{
			PlyCap:     cfg.PlyCap,
			Truncation: cfg.Truncation,
			ClaimDraws: cfg.ClaimDraws,
			MinPlies:   cfg.MinPlies,
			Logger:     logger,
		},
		Denominator: cfg.Denominator,
	}

	if stdout == nil {
		stdout = io.Discard
	}
	out := stdout
	if cfg.DisableConsole {
		out = nil
	}
	formatter := report.NewFormatter(stdout)
	if cfg.MessagesDir != "" {
		messages, err := msgcat.New(cfg.MessagesDir)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("load messages: %w", err)
		}
		formatter.WithMessages(messages)
	}
	deps.Presenter = report.NewPresenter(out, formatter,
		report.WithCSV(cfg.OutputCSV),
		report.WithChart(cfg.PlotPath),
		report.WithLogger(logger))

	if err := deps.addSinks(ctx, cfg, formatter, logger); err != nil {
		deps.Close()
		return nil, err
	}

	logger.Info("simulation_configured",
		zap.String("run_id", deps.Suite.RunID),
		zap.String("oracle", provider.Name()),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("simulations", cfg.Simulations),
		zap.Int("ply_cap", cfg.PlyCap),
		zap.Int("workers", deps.Runner.Workers()),
		zap.Int64("seed", seed),
		zap.String("truncation", string(cfg.Truncation)),
		zap.String("denominator", string(cfg.Denominator)))
	return deps, nil
}

// newProvider builds the move oracle source. Engine runs get one process per
// worker unless MC_ENGINE_CAPACITY says otherwise.
func newProvider(cfg *config.AppConfig, workers int, logger *zap.Logger) (montecarlo.OracleProvider, error) {
	switch cfg.Oracle {
	case config.OracleEngine:
		if strings.TrimSpace(cfg.StockfishPath) == "" {
			return nil, fmt.Errorf("STOCKFISH_PATH is required for the engine oracle")
		}
		return corechess.NewEngineProvider(corechess.EngineConfig{
			BinaryPath:     cfg.StockfishPath,
			Preset:         cfg.EnginePreset,
			MoveTimeMillis: cfg.EngineMoveTime,
			MoveTimeout:    cfg.EngineTimeout,
			Capacity:       engineCapacity(cfg.EngineCapacity, workers),
		}, logger)
	default:
		return montecarlo.RandomProvider{}, nil
	}
}

func engineCapacity(configured, workers int) int {
	if configured > 0 {
		return configured
	}
	return workers
}

func (d *Deps) addSinks(ctx context.Context, cfg *config.AppConfig, formatter *report.Formatter, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cfg.RedisURL != "" {
		store, err := resultstore.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("init redis sink: %w", err)
		}
		d.closers = append(d.closers, store)
		d.Sinks = append(d.Sinks, store)
	}
	if cfg.DatabaseURL != "" {
		store, err := resultstore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("init postgres sink: %w", err)
		}
		d.closers = append(d.closers, store)
		d.Sinks = append(d.Sinks, store)
	}
	if cfg.NotifyRoom != "" {
		client := notify.NewClient(cfg.IrisBaseURL)
		d.Sinks = append(d.Sinks, notify.NewRoomNotifier(client, cfg.NotifyRoom, formatter.Summary, chartOrNil(cfg.PlotPath), logger))
	}
	return nil
}

// chartOrNil attaches the chart to notifications only when one is produced.
func chartOrNil(plotPath string) func(domain.ResultTable) ([]byte, error) {
	if plotPath == "" {
		return nil
	}
	return report.RenderChart
}
