package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch describes one scenario run.
type Batch struct {
	Scenario    domain.Scenario
	Provider    OracleProvider
	Simulations int
	Driver      Driver
}

// Report is the raw outcome of a batch before rates are computed.
type Report struct {
	Scenario  string
	Tally     domain.Tally
	Requested int
	Completed int
	Seed      int64
	Workers   int
	Elapsed   time.Duration
	// SetupErr is set when the scenario could not be built; every playout
	// was then classified Invalid.
	SetupErr error
}

// Partial reports whether fewer playouts finished than were requested.
func (r Report) Partial() bool { return r.Completed < r.Requested }

// Runner executes batches across a fixed number of workers.
type Runner struct {
	workers       int
	seed          int64
	progressEvery int
	logger        *zap.Logger
}

type RunnerConfig struct {
	Workers int
	// Seed is the base seed. Playout i of every batch uses PlayoutSeed(Seed, i).
	Seed          int64
	ProgressEvery int
}

func NewRunner(cfg RunnerConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		workers:       workers,
		seed:          cfg.Seed,
		progressEvery: cfg.ProgressEvery,
		logger:        logger,
	}
}

func (r *Runner) Seed() int64  { return r.seed }
func (r *Runner) Workers() int { return r.workers }

// PlayoutSeed derives the seed of playout index from the base seed so the
// tally does not depend on how playouts are split across workers.
func PlayoutSeed(base int64, index int) int64 {
	z := uint64(base) + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// Run plays the batch. A returned error means the oracle became unavailable
// and the scenario must be reported as failed. On context cancellation the
// report holds the playouts that finished and Partial is true.
func (r *Runner) Run(ctx context.Context, b Batch) (Report, error) {
	started := time.Now()
	n := b.Simulations
	report := Report{Scenario: b.Scenario.Name, Requested: n, Seed: r.seed}
	if n <= 0 {
		return report, nil
	}
	if b.Provider == nil {
		return report, fmt.Errorf("%w: no oracle provider", ErrOracleUnavailable)
	}

	log := r.logger.With(zap.String("scenario", b.Scenario.Name), zap.Int64("seed", r.seed))
	start := Prepare(b.Scenario)
	if start.Err != nil {
		log.Warn("scenario_setup_failed", zap.Error(start.Err))
		report.SetupErr = start.Err
	}

	workers := r.workers
	if workers > n {
		workers = n
	}
	report.Workers = workers

	tallies := make([]domain.Tally, workers)
	done := make([]int, workers)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := partition(n, workers, w)
		g.Go(func() error {
			var oracle MoveOracle
			if start.Err == nil {
				o, err := b.Provider.Acquire(gctx)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("%w: acquire %s oracle: %w", ErrOracleUnavailable, b.Provider.Name(), err)
				}
				oracle = o
			}
			var lastErr error
			defer func() {
				if oracle != nil {
					b.Provider.Release(oracle, lastErr)
				}
			}()

			log.Debug("worker_start", zap.Int("worker", w), zap.Int("from", lo), zap.Int("to", hi))
			for i := lo; i < hi; i++ {
				if seeder, ok := oracle.(Seeder); ok {
					seeder.Seed(PlayoutSeed(r.seed, i))
				}
				if resetter, ok := oracle.(Resetter); ok {
					if err := resetter.Reset(gctx); err != nil {
						lastErr = err
						if gctx.Err() != nil {
							return nil
						}
						return fmt.Errorf("%w: reset %s oracle: %w", ErrOracleUnavailable, b.Provider.Name(), err)
					}
				}
				p := b.Driver.Play(gctx, start, oracle)
				if !p.Counted() {
					lastErr = p.Err
					if unavailable(p.Err) {
						return fmt.Errorf("playout %d: %w", i, p.Err)
					}
					return nil
				}
				tallies[w].Add(p.Outcome)
				done[w]++
				r.progress(log, completed.Add(1), n)
			}
			return nil
		})
	}

	err := g.Wait()
	for w := range tallies {
		report.Tally.Merge(tallies[w])
		report.Completed += done[w]
	}
	report.Elapsed = time.Since(started)

	if err != nil {
		if !errors.Is(err, ErrOracleUnavailable) {
			err = fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
		}
		log.Error("batch_aborted", zap.Int("completed", report.Completed), zap.Int("total", n), zap.Error(err))
		return report, err
	}
	if report.Partial() {
		log.Warn("batch_interrupted", zap.Int("completed", report.Completed), zap.Int("total", n))
		return report, nil
	}
	log.Info("batch_done",
		zap.Int("total", n),
		zap.Int("workers", workers),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (r *Runner) progress(log *zap.Logger, completed int64, total int) {
	if r.progressEvery <= 0 || completed%int64(r.progressEvery) != 0 {
		return
	}
	log.Info("batch_progress", zap.Int64("completed", completed), zap.Int("total", total))
}

// partition returns the contiguous index range of worker w.
func partition(n, workers, w int) (int, int) {
	size := n / workers
	rem := n % workers
	lo := w*size + min(w, rem)
	hi := lo + size
	if w < rem {
		hi++
	}
	return lo, hi
}
