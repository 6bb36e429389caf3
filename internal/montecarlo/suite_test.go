package montecarlo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

// cancelOnAcquire cancels the run when the nth oracle is handed out.
type cancelOnAcquire struct {
	RandomProvider
	n      int64
	calls  atomic.Int64
	cancel context.CancelFunc
}

func (p *cancelOnAcquire) Acquire(ctx context.Context) (MoveOracle, error) {
	if p.calls.Add(1) == p.n {
		p.cancel()
	}
	return p.RandomProvider.Acquire(ctx)
}

// failForScenario reports the engine as gone while one scenario is running.
type failForScenario struct {
	RandomProvider
	calls atomic.Int64
	fail  int64
}

func (p *failForScenario) Acquire(ctx context.Context) (MoveOracle, error) {
	if p.calls.Add(1) == p.fail {
		return nil, ErrEngineUnavailable
	}
	return p.RandomProvider.Acquire(ctx)
}

func suiteScenarios() []domain.Scenario {
	return []domain.Scenario{
		{Name: "e4", ECO: "B00", Opening: []string{"e2e4"}},
		{Name: "d4", Opening: []string{"d2d4"}, Truncation: domain.TruncateMaterial},
		{Name: "broken", Opening: []string{"z9z9"}},
	}
}

func TestRunSuiteOrderAndRows(t *testing.T) {
	r := NewRunner(RunnerConfig{Workers: 2, Seed: 11}, nil)
	table, err := r.RunSuite(context.Background(), Suite{
		RunID:       "run",
		Scenarios:   suiteScenarios(),
		Provider:    RandomProvider{},
		Simulations: 50,
		Driver:      Driver{PlyCap: 10},
		Denominator: domain.DenominatorAll,
	})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if table.Oracle != "random" || table.RunID != "run" || len(table.Rows) != 3 {
		t.Fatalf("unexpected table: %+v", table)
	}
	names := []string{table.Rows[0].Name, table.Rows[1].Name, table.Rows[2].Name}
	if names[0] != "e4" || names[1] != "d4" || names[2] != "broken" {
		t.Fatalf("order = %v", names)
	}
	if table.Rows[0].ECO != "B00" || table.Rows[0].Truncation != domain.TruncateInvalid {
		t.Fatalf("row 0 = %+v", table.Rows[0])
	}
	if table.Rows[1].Truncation != domain.TruncateMaterial {
		t.Fatalf("scenario truncation override lost: %+v", table.Rows[1])
	}
	broken := table.Rows[2]
	if broken.Status != domain.StatusComplete || broken.Counts.Count(domain.Invalid) != 50 || broken.Error == "" {
		t.Fatalf("setup failure row = %+v", broken)
	}
	for _, row := range table.Rows {
		if row.Total != 50 || row.Counts.Total() != 50 {
			t.Fatalf("row %s totals %d", row.Name, row.Total)
		}
	}
}

func TestRunSuiteFailedScenarioContinues(t *testing.T) {
	r := NewRunner(RunnerConfig{Workers: 1, Seed: 3}, nil)
	table, err := r.RunSuite(context.Background(), Suite{
		Scenarios:   suiteScenarios()[:2],
		Provider:    &failForScenario{fail: 1},
		Simulations: 20,
		Driver:      Driver{PlyCap: 10},
	})
	if err != nil {
		t.Fatalf("RunSuite: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d", len(table.Rows))
	}
	failed := table.Rows[0]
	if failed.Status != domain.StatusFailed || failed.Total != 0 || failed.Counts.Total() != 0 {
		t.Fatalf("failed row = %+v", failed)
	}
	if table.Rows[1].Status != domain.StatusComplete || table.Rows[1].Total != 20 {
		t.Fatalf("second row = %+v", table.Rows[1])
	}
}

func TestRunSuiteInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRunner(RunnerConfig{Workers: 1, Seed: 5}, nil)
	table, err := r.RunSuite(ctx, Suite{
		Scenarios:   suiteScenarios(),
		Provider:    &cancelOnAcquire{n: 2, cancel: cancel},
		Simulations: 30,
		Driver:      Driver{PlyCap: 10},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected the third scenario to be excluded, got %d rows", len(table.Rows))
	}
	if table.Rows[0].Status != domain.StatusComplete {
		t.Fatalf("first row = %+v", table.Rows[0])
	}
	partial := table.Rows[1]
	if partial.Status != domain.StatusPartial || partial.Total >= partial.Requested {
		t.Fatalf("second row = %+v", partial)
	}
}
