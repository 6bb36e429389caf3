package resultstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-montecarlo/internal/domain"
)

func sampleTable(runID string) domain.ResultTable {
	var tally domain.Tally
	tally.AddN(domain.WhiteWin, 7)
	tally.AddN(domain.BlackWin, 2)
	tally.AddN(domain.Draw, 1)
	return domain.ResultTable{
		RunID:       runID,
		StartedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Oracle:      "random",
		PlyCap:      100,
		Simulations: 10,
		Rows: []domain.ScenarioResult{
			{
				Name:        "e4",
				Counts:      tally,
				Rates:       domain.Rates{0.7, 0.2, 0.1, 0},
				Total:       10,
				Requested:   10,
				Denominator: domain.DenominatorAll,
				Status:      domain.StatusComplete,
			},
			{
				Name:      "d4",
				Requested: 10,
				Status:    domain.StatusFailed,
				Error:     "engine unavailable",
			},
		},
	}
}

func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestRedis(t)

	if err := store.Save(ctx, sampleTable("run-a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, sampleTable("run-b")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rows, err := store.LoadRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(rows) != 2 || rows[0].Scenario != "e4" || rows[0].WhiteWins != 7 || rows[1].Status != "failed" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0] != "run-b" {
		t.Fatalf("runs = %v", runs)
	}

	tally, n, err := store.Cumulative(ctx, "E4")
	if err != nil {
		t.Fatalf("Cumulative: %v", err)
	}
	if n != 2 || tally.Count(domain.WhiteWin) != 14 || tally.Count(domain.Draw) != 2 || tally.Total() != 20 {
		t.Fatalf("cumulative = %v over %d runs", tally, n)
	}

	failed, n, err := store.Cumulative(ctx, "d4")
	if err != nil || n != 0 || failed.Total() != 0 {
		t.Fatalf("failed scenario should not accumulate: %v %d %v", failed, n, err)
	}
}

func TestRedisStoreUnknownRun(t *testing.T) {
	rows, err := newTestRedis(t).LoadRun(context.Background(), "missing")
	if err != nil || rows != nil {
		t.Fatalf("expected nil rows, got %v %v", rows, err)
	}
}

func TestRedisStoreRequiresRunID(t *testing.T) {
	err := newTestRedis(t).Save(context.Background(), sampleTable(""))
	if !errors.Is(err, ErrNoRunID) {
		t.Fatalf("expected ErrNoRunID, got %v", err)
	}
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Save(context.Context, domain.ResultTable) error {
	return errors.New("boom")
}

func TestMultiSaveContinuesAfterFailure(t *testing.T) {
	store := newTestRedis(t)
	err := Multi{failingSink{}, store}.Save(context.Background(), sampleTable("run-c"))
	if err == nil {
		t.Fatalf("expected joined error")
	}
	rows, _ := store.LoadRun(context.Background(), "run-c")
	if len(rows) != 2 {
		t.Fatalf("redis sink skipped after failure")
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer store.Close()

	runID := uuid.NewString()
	table := sampleTable(runID)
	if err := store.Save(ctx, table); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, table); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	rows, err := store.RecentResults(ctx, "e4", 50)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	found := 0
	for _, r := range rows {
		if r.RunID == runID {
			found++
			if r.WhiteWins != 7 || r.Total != 10 {
				t.Fatalf("row = %+v", r)
			}
		}
	}
	if found != 1 {
		t.Fatalf("found %d rows for run %s", found, runID)
	}
}
