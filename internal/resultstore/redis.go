package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/pkg/simdto"
)

const (
	ttlRun        = 30 * 24 * time.Hour
	recentRunsMax = 100
)

// RedisStore keeps each run's rows and a running tally per scenario.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// OpenRedis connects using a redis:// URL and checks the server is reachable.
func OpenRedis(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb), nil
}

func (s *RedisStore) keyRun(id string) string { return "mc:run:" + strings.TrimSpace(id) }
func (s *RedisStore) keyRuns() string         { return "mc:runs" }
func (s *RedisStore) keyScenario(name string) string {
	return "mc:scenario:" + strings.ToLower(strings.TrimSpace(name))
}

func (s *RedisStore) Name() string { return "redis" }

// Save stores the rows under the run id and adds complete and partial
// counts to the per-scenario totals. Failed rows carry no counts.
func (s *RedisStore) Save(ctx context.Context, table domain.ResultTable) error {
	if strings.TrimSpace(table.RunID) == "" {
		return ErrNoRunID
	}
	raw, err := json.Marshal(simdto.Rows(table))
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyRun(table.RunID), raw, ttlRun)
	pipe.LPush(ctx, s.keyRuns(), table.RunID)
	pipe.LTrim(ctx, s.keyRuns(), 0, recentRunsMax-1)
	for _, r := range table.Rows {
		if r.Status == domain.StatusFailed {
			continue
		}
		key := s.keyScenario(r.Name)
		for _, o := range domain.Outcomes() {
			if n := r.Counts.Count(o); n > 0 {
				pipe.HIncrBy(ctx, key, o.String(), int64(n))
			}
		}
		pipe.HIncrBy(ctx, key, "runs", 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save run %s: %w", table.RunID, err)
	}
	return nil
}

// LoadRun returns the stored rows, or nil when the run is unknown or expired.
func (s *RedisStore) LoadRun(ctx context.Context, runID string) ([]simdto.Row, error) {
	raw, err := s.rdb.Get(ctx, s.keyRun(runID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []simdto.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return rows, nil
}

// RecentRuns lists run ids, newest first.
func (s *RedisStore) RecentRuns(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > recentRunsMax {
		limit = recentRunsMax
	}
	return s.rdb.LRange(ctx, s.keyRuns(), 0, int64(limit-1)).Result()
}

// Cumulative returns the summed tally of a scenario over all saved runs.
func (s *RedisStore) Cumulative(ctx context.Context, scenario string) (domain.Tally, int, error) {
	var tally domain.Tally
	fields, err := s.rdb.HGetAll(ctx, s.keyScenario(scenario)).Result()
	if err != nil {
		return tally, 0, err
	}
	runs := 0
	for field, value := range fields {
		n, err := strconv.Atoi(value)
		if err != nil {
			return tally, 0, fmt.Errorf("scenario %s field %s: %w", scenario, field, err)
		}
		if field == "runs" {
			runs = n
			continue
		}
		o, err := domain.ParseOutcome(field)
		if err != nil {
			continue
		}
		tally.AddN(o, n)
	}
	return tally, runs, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
