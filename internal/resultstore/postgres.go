package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/pkg/simdto"
)

const schema = `
	CREATE TABLE IF NOT EXISTS mc_results (
		id           BIGSERIAL PRIMARY KEY,
		run_id       TEXT NOT NULL,
		scenario     TEXT NOT NULL,
		eco          TEXT NOT NULL DEFAULT '',
		oracle       TEXT NOT NULL,
		white_wins   INTEGER NOT NULL,
		black_wins   INTEGER NOT NULL,
		draws        INTEGER NOT NULL,
		invalid      INTEGER NOT NULL,
		total        INTEGER NOT NULL,
		requested    INTEGER NOT NULL,
		white_rate   DOUBLE PRECISION NOT NULL,
		black_rate   DOUBLE PRECISION NOT NULL,
		draw_rate    DOUBLE PRECISION NOT NULL,
		invalid_rate DOUBLE PRECISION NOT NULL,
		denominator  TEXT NOT NULL,
		truncation   TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		seed         BIGINT NOT NULL,
		elapsed_ms   BIGINT NOT NULL,
		error        TEXT NOT NULL DEFAULT '',
		started_at   TIMESTAMPTZ NOT NULL,
		UNIQUE (run_id, scenario)
	)`

// PostgresStore appends one row per scenario result to mc_results.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings the database and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create mc_results: %w", err)
	}
	return nil
}

// Save writes every row of the table in one transaction. Saving the same
// run twice leaves the first copy in place.
func (s *PostgresStore) Save(ctx context.Context, table domain.ResultTable) error {
	if strings.TrimSpace(table.RunID) == "" {
		return ErrNoRunID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO mc_results (
			run_id,
			scenario,
			eco,
			oracle,
			white_wins,
			black_wins,
			draws,
			invalid,
			total,
			requested,
			white_rate,
			black_rate,
			draw_rate,
			invalid_rate,
			denominator,
			truncation,
			status,
			seed,
			elapsed_ms,
			error,
			started_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (run_id, scenario) DO NOTHING`

	for _, row := range simdto.Rows(table) {
		_, err := tx.ExecContext(ctx, query,
			row.RunID,
			row.Scenario,
			row.ECO,
			row.Oracle,
			row.WhiteWins,
			row.BlackWins,
			row.Draws,
			row.Invalid,
			row.Total,
			row.Requested,
			row.WhiteRate,
			row.BlackRate,
			row.DrawRate,
			row.InvalidRate,
			row.Denominator,
			row.Truncation,
			row.Status,
			row.Seed,
			row.Elapsed.Milliseconds(),
			row.Error,
			row.StartedAt,
		)
		if err != nil {
			return fmt.Errorf("insert result %s/%s: %w", row.RunID, row.Scenario, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentResults returns the latest stored rows of a scenario, newest first.
func (s *PostgresStore) RecentResults(ctx context.Context, scenario string, limit int) ([]simdto.Row, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT
			run_id,
			scenario,
			eco,
			oracle,
			white_wins,
			black_wins,
			draws,
			invalid,
			total,
			requested,
			white_rate,
			black_rate,
			draw_rate,
			invalid_rate,
			denominator,
			truncation,
			status,
			seed,
			elapsed_ms,
			error,
			started_at
		FROM mc_results
		WHERE scenario = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []simdto.Row
	for rows.Next() {
		var (
			r         simdto.Row
			elapsedMS int64
		)
		if err := rows.Scan(
			&r.RunID,
			&r.Scenario,
			&r.ECO,
			&r.Oracle,
			&r.WhiteWins,
			&r.BlackWins,
			&r.Draws,
			&r.Invalid,
			&r.Total,
			&r.Requested,
			&r.WhiteRate,
			&r.BlackRate,
			&r.DrawRate,
			&r.InvalidRate,
			&r.Denominator,
			&r.Truncation,
			&r.Status,
			&r.Seed,
			&elapsedMS,
			&r.Error,
			&r.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error { return s.db.Close() }
