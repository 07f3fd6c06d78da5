package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// Repository handles audit persistence in PostgreSQL
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pgSchema = `
CREATE SCHEMA IF NOT EXISTS audit;

CREATE TABLE IF NOT EXISTS audit.voltarget_runs (
	run_id       TEXT PRIMARY KEY,
	strategy_id  TEXT NOT NULL,
	config_hash  TEXT NOT NULL,
	prices_path  TEXT NOT NULL,
	signals_path TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	duration_ms  BIGINT NOT NULL,
	first_date   DATE,
	last_date    DATE,
	summary      JSONB NOT NULL,
	quality      JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_voltarget_runs_strategy
	ON audit.voltarget_runs (strategy_id, started_at DESC);

CREATE TABLE IF NOT EXISTS audit.voltarget_weights (
	run_id          TEXT NOT NULL REFERENCES audit.voltarget_runs (run_id) ON DELETE CASCADE,
	trade_date      TIMESTAMPTZ NOT NULL,
	ticker          TEXT NOT NULL,
	signal          DOUBLE PRECISION,
	volatility      DOUBLE PRECISION,
	weight_pre_cap  DOUBLE PRECISION,
	weight_post_cap DOUBLE PRECISION,
	PRIMARY KEY (run_id, trade_date, ticker)
);
`

// EnsureSchema creates the audit tables if needed
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// SaveRun upserts the run and replaces its weight rows in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *contracts.RunSnapshot, quality []contracts.DataQualitySnapshot, rows []contracts.WeightRow) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	qualityJSON, err := json.Marshal(qualityOrEmpty(quality))
	if err != nil {
		return fmt.Errorf("failed to marshal quality: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // commit 이후에는 no-op

	query := `
		INSERT INTO audit.voltarget_runs (
			run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary, quality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id) DO UPDATE SET
			strategy_id = EXCLUDED.strategy_id,
			config_hash = EXCLUDED.config_hash,
			prices_path = EXCLUDED.prices_path,
			signals_path = EXCLUDED.signals_path,
			started_at = EXCLUDED.started_at,
			duration_ms = EXCLUDED.duration_ms,
			first_date = EXCLUDED.first_date,
			last_date = EXCLUDED.last_date,
			summary = EXCLUDED.summary,
			quality = EXCLUDED.quality
	`
	_, err = tx.Exec(ctx, query,
		run.RunID, run.StrategyID, run.ConfigHash, run.PricesPath, run.SignalsPath,
		run.StartedAt, run.Duration.Milliseconds(), nullDate(run.FirstDate), nullDate(run.LastDate),
		summaryJSON, qualityJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM audit.voltarget_weights WHERE run_id = $1`, run.RunID); err != nil {
		return fmt.Errorf("failed to clear weights: %w", err)
	}

	if len(rows) > 0 {
		batch := &pgx.Batch{}
		insert := `
			INSERT INTO audit.voltarget_weights
				(run_id, trade_date, ticker, signal, volatility, weight_pre_cap, weight_post_cap)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

		for _, w := range rows {
			batch.Queue(insert, run.RunID, w.Date, w.Ticker,
				w.Signal, w.Volatility, w.WeightPreCap, w.WeightPostCap)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to save weight row %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun retrieves one run
func (r *Repository) GetRun(ctx context.Context, runID string) (*contracts.RunSnapshot, error) {
	query := `
		SELECT run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary
		FROM audit.voltarget_runs
		WHERE run_id = $1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, optionally for one strategy
func (r *Repository) ListRuns(ctx context.Context, strategyID string, limit int) ([]contracts.RunSnapshot, error) {
	query := `
		SELECT run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary
		FROM audit.voltarget_runs
		WHERE ($1 = '' OR strategy_id = $1)
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, strategyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []contracts.RunSnapshot
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetWeights returns the long-format weight rows of a run
func (r *Repository) GetWeights(ctx context.Context, runID string) ([]contracts.WeightRow, error) {
	query := `
		SELECT trade_date, ticker, signal, volatility, weight_pre_cap, weight_post_cap
		FROM audit.voltarget_weights
		WHERE run_id = $1
		ORDER BY trade_date, ticker
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weights: %w", err)
	}
	defer rows.Close()

	var out []contracts.WeightRow
	for rows.Next() {
		var w contracts.WeightRow
		if err := rows.Scan(&w.Date, &w.Ticker, &w.Signal, &w.Volatility, &w.WeightPreCap, &w.WeightPostCap); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		w.Date = w.Date.UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (*contracts.RunSnapshot, error) {
	var (
		run         contracts.RunSnapshot
		durationMS  int64
		first, last *time.Time
		summaryJSON []byte
	)
	err := row.Scan(&run.RunID, &run.StrategyID, &run.ConfigHash, &run.PricesPath, &run.SignalsPath,
		&run.StartedAt, &durationMS, &first, &last, &summaryJSON)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	if first != nil {
		run.FirstDate = *first
	}
	if last != nil {
		run.LastDate = *last
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &run, nil
}

func nullDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func qualityOrEmpty(q []contracts.DataQualitySnapshot) []contracts.DataQualitySnapshot {
	if q == nil {
		return []contracts.DataQualitySnapshot{}
	}
	return q
}
