package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// SQLiteRepository stores audit records in a local SQLite file
// Postgres 없이 로컬 실행 이력을 남길 때 사용
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open database (see database.OpenSQLite)
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS voltarget_runs (
		run_id       TEXT PRIMARY KEY,
		strategy_id  TEXT NOT NULL,
		config_hash  TEXT NOT NULL,
		prices_path  TEXT NOT NULL,
		signals_path TEXT NOT NULL,
		started_at   TEXT NOT NULL,
		duration_ms  INTEGER NOT NULL,
		first_date   TEXT,
		last_date    TEXT,
		summary      TEXT NOT NULL,
		quality      TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voltarget_runs_strategy ON voltarget_runs (strategy_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS voltarget_weights (
		run_id          TEXT NOT NULL REFERENCES voltarget_runs (run_id) ON DELETE CASCADE,
		trade_date      TEXT NOT NULL,
		ticker          TEXT NOT NULL,
		signal          REAL,
		volatility      REAL,
		weight_pre_cap  REAL,
		weight_post_cap REAL,
		PRIMARY KEY (run_id, trade_date, ticker)
	)`,
}

// EnsureSchema creates the audit tables if needed
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure audit schema: %w", err)
		}
	}
	return nil
}

// SaveRun upserts the run and replaces its weight rows in one transaction
func (r *SQLiteRepository) SaveRun(ctx context.Context, run *contracts.RunSnapshot, quality []contracts.DataQualitySnapshot, rows []contracts.WeightRow) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	qualityJSON, err := json.Marshal(qualityOrEmpty(quality))
	if err != nil {
		return fmt.Errorf("failed to marshal quality: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO voltarget_runs (
			run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary, quality
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			strategy_id = excluded.strategy_id,
			config_hash = excluded.config_hash,
			prices_path = excluded.prices_path,
			signals_path = excluded.signals_path,
			started_at = excluded.started_at,
			duration_ms = excluded.duration_ms,
			first_date = excluded.first_date,
			last_date = excluded.last_date,
			summary = excluded.summary,
			quality = excluded.quality`,
		run.RunID, run.StrategyID, run.ConfigHash, run.PricesPath, run.SignalsPath,
		formatTime(run.StartedAt), run.Duration.Milliseconds(),
		nullTime(run.FirstDate), nullTime(run.LastDate),
		string(summaryJSON), string(qualityJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM voltarget_weights WHERE run_id = ?`, run.RunID); err != nil {
		return fmt.Errorf("failed to clear weights: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO voltarget_weights
			(run_id, trade_date, ticker, signal, volatility, weight_pre_cap, weight_post_cap)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare weights insert: %w", err)
	}
	defer stmt.Close()

	for i, w := range rows {
		_, err := stmt.ExecContext(ctx, run.RunID, formatTime(w.Date), w.Ticker,
			w.Signal, w.Volatility, w.WeightPreCap, w.WeightPostCap)
		if err != nil {
			return fmt.Errorf("failed to save weight row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves one run
func (r *SQLiteRepository) GetRun(ctx context.Context, runID string) (*contracts.RunSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary
		FROM voltarget_runs
		WHERE run_id = ?`, runID)

	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, optionally for one strategy
func (r *SQLiteRepository) ListRuns(ctx context.Context, strategyID string, limit int) ([]contracts.RunSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, strategy_id, config_hash, prices_path, signals_path,
			started_at, duration_ms, first_date, last_date, summary
		FROM voltarget_runs
		WHERE (? = '' OR strategy_id = ?)
		ORDER BY started_at DESC
		LIMIT ?`, strategyID, strategyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []contracts.RunSnapshot
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetWeights returns the long-format weight rows of a run
func (r *SQLiteRepository) GetWeights(ctx context.Context, runID string) ([]contracts.WeightRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_date, ticker, signal, volatility, weight_pre_cap, weight_post_cap
		FROM voltarget_weights
		WHERE run_id = ?
		ORDER BY trade_date, ticker`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weights: %w", err)
	}
	defer rows.Close()

	var out []contracts.WeightRow
	for rows.Next() {
		var (
			w    contracts.WeightRow
			date string
		)
		if err := rows.Scan(&date, &w.Ticker, &w.Signal, &w.Volatility, &w.WeightPreCap, &w.WeightPostCap); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		if w.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("bad trade_date %q: %w", date, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*contracts.RunSnapshot, error) {
	var (
		run         contracts.RunSnapshot
		startedAt   string
		durationMS  int64
		first, last sql.NullString
		summaryJSON string
	)
	err := row.Scan(&run.RunID, &run.StrategyID, &run.ConfigHash, &run.PricesPath, &run.SignalsPath,
		&startedAt, &durationMS, &first, &last, &summaryJSON)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
	}
	if first.Valid {
		if run.FirstDate, err = time.Parse(time.RFC3339Nano, first.String); err != nil {
			return nil, fmt.Errorf("bad first_date %q: %w", first.String, err)
		}
	}
	if last.Valid {
		if run.LastDate, err = time.Parse(time.RFC3339Nano, last.String); err != nil {
			return nil, fmt.Errorf("bad last_date %q: %w", last.String, err)
		}
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond

	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &run, nil
}

// 시각은 UTC RFC3339로 저장
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
