package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// sqlBase holds the query logic shared by SQLiteStore and MySQLStore. Both
// drivers accept "?" placeholders; only DDL and upsert syntax differ.
type sqlBase struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool

	upsertRecord  string
	upsertSummary string
}

func (b *sqlBase) check() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *sqlBase) SaveRecord(ctx context.Context, runID string, rec Record) error {
	if err := b.check(); err != nil {
		return err
	}

	_, err := b.db.ExecContext(ctx, b.upsertRecord,
		runID, rec.Seq, rec.Step, rec.ElementID, rec.ElementName, rec.Kind,
		rec.Status, rec.Error, rec.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (b *sqlBase) LoadWalk(ctx context.Context, runID string) ([]Record, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT seq, step, element_id, element_name, kind, status, error, at_ns
		FROM walk_records
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			at  int64
		)
		if err := rows.Scan(&rec.Seq, &rec.Step, &rec.ElementID, &rec.ElementName,
			&rec.Kind, &rec.Status, &rec.Error, &at); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.At = time.Unix(0, at)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (b *sqlBase) SaveSummary(ctx context.Context, s Summary) error {
	if err := b.check(); err != nil {
		return err
	}

	_, err := b.db.ExecContext(ctx, b.upsertSummary,
		s.RunID, s.Model, s.Generator, s.Outcome, s.Steps, s.Failures, s.Length,
		s.EdgeCoverage, s.VertexCoverage, s.StartedAt.UnixNano(), s.FinishedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

func (b *sqlBase) LoadSummary(ctx context.Context, runID string) (Summary, error) {
	if err := b.check(); err != nil {
		return Summary{}, err
	}

	var (
		s                 Summary
		started, finished int64
	)
	err := b.db.QueryRowContext(ctx, `
		SELECT run_id, model, generator, outcome, steps, failures, length,
			edge_coverage, vertex_coverage, started_ns, finished_ns
		FROM walk_summaries
		WHERE run_id = ?
	`, runID).Scan(&s.RunID, &s.Model, &s.Generator, &s.Outcome, &s.Steps, &s.Failures,
		&s.Length, &s.EdgeCoverage, &s.VertexCoverage, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrNotFound
	}
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load summary: %w", err)
	}
	s.StartedAt = time.Unix(0, started)
	s.FinishedAt = time.Unix(0, finished)
	return s, nil
}

func (b *sqlBase) ListRuns(ctx context.Context) ([]string, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, `SELECT run_id FROM walk_summaries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close closes the database connection. Calling Close multiple times is safe.
func (b *sqlBase) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// Ping verifies the database connection is alive.
func (b *sqlBase) Ping(ctx context.Context) error {
	if err := b.check(); err != nil {
		return err
	}
	return b.db.PingContext(ctx)
}

func execAll(ctx context.Context, db *sql.DB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
