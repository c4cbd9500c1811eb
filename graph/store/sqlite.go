package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It uses the pure-Go modernc.org/sqlite driver, so no CGO is needed. The
// database runs in WAL mode with a single writer connection.
//
// Schema:
//   - walk_records: per-run observations and failures, keyed by (run_id, seq)
//   - walk_summaries: one row per finished run
//
// Example:
//
//	st, err := store.NewSQLiteStore("./walks.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
type SQLiteStore struct {
	sqlBase
	path string
}

// NewSQLiteStore opens (and if needed creates) the database at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also keeps
	// ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := execAll(ctx, db,
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}

	if err := execAll(ctx, db, `
		CREATE TABLE IF NOT EXISTS walk_records (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			step INTEGER NOT NULL,
			element_id TEXT NOT NULL,
			element_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			at_ns INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`, `
		CREATE TABLE IF NOT EXISTS walk_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			model TEXT NOT NULL,
			generator TEXT NOT NULL,
			outcome TEXT NOT NULL,
			steps INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			length INTEGER NOT NULL,
			edge_coverage REAL NOT NULL,
			vertex_coverage REAL NOT NULL,
			started_ns INTEGER NOT NULL,
			finished_ns INTEGER NOT NULL
		)`,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{
		sqlBase: sqlBase{
			db: db,
			upsertRecord: `
				INSERT INTO walk_records (run_id, seq, step, element_id, element_name, kind, status, error, at_ns)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(run_id, seq) DO UPDATE SET
					step = excluded.step,
					element_id = excluded.element_id,
					element_name = excluded.element_name,
					kind = excluded.kind,
					status = excluded.status,
					error = excluded.error,
					at_ns = excluded.at_ns`,
			upsertSummary: `
				INSERT INTO walk_summaries (run_id, model, generator, outcome, steps, failures, length,
					edge_coverage, vertex_coverage, started_ns, finished_ns)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(run_id) DO UPDATE SET
					model = excluded.model,
					generator = excluded.generator,
					outcome = excluded.outcome,
					steps = excluded.steps,
					failures = excluded.failures,
					length = excluded.length,
					edge_coverage = excluded.edge_coverage,
					vertex_coverage = excluded.vertex_coverage,
					started_ns = excluded.started_ns,
					finished_ns = excluded.finished_ns`,
		},
		path: path,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }
