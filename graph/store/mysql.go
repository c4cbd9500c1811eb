package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store, for walkers that
// share one history database.
//
// The DSN format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Never hardcode credentials; read the DSN from the environment or the
// config file.
type MySQLStore struct {
	sqlBase
}

// NewMySQLStore connects to dsn and creates the schema if missing.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := execAll(ctx, db, `
		CREATE TABLE IF NOT EXISTS walk_records (
			run_id VARCHAR(255) NOT NULL,
			seq INT NOT NULL,
			step INT NOT NULL,
			element_id VARCHAR(255) NOT NULL,
			element_name VARCHAR(255) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			status VARCHAR(16) NOT NULL,
			error TEXT NOT NULL,
			at_ns BIGINT NOT NULL,
			PRIMARY KEY (run_id, seq)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, `
		CREATE TABLE IF NOT EXISTS walk_summaries (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			model VARCHAR(1024) NOT NULL,
			generator VARCHAR(1024) NOT NULL,
			outcome VARCHAR(32) NOT NULL,
			steps INT NOT NULL,
			failures INT NOT NULL,
			length INT NOT NULL,
			edge_coverage DOUBLE NOT NULL,
			vertex_coverage DOUBLE NOT NULL,
			started_ns BIGINT NOT NULL,
			finished_ns BIGINT NOT NULL,
			UNIQUE KEY unique_run (run_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &MySQLStore{sqlBase: sqlBase{
		db: db,
		upsertRecord: `
			INSERT INTO walk_records (run_id, seq, step, element_id, element_name, kind, status, error, at_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				step = VALUES(step),
				element_id = VALUES(element_id),
				element_name = VALUES(element_name),
				kind = VALUES(kind),
				status = VALUES(status),
				error = VALUES(error),
				at_ns = VALUES(at_ns)`,
		upsertSummary: `
			INSERT INTO walk_summaries (run_id, model, generator, outcome, steps, failures, length,
				edge_coverage, vertex_coverage, started_ns, finished_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				model = VALUES(model),
				generator = VALUES(generator),
				outcome = VALUES(outcome),
				steps = VALUES(steps),
				failures = VALUES(failures),
				length = VALUES(length),
				edge_coverage = VALUES(edge_coverage),
				vertex_coverage = VALUES(vertex_coverage),
				started_ns = VALUES(started_ns),
				finished_ns = VALUES(finished_ns)`,
	}}, nil
}
