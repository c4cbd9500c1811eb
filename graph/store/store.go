// Package store provides persistence for recorded walks.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested run ID does not exist.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("store is closed")

// Status values of a Record.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Record is one entry of a walk's history: either an observed element or a
// recoverable step failure.
type Record struct {
	// Seq is the append position within the run, starting at 0. It is unique
	// per run; Step is not, since failures repeat the attempted step number.
	Seq int

	// Step is the machine step count. The seeded start element is step 0.
	Step int

	// ElementID, ElementName and Kind describe the observed element. For a
	// failure they describe the last-known element.
	ElementID   string
	ElementName string
	Kind        string

	// Status is StatusOK or StatusFailed.
	Status string

	// Error holds the failure message for StatusFailed records.
	Error string

	// At is the wall-clock time the record was produced.
	At time.Time
}

// Summary describes a finished walk.
type Summary struct {
	RunID          string
	Model          string
	Generator      string
	Outcome        string
	Steps          int
	Failures       int
	Length         int
	EdgeCoverage   float64
	VertexCoverage float64
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Store persists walk histories.
//
// Implementations:
//   - MemStore: in-process maps, for tests and one-shot CLI runs
//   - SQLiteStore: single file, zero setup
//   - MySQLStore: shared database for many concurrent walkers
//
// All implementations are safe for concurrent use; parallel walks write
// under distinct run IDs.
type Store interface {
	// SaveRecord appends rec to the history of runID. A record with the same
	// runID and Seq replaces the previous one.
	SaveRecord(ctx context.Context, runID string, rec Record) error

	// LoadWalk returns the history of runID ordered by Seq.
	// Returns ErrNotFound when the run has no records.
	LoadWalk(ctx context.Context, runID string) ([]Record, error)

	// SaveSummary stores or replaces the summary of s.RunID.
	SaveSummary(ctx context.Context, s Summary) error

	// LoadSummary returns the summary of runID or ErrNotFound.
	LoadSummary(ctx context.Context, runID string) (Summary, error)

	// ListRuns returns the IDs of all runs with a summary, oldest first.
	ListRuns(ctx context.Context) ([]string, error)

	// Close releases resources. Closing twice is a no-op.
	Close() error
}

// Open creates a store from a location string:
//
//	memory              in-process store
//	sqlite:<path>       SQLite database file (":memory:" allowed)
//	mysql:<dsn>         MySQL/MariaDB DSN
func Open(location string) (Store, error) {
	switch {
	case location == "" || location == "memory":
		return NewMemStore(), nil
	case strings.HasPrefix(location, "sqlite:"):
		return NewSQLiteStore(strings.TrimPrefix(location, "sqlite:"))
	case strings.HasPrefix(location, "mysql:"):
		return NewMySQLStore(strings.TrimPrefix(location, "mysql:"))
	default:
		return nil, fmt.Errorf("unknown store location %q (want memory, sqlite:<path> or mysql:<dsn>)", location)
	}
}
