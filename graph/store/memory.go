package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Store.
//
// Data is lost when the process terminates. MemStore is safe for concurrent
// access.
type MemStore struct {
	mu        sync.RWMutex
	records   map[string][]Record // runID -> records ordered by Seq
	summaries map[string]Summary
	order     []string // runIDs in first-summary order
	closed    bool
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records:   make(map[string][]Record),
		summaries: make(map[string]Summary),
	}
}

// SaveRecord appends or replaces a record.
func (m *MemStore) SaveRecord(_ context.Context, runID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	recs := m.records[runID]
	i := sort.Search(len(recs), func(i int) bool { return recs[i].Seq >= rec.Seq })
	switch {
	case i < len(recs) && recs[i].Seq == rec.Seq:
		recs[i] = rec
	default:
		recs = append(recs, Record{})
		copy(recs[i+1:], recs[i:])
		recs[i] = rec
	}
	m.records[runID] = recs
	return nil
}

// LoadWalk returns a copy of the run's records.
func (m *MemStore) LoadWalk(_ context.Context, runID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	recs, ok := m.records[runID]
	if !ok || len(recs) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

// SaveSummary stores the summary of a run.
func (m *MemStore) SaveSummary(_ context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if _, ok := m.summaries[s.RunID]; !ok {
		m.order = append(m.order, s.RunID)
	}
	m.summaries[s.RunID] = s
	return nil
}

// LoadSummary returns the summary of a run.
func (m *MemStore) LoadSummary(_ context.Context, runID string) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Summary{}, ErrClosed
	}

	s, ok := m.summaries[runID]
	if !ok {
		return Summary{}, ErrNotFound
	}
	return s, nil
}

// ListRuns returns run IDs in the order their summaries were first saved.
func (m *MemStore) ListRuns(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

// Close marks the store closed.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
