package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/ppiankov/ecfr-analyzer/internal/model"
)

// MemoryStore keeps snapshots in process memory. Snapshots are stored as
// JSON so callers can never mutate what was saved.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []storedSnapshot
}

type storedSnapshot struct {
	meta model.Snapshot // Results left empty
	doc  []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends a snapshot
func (s *MemoryStore) Save(ctx context.Context, results *model.AnalysisResults, date string) error {
	doc, err := json.Marshal(results)
	if err != nil {
		return persistErr("save", err)
	}

	snap := newSnapshot(&model.AnalysisResults{}, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, storedSnapshot{meta: snap, doc: doc})
	return nil
}

// LoadLatest returns the most recently dated snapshot
func (s *MemoryStore) LoadLatest(ctx context.Context) (*model.AnalysisResults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}

	// Later writes win ties, so scan forward and keep >=
	latest := 0
	for i, snap := range s.snapshots {
		if snap.meta.Date >= s.snapshots[latest].meta.Date {
			latest = i
		}
	}

	var results model.AnalysisResults
	if err := json.Unmarshal(s.snapshots[latest].doc, &results); err != nil {
		return nil, persistErr("load", err)
	}
	return &results, nil
}

// List returns all snapshots ordered by date, then write order
func (s *MemoryStore) List(ctx context.Context) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Snapshot, 0, len(s.snapshots))
	for _, stored := range s.snapshots {
		snap := stored.meta
		if err := json.Unmarshal(stored.doc, &snap.Results); err != nil {
			return nil, persistErr("list", err)
		}
		out = append(out, snap)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
