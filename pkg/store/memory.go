package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/stemma/pkg/graph"
)

// MemoryStore keeps layouts in a map. Stored values are copied on the way
// in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]graph.Layout
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]graph.Layout)}
}

func (s *MemoryStore) Save(ctx context.Context, l *graph.Layout) error {
	stamp(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.ID] = clone(*l)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*graph.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(l)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layouts, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, Summarize(&l))
	}
	s.mu.RUnlock()
	sortNewest(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, l := range s.layouts {
		if l.CreatedAt.Before(cutoff) {
			delete(s.layouts, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(l graph.Layout) graph.Layout {
	l.Nodes = slices.Clone(l.Nodes)
	l.Edges = slices.Clone(l.Edges)
	return l
}

func sortNewest(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*MemoryStore)(nil)
