package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bmcnabb/qcodex/internal/registry"
)

// Store is an in-memory implementation of registry.Store for tests and
// ephemeral runs.
type Store struct {
	mu    sync.RWMutex
	codes map[string]registry.Code
	maxID int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{codes: make(map[string]registry.Code)}
}

// Close implements registry.Store.
func (s *Store) Close() error { return nil }

// Add registers any names not yet present, assigning ids in the order given.
func (s *Store) Add(ctx context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := s.codes[name]; ok {
			continue
		}
		s.maxID++
		s.codes[name] = registry.Code{ID: s.maxID, Name: name, FirstSeen: now}
	}
	return nil
}

// List returns all codes ordered by id.
func (s *Store) List(ctx context.Context) ([]registry.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registry.Code, 0, len(s.codes))
	for _, c := range s.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Lookup returns the code registered under name, if any.
func (s *Store) Lookup(ctx context.Context, name string) (registry.Code, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.codes[name]
	return c, ok, nil
}
