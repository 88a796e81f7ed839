// Package registry tracks every category code ever observed across parses
// and assigns each a stable integer id: one greater than the previous
// maximum, never reused or reassigned.
package registry

import (
	"context"
	"time"
)

// Code is one registered category.
type Code struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FirstSeen time.Time `json:"first_seen"`
}

// Store persists the code table. Add is append-only: names already present
// keep their id, new names are appended in the order given.
type Store interface {
	Add(ctx context.Context, names []string) error
	List(ctx context.Context) ([]Code, error)
	Lookup(ctx context.Context, name string) (Code, bool, error)
	Close() error
}
