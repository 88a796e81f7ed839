package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bmcnabb/qcodex/internal/registry"
)

// sqliteStore implements registry.Store on a SQLite database.
type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite-backed code registry with WAL
// mode enabled.
func Open(ctx context.Context, path string) (registry.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS codes (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	first_seen TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Add appends any unseen names inside one transaction so each new code gets
// an id exactly one greater than the previous maximum even under
// concurrent writers.
func (s *sqliteStore) Add(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, name := range names {
		if name == "" {
			continue
		}
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM codes WHERE name = ?", name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", name, err)
		}
		if exists > 0 {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO codes (id, name, first_seen) SELECT COALESCE(MAX(id), 0) + 1, ?, ? FROM codes",
			name, now)
		if err != nil {
			return fmt.Errorf("insert %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// List returns all codes ordered by id.
func (s *sqliteStore) List(ctx context.Context) ([]registry.Code, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, first_seen FROM codes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	var codes []registry.Code
	for rows.Next() {
		var c registry.Code
		var seen string
		if err := rows.Scan(&c.ID, &c.Name, &seen); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		c.FirstSeen, _ = time.Parse(time.RFC3339, seen)
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// Lookup returns the code registered under name, if any.
func (s *sqliteStore) Lookup(ctx context.Context, name string) (registry.Code, bool, error) {
	var c registry.Code
	var seen string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, first_seen FROM codes WHERE name = ?", name).Scan(&c.ID, &c.Name, &seen)
	if err == sql.ErrNoRows {
		return registry.Code{}, false, nil
	}
	if err != nil {
		return registry.Code{}, false, fmt.Errorf("lookup %q: %w", name, err)
	}
	c.FirstSeen, _ = time.Parse(time.RFC3339, seen)
	return c, true, nil
}
