// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"weekplanner/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var _ domain.RecipeRepository = (*DB)(nil)
var _ domain.FavoriteRepository = (*DB)(nil)
var _ domain.WeekplanStore = (*DB)(nil)
var _ domain.EntryReplacer = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS recipes (id TEXT PRIMARY KEY, title TEXT NOT NULL, image_url TEXT NOT NULL DEFAULT '', category TEXT NOT NULL DEFAULT '', area TEXT NOT NULL DEFAULT '', difficulty TEXT NOT NULL DEFAULT '' CHECK(difficulty IN ('','Easy','Medium','Hard')), cooking_time INTEGER CHECK(cooking_time >= 0), servings INTEGER CHECK(servings > 0), creator_id TEXT NOT NULL DEFAULT '', ingredients TEXT[] NOT NULL DEFAULT '{}', instructions TEXT NOT NULL DEFAULT '', created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);",
		"CREATE TABLE IF NOT EXISTS favorites (user_id TEXT NOT NULL, recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE, created_at TIMESTAMPTZ NOT NULL, PRIMARY KEY (user_id, recipe_id));",
		"CREATE TABLE IF NOT EXISTS weekplans (id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, title TEXT NOT NULL, start_date DATE, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_weekplans_owner_id ON weekplans(owner_id);",
		"CREATE TABLE IF NOT EXISTS weekplan_entries (id TEXT PRIMARY KEY, weekplan_id TEXT NOT NULL REFERENCES weekplans(id) ON DELETE CASCADE, day SMALLINT NOT NULL CHECK(day BETWEEN 0 AND 6), meal TEXT NOT NULL CHECK(meal IN ('breakfast','lunch','dinner','snack')), recipe_id TEXT NOT NULL, sequence INTEGER NOT NULL DEFAULT 0, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_weekplan_entries_weekplan_id ON weekplan_entries(weekplan_id);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
