// Package cache persists the realtime configuration of each user in SQLite so
// the realtime channel can be opened without a network round-trip.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	_ "modernc.org/sqlite"
)

// ErrNotCached is returned when no config is stored for a user.
var ErrNotCached = errors.New("config not cached")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS realtime_config (
	user_key     TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);`

// SQLiteCache stores realtime configs keyed by user.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the cache database at dbPath.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite cache: db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite cache: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite cache: open db: %w", err)
	}

	c := &SQLiteCache{db: db, now: time.Now}
	if err := c.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) init() error {
	if _, err := c.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite cache: set busy timeout: %w", err)
	}
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite cache: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the config stored for userKey or ErrNotCached.
func (c *SQLiteCache) Get(ctx context.Context, userKey string) (domain.RealtimeConfig, error) {
	var channel string
	err := c.db.QueryRowContext(ctx,
		`SELECT channel_name FROM realtime_config WHERE user_key = ?`, userKey,
	).Scan(&channel)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RealtimeConfig{}, ErrNotCached
	}
	if err != nil {
		return domain.RealtimeConfig{}, fmt.Errorf("sqlite cache: get config: %w", err)
	}
	return domain.RealtimeConfig{ChannelName: channel}, nil
}

// Put stores cfg for userKey, replacing any previous value.
func (c *SQLiteCache) Put(ctx context.Context, userKey string, cfg domain.RealtimeConfig) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO realtime_config (user_key, channel_name, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(user_key) DO UPDATE SET
	channel_name = excluded.channel_name,
	updated_at = excluded.updated_at`,
		userKey, cfg.ChannelName, c.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite cache: put config: %w", err)
	}
	return nil
}

// Delete removes the config of userKey. Deleting a missing entry is not an
// error.
func (c *SQLiteCache) Delete(ctx context.Context, userKey string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM realtime_config WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("sqlite cache: delete config: %w", err)
	}
	return nil
}

// Len returns the number of cached configs.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM realtime_config`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite cache: count configs: %w", err)
	}
	return n, nil
}
