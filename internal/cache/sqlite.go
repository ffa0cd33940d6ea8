package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLiteStore backs the cache with the embedded SQLite database. Expiry is
// lazy: expired rows are treated as misses on read and swept opportunistically
// on write.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database. The schema is managed by the
// database package's migrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM locations WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if time.Now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	// Sweep a handful of expired rows so the table does not grow unbounded.
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM locations WHERE key IN
		 (SELECT key FROM locations WHERE expires_at < ? LIMIT 100)`, now.Unix())
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM locations WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close implements Store. The underlying database is owned by the caller and
// closed in main, so this is a no-op.
func (s *SQLiteStore) Close() error {
	return nil
}
