package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SignalBoard/internal/model"
)

// SQLite keeps cached bars in a local database file so the cache survives
// restarts.
type SQLite struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLite opens (or creates) the SQLite database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite cache: path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite bar cache opened", "path", dbPath)
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bar_cache (
			cache_key  TEXT PRIMARY KEY,
			payload    BLOB    NOT NULL,
			bar_count  INTEGER NOT NULL,
			stored_at  INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bar_cache_expires ON bar_cache(expires_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]model.Bar, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM bar_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query bar cache: %w", err)
	}
	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM bar_cache WHERE cache_key = ?`, key); err != nil {
			slog.Warn("evict expired cache entry", "key", key, "error", err)
		}
		return nil, false, nil
	}
	bars, err := decodeBars(payload)
	if err != nil {
		return nil, false, err
	}
	return bars, true, nil
}

func (s *SQLite) Put(ctx context.Context, key string, bars []model.Bar, ttl time.Duration) error {
	payload, err := encodeBars(bars)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO bar_cache
		(cache_key, payload, bar_count, stored_at, expires_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			bar_count = excluded.bar_count,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at`,
		key, payload, len(bars), now.Unix(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("store bar cache: %w", err)
	}
	return nil
}

// Purge removes expired rows and returns how many were deleted.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bar_cache WHERE expires_at > 0 AND expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge bar cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Close() error {
	slog.Info("closing sqlite bar cache")
	return s.db.Close()
}
