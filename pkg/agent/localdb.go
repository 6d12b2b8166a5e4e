package agent

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"instance-doctor/pkg/inspect"
)

// Cache keeps the last snapshot batch read on this host in a local sqlite
// file, so the agent can keep reporting when the inspector output is
// temporarily unreadable.
type Cache struct {
	db *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite mkdir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshot_batch(id INTEGER PRIMARY KEY CHECK (id = 1), host TEXT, digest TEXT, body TEXT, ts INTEGER)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite init schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// digest produces a stable hash of a batch to tell whether it changed.
func digest(b inspect.Batch) (string, []byte, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return "", nil, err
	}
	h := sha256.Sum256(body)
	return hex.EncodeToString(h[:]), body, nil
}

// Save replaces the cached batch and reports whether its content changed.
func (c *Cache) Save(ctx context.Context, b inspect.Batch) (bool, error) {
	sum, body, err := digest(b)
	if err != nil {
		return false, err
	}
	var prev string
	err = c.db.QueryRowContext(ctx, `SELECT digest FROM snapshot_batch WHERE id = 1`).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO snapshot_batch(id, host, digest, body, ts) VALUES(1,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET host=excluded.host, digest=excluded.digest, body=excluded.body, ts=excluded.ts`,
		b.Host, sum, string(body), time.Now().Unix())
	if err != nil {
		return false, err
	}
	return prev != sum, nil
}

// Last returns the cached batch and when it was stored.
func (c *Cache) Last(ctx context.Context) (inspect.Batch, time.Time, bool, error) {
	var body string
	var ts int64
	err := c.db.QueryRowContext(ctx, `SELECT body, ts FROM snapshot_batch WHERE id = 1`).Scan(&body, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return inspect.Batch{}, time.Time{}, false, nil
	}
	if err != nil {
		return inspect.Batch{}, time.Time{}, false, err
	}
	var b inspect.Batch
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return inspect.Batch{}, time.Time{}, false, err
	}
	return b, time.Unix(ts, 0), true, nil
}
