package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Client wraps a single-writer SQLite pool.
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens or creates the database at path and applies pragmas.
func NewClient(path string, opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		BusyTimeout: 5 * time.Second,
		WAL:         true,
		ForeignKeys: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: creating dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection serialises writers and keeps an in-memory db alive.
	db.SetMaxOpenConns(1)

	// modernc.org/sqlite takes pragmas as statements.
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
	}
	if cfg.WAL && path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if cfg.ForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", p, err)
		}
	}

	return &Client{db: db, path: path}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Path is the file the client was opened on.
func (c *Client) Path() string {
	return c.path
}

// Health pings the database.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// InitSchema runs idempotent DDL.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Tx runs fn in a transaction, committing on nil and rolling back otherwise.
func (c *Client) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
