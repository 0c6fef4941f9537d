// Package postgres stores the CV document in a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/aretw0/cvpro/pkg/core"
)

// Channel is the NOTIFY channel announcing document writes.
const Channel = "cv_documents"

// Querier is the subset of *pgxpool.Pool the backend needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Config holds the configuration for the postgres backend.
type Config struct {
	Key    string // Row key. Empty uses core.DefaultStorageKey.
	Logger *slog.Logger
}

// Backend implements core.Backend on the cv_documents table.
type Backend struct {
	db     Querier
	pool   *pgxpool.Pool
	key    string
	logger *slog.Logger

	mu          sync.Mutex
	lastWritten string
}

// Connect opens a pool for dsn and returns a backend using it.
func Connect(ctx context.Context, dsn string, cfg Config) (*Backend, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b := New(pool, cfg)
	b.pool = pool
	return b, nil
}

// New creates a backend on an existing connection or pool.
func New(db Querier, cfg Config) *Backend {
	if cfg.Key == "" {
		cfg.Key = core.DefaultStorageKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{db: db, key: cfg.Key, logger: cfg.Logger}
}

// Migration represents a schema migration.
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order by Initialize. Each is idempotent.
var Migrations = []Migration{
	{
		Name: "create_cv_documents",
		SQL: `CREATE TABLE IF NOT EXISTS cv_documents (
			key        TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
}

// Initialize runs the migrations.
func (b *Backend) Initialize(ctx context.Context) error {
	for _, m := range Migrations {
		if _, err := b.db.Exec(ctx, m.SQL); err != nil {
			b.logger.Error("migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		b.logger.Debug("migration completed", "name", m.Name)
	}
	return nil
}

// Load implements core.Backend.
func (b *Backend) Load(ctx context.Context) (string, bool, error) {
	body, ok, err := b.load(ctx)
	if ok {
		b.setLastWritten(body)
	}
	return body, ok, err
}

func (b *Backend) load(ctx context.Context) (string, bool, error) {
	var body string
	err := b.db.QueryRow(ctx, `SELECT body FROM cv_documents WHERE key = $1`, b.key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load document %s: %w", b.key, err)
	}
	return body, true, nil
}

// Store upserts the document row and notifies listeners on Channel.
func (b *Backend) Store(ctx context.Context, data string) error {
	b.setLastWritten(data)

	_, err := b.db.Exec(ctx, `INSERT INTO cv_documents (key, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		b.key, data)
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", b.key, err)
	}

	if _, err := b.db.Exec(ctx, `SELECT pg_notify($1, $2)`, Channel, b.key); err != nil {
		b.logger.Warn("failed to notify document change", "error", err)
	}
	return nil
}

// Watch listens on Channel and calls onChange when another process writes
// this document. It needs a pool (see Connect) and stops when ctx is done.
func (b *Backend) Watch(ctx context.Context, onChange func(data string)) error {
	if b.pool == nil {
		return fmt.Errorf("watch requires a connection pool")
	}

	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		conn.Release()
		return fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer conn.Release()
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to wait for notification: %w", err)
			}
			if n.Payload != b.key {
				continue
			}

			data, ok, err := b.load(ctx)
			if err != nil {
				b.logger.Warn("failed to reload document after notification", "error", err)
				continue
			}
			if !ok {
				continue
			}
			if b.consumeExternal(data) {
				onChange(data)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("postgres watcher stopped", "error", err)
	}))
	return nil
}

// Close releases the pool opened by Connect.
func (b *Backend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}

// ComponentType implements introspection.Component.
func (b *Backend) ComponentType() string {
	return "postgres-backend"
}

func (b *Backend) setLastWritten(data string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastWritten = data
}

// consumeExternal reports whether data differs from the last known body and
// records it as known.
func (b *Backend) consumeExternal(data string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if data == b.lastWritten {
		return false
	}
	b.lastWritten = data
	return true
}

var (
	_ core.Backend     = (*Backend)(nil)
	_ core.Initializer = (*Backend)(nil)
	_ core.Watchable   = (*Backend)(nil)
	_ core.Closer      = (*Backend)(nil)
)
