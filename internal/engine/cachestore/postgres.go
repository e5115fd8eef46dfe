package cachestore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// pgxIface is the subset of *pgxpool.Pool used by Postgres.
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres stores entries in a shared table with per-row expiry.
type Postgres struct {
	db pgxIface
}

// OpenPostgres creates a pgx pool and runs schema migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("cachestore: DATABASE_URL is required for the postgres backend")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("cachestore: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("cachestore: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cachestore: ping postgres: %w", err)
	}

	s := NewPostgres(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cachestore: run migrations: %w", err)
	}
	slog.Info("cache: postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

// NewPostgres wraps an existing pool (or a mock in tests).
func NewPostgres(db pgxIface) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies the embedded schema files in name order.
func (s *Postgres) Migrate(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schema/" + e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if _, err := s.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", e.Name(), err)
		}
	}
	return nil
}

const (
	pgGetSQL = `SELECT payload FROM yt_translation_cache
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`
	pgSetSQL = `INSERT INTO yt_translation_cache (key, payload, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`
)

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, pgGetSQL, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get: %w", err)
	}
	return payload, nil
}

func (s *Postgres) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl).UTC()
		expiresAt = &t
	}
	if _, err := s.db.Exec(ctx, pgSetSQL, key, val, expiresAt); err != nil {
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}
