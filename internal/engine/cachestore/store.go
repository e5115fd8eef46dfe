// Package cachestore holds the byte-level backends behind the translation cache.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a key/value backend. Implementations must be safe for concurrent use.
// A ttl of zero means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists every supported backend name.
var Backends = []string{BackendMemory, BackendRedis, BackendSQLite, BackendPostgres}

// Options selects and configures a backend.
type Options struct {
	Backend      string
	RedisURL     string
	SQLitePath   string
	DatabaseURL  string
	L1MaxEntries int           // 0 disables the in-process L1 in front of remote backends
	L1TTL        time.Duration // L1 entry lifetime; defaults to the cache TTL
}

// Open builds the store named by opts.Backend.
// Remote and on-disk backends are fronted by an LRU when L1MaxEntries > 0.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendRedis:
		s, err = OpenRedis(ctx, opts.RedisURL)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, opts.SQLitePath)
	case BackendPostgres:
		s, err = OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("cachestore: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.L1MaxEntries > 0 {
		s = NewTiered(s, opts.L1MaxEntries, opts.L1TTL)
	}
	return s, nil
}
