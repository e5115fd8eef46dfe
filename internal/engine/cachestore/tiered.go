package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Tiered fronts a remote store with a bounded in-process LRU.
// L1 is lost on restart; the inner store survives restarts.
type Tiered struct {
	l1    *expirable.LRU[string, []byte]
	inner Store
}

// NewTiered wraps inner with an LRU of size entries, each living for ttl.
func NewTiered(inner Store, size int, ttl time.Duration) *Tiered {
	return &Tiered{
		l1:    expirable.NewLRU[string, []byte](size, nil, ttl),
		inner: inner,
	}
}

// Get tries L1, then the inner store. An inner hit populates L1.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := t.l1.Get(key); ok {
		return v, nil
	}
	v, err := t.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	t.l1.Add(key, v)
	return v, nil
}

// Set writes through to both tiers. L1 is updated even when the inner write fails.
func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	t.l1.Add(key, val)
	return t.inner.Set(ctx, key, val, ttl)
}

func (t *Tiered) Close() error { return t.inner.Close() }
