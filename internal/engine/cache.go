package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_yttranslate/internal/engine/cachestore"
)

// Cache is the best-effort result cache consulted by the Translator.
// Implementations never return errors: backend failures degrade to misses.
type Cache interface {
	Get(ctx context.Context, url, lang string) (*TranslationResult, bool)
	Put(ctx context.Context, url, lang string, res *TranslationResult)
}

// cacheNamespace prefixes every key written by this service.
const cacheNamespace = "yt_translation:"

// CacheKey builds a deterministic cache key from the raw URL and target language.
func CacheKey(url, lang string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s%s:%x", cacheNamespace, lang, hash[:16]) // 32-char hex
}

// StoreCache serializes results as JSON into a cachestore.Store.
type StoreCache struct {
	store cachestore.Store
	ttl   time.Duration
	warn  rate.Sometimes
}

// NewStoreCache returns a cache writing entries with the given ttl.
func NewStoreCache(store cachestore.Store, ttl time.Duration) *StoreCache {
	return &StoreCache{
		store: store,
		ttl:   ttl,
		warn:  rate.Sometimes{First: 3, Interval: time.Minute},
	}
}

// Get returns a freshly decoded copy of the cached result.
func (c *StoreCache) Get(ctx context.Context, url, lang string) (*TranslationResult, bool) {
	key := CacheKey(url, lang)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cachestore.ErrMiss) {
			c.logFailure("get", key, err)
		}
		metrics.CacheMisses.Add(1)
		observeCache("get", "miss")
		return nil, false
	}

	var out TranslationResult
	if err := json.Unmarshal(data, &out); err != nil {
		c.logFailure("decode", key, err)
		metrics.CacheMisses.Add(1)
		observeCache("get", "corrupt")
		return nil, false
	}
	slog.Debug("cache: hit", slog.String("key", key))
	metrics.CacheHits.Add(1)
	observeCache("get", "hit")
	return &out, true
}

// Put stores res under the key for url and lang. Failures are logged and dropped.
func (c *StoreCache) Put(ctx context.Context, url, lang string, res *TranslationResult) {
	if res == nil {
		return
	}
	key := CacheKey(url, lang)
	data, err := json.Marshal(res)
	if err != nil {
		c.logFailure("encode", key, err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logFailure("set", key, err)
		observeCache("set", "error")
		return
	}
	observeCache("set", "ok")
}

func (c *StoreCache) logFailure(op, key string, err error) {
	metrics.CacheErrors.Add(1)
	c.warn.Do(func() {
		slog.Warn("cache: backend failure, continuing without cache",
			slog.String("op", op),
			slog.String("key", key),
			slog.Any("error", err))
	})
}

// NopCache never stores anything. Used when CACHE_ENABLED=false.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) (*TranslationResult, bool) { return nil, false }

func (NopCache) Put(context.Context, string, string, *TranslationResult) {}
