package cachestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Get/Set contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), time.Hour))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	require.NoError(t, s.Set(ctx, "k", []byte("v2"), time.Hour))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	exerciseStore(t, s)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryIgnoresTTL(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestMemoryCopiesInput(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	got, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func newMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func TestRedis(t *testing.T) {
	mr := newMiniredis(t)
	s, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisTTL(t *testing.T) {
	mr := newMiniredis(t)
	s := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisErrorIsNotMiss(t *testing.T) {
	mr := newMiniredis(t)
	s := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer s.Close()
	mr.SetError("ERR backend down")

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
}

func TestOpenRedisRequiresURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "")
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache", "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteExpiry(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)

	got, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestTiered(t *testing.T) {
	inner := NewMemory()
	s := NewTiered(inner, 8, time.Hour)
	exerciseStore(t, s)
}

func TestTieredPopulatesL1FromInner(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Set(ctx, "k", []byte("v"), 0))

	s := NewTiered(inner, 8, time.Hour)
	_, ok := s.l1.Get("k")
	assert.False(t, ok)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	cached, ok := s.l1.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(cached))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	mr := newMiniredis(t)
	s, err = Open(ctx, Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr(), L1MaxEntries: 10, L1TTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &Tiered{}, s)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}
