package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatus(t *testing.T, ttl time.Duration) (*RedisStatus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStatusFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStatusRoundTrip(t *testing.T) {
	s, mr := newTestStatus(t, time.Hour)
	ctx := context.Background()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set(ctx, "abc", Status{
		Status:   "processing",
		State:    "awaiting-model",
		Start:    &start,
		Metadata: map[string]interface{}{"slide_count": 5},
	}))
	end := start.Add(3 * time.Second)
	require.NoError(t, s.Set(ctx, "abc", Status{Status: "success", State: "success", End: &end}))

	got, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "success", got.Status)
	require.NotNil(t, got.Start)
	assert.True(t, start.Equal(*got.Start))
	require.NotNil(t, got.End)
	assert.Equal(t, float64(5), got.Metadata["slide_count"])

	assert.True(t, mr.Exists("gen:abc:status"))
	assert.Equal(t, time.Hour, mr.TTL("gen:abc:status"))
}

func TestRedisStatusExpires(t *testing.T) {
	s, mr := newTestStatus(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "x", Status{Status: "error"}))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatusUnknown(t *testing.T) {
	s, _ := newTestStatus(t, 0)
	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Ping(context.Background()))
}
