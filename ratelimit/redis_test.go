package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/videotube-server/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterWindow(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	lim := ratelimit.NewRedis(client, 2, 500*time.Millisecond, "test:")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := lim.Allow(ctx, "ip", time.Now())
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, retryAfter, err := lim.Allow(ctx, "ip", time.Now())
	require.NoError(t, err)
	require.False(t, allowed)
	require.Greater(t, retryAfter, time.Duration(0))
	require.True(t, s.Exists("test:ip"))

	s.FastForward(600 * time.Millisecond)
	allowed, _, err = lim.Allow(ctx, "ip", time.Now())
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestRedisLimiterDefaultsPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	lim := ratelimit.NewRedis(client, 5, time.Minute, "")
	_, _, err := lim.Allow(context.Background(), "10.0.0.1", time.Now())
	require.NoError(t, err)
	require.True(t, s.Exists("videotube:rl:10.0.0.1"))
}

func TestRedisLimiterUnavailable(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	s.Close()

	lim := ratelimit.NewRedis(client, 5, time.Minute, "")
	_, _, err := lim.Allow(context.Background(), "ip", time.Now())
	require.Error(t, err)
}

func TestRedisLimiterInvalidWindow(t *testing.T) {
	lim := ratelimit.NewRedis(nil, 5, 0, "")
	_, _, err := lim.Allow(context.Background(), "ip", time.Now())
	require.Error(t, err)
}
