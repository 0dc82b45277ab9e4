//go:build integration

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("RESILIENCE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RESILIENCE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(RedisOptions{Addr: addr, Prefix: fmt.Sprintf("resilience-test-%d:", time.Now().UnixNano())})
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
