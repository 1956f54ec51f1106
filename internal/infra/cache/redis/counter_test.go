package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live redis; set TEST_REDIS_ADDR to run.
func TestCounterIncrement(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewCounter(rdb, 0)
	key := "session:" + uuid.NewString()
	defer rdb.Del(ctx, keyPrefix+key)

	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Increment(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Decrement(ctx, key))
	require.NoError(t, c.Decrement(ctx, key))
	n, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Check(ctx))
}
