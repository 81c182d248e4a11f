package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestClient_GetSet(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "bilemo:products:1", []byte(`{"data":[]}`), time.Minute))
	data, found, err := c.Get(ctx, "bilemo:products:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"data":[]}`, string(data))

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "bilemo:products:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_DeleteByPattern(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("bilemo:clients:%d", i), []byte("x"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "bilemo:products:1", []byte("y"), time.Minute))

	deleted, err := c.DeleteByPattern(ctx, "bilemo:clients:*")
	require.NoError(t, err)
	assert.Equal(t, 250, deleted)
	assert.Equal(t, []string{"bilemo:products:1"}, mr.Keys())
}

func TestClient_PingFailsWhenServerDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
