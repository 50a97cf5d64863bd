package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSetDelete(t *testing.T) {
	mr, kv := setupRedisKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "menu:tree")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "menu:tree", `{"groups":[]}`, time.Minute))
	v, err := kv.Get(ctx, "menu:tree")
	require.NoError(t, err)
	assert.Equal(t, `{"groups":[]}`, v)
	assert.Equal(t, time.Minute, mr.TTL("menu:tree"))

	require.NoError(t, kv.Delete(ctx, "menu:tree", "absent"))
	assert.False(t, mr.Exists("menu:tree"))
	assert.NoError(t, kv.Delete(ctx))
}

func TestRedisKV_Expiry(t *testing.T) {
	mr, kv := setupRedisKV(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, kv, "k", map[string]int{"n": 1}, time.Second))
	mr.FastForward(2 * time.Second)

	var out map[string]int
	assert.ErrorIs(t, GetJSON(ctx, kv, "k", &out), ErrMiss)
}
