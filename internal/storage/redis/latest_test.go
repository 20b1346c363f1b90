package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
)

// setupTestRedis 需要真实 Redis 实例，不可用时跳过
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping test")
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		_ = client.Close()
	})
	return client
}

func TestLatestStore_SetGet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewLatestStore(client, time.Minute)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "AA:BB:CC:DD:EE:01")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := coremodel.Sample{Address: "AA:BB:CC:DD:EE:01", Voltage: 101.5, Current: 0.25, Wattage: 25, Time: at}
	require.NoError(t, store.Set(ctx, in))

	out, ok, err := store.Get(ctx, "AA:BB:CC:DD:EE:01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Voltage, out.Voltage)
	assert.True(t, out.Time.Equal(at))

	ttl := client.TTL(ctx, latestKey(in.Address)).Val()
	assert.Greater(t, ttl, time.Duration(0))
}

func TestLatestKey(t *testing.T) {
	assert.Equal(t, "btwattch2:latest:AA:BB", latestKey("AA:BB"))
}

func TestNewClient_Disabled(t *testing.T) {
	c, err := NewClient(cfgpkg.RedisConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, c)
	assert.NoError(t, c.Close())
}

func TestOptions(t *testing.T) {
	o := options(cfgpkg.RedisConfig{Addr: "h:6379", DB: 3, PoolSize: 7, DialTimeout: time.Second})
	assert.Equal(t, "h:6379", o.Addr)
	assert.Equal(t, 3, o.DB)
	assert.Equal(t, 7, o.PoolSize)
	assert.Equal(t, time.Second, o.DialTimeout)
}
