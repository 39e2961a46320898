package caching

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func compressedJSON(t *testing.T, value any) []byte {
	bytes, err := json.Marshal(value)
	require.NoError(t, err)

	compressed, err := Deflate(bytes)
	require.NoError(t, err)

	return compressed
}

func TestDeflateInflate(t *testing.T) {
	compressed, err := Deflate([]byte(`{"phase":"idle"}`))
	assert.NoError(t, err)

	inflated, err := Inflate(compressed)
	assert.NoError(t, err)
	assert.Equal(t, `{"phase":"idle"}`, string(inflated))

	_, err = Inflate([]byte("not deflated"))
	assert.Error(t, err)
}

func TestRedisCacheStore(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(redisClient)
	value := cachedValue{Name: "state", Count: 2}

	t.Run("should store the compressed value", func(t *testing.T) {
		redisMock.ExpectSetEx("key", compressedJSON(t, value), time.Hour).SetVal("OK")

		err := cache.Store(context.TODO(), "key", value, time.Hour)
		assert.NoError(t, err)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("should return the redis error", func(t *testing.T) {
		redisMock.ExpectSetEx("key", compressedJSON(t, value), time.Hour).SetErr(assert.AnError)

		err := cache.Store(context.TODO(), "key", value, time.Hour)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("should not store values that cannot be encoded", func(t *testing.T) {
		err := cache.Store(context.TODO(), "key", make(chan int), time.Hour)
		assert.Error(t, err)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestRedisCacheFetch(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(redisClient)

	t.Run("should fetch the value", func(t *testing.T) {
		redisMock.ExpectGet("key").SetVal(string(compressedJSON(t, cachedValue{Name: "state", Count: 2})))

		value := cachedValue{}
		found, err := cache.Fetch(context.TODO(), "key", &value)

		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, cachedValue{Name: "state", Count: 2}, value)
	})

	t.Run("should handle a miss", func(t *testing.T) {
		redisMock.ExpectGet("key").SetErr(redis.Nil)

		value := cachedValue{}
		found, err := cache.Fetch(context.TODO(), "key", &value)

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should handle error", func(t *testing.T) {
		redisMock.ExpectGet("key").SetErr(assert.AnError)

		value := cachedValue{}
		found, err := cache.Fetch(context.TODO(), "key", &value)

		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, found)
	})

	t.Run("should handle a corrupted value", func(t *testing.T) {
		redisMock.ExpectGet("key").SetVal("plain text")

		value := cachedValue{}
		found, err := cache.Fetch(context.TODO(), "key", &value)

		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestRedisCacheDelete(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := NewRedisCache(redisClient)

	redisMock.ExpectDel("key").SetVal(1)

	assert.NoError(t, cache.Delete(context.TODO(), "key"))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestMemoryCache(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := New(NewMemoryEngine(func() time.Time { return now }))
	ctx := context.Background()

	assert.NoError(t, cache.Store(ctx, "short", cachedValue{Name: "short"}, time.Minute))
	assert.NoError(t, cache.Store(ctx, "long", cachedValue{Name: "long"}, time.Hour))

	value := cachedValue{}
	found, err := cache.Fetch(ctx, "short", &value)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "short", value.Name)

	now = now.Add(2 * time.Minute)

	found, err = cache.Fetch(ctx, "short", &cachedValue{})
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = cache.Fetch(ctx, "long", &value)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "long", value.Name)

	assert.NoError(t, cache.Delete(ctx, "long"))
	found, err = cache.Fetch(ctx, "long", &value)
	assert.NoError(t, err)
	assert.False(t, found)
}
