package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgu/html"
)

func TestCodec(t *testing.T) {
	c, err := newCodec()
	require.NoError(t, err)

	in := Entry{
		Markup: "<p>Hello</p>",
		Elements: []html.Element{
			{Tag: "p", Text: "Hello"},
			{Tag: "a", Attrs: map[string]string{"href": "/x"}, Text: "link"},
		},
		Truncated: true,
		Title:     "Hi",
		StoredAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := c.encode(in)
	require.NoError(t, err)

	out, err := c.decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.Markup, out.Markup)
	assert.Equal(t, in.Elements, out.Elements)
	assert.True(t, out.Truncated)
	assert.True(t, in.StoredAt.Equal(out.StoredAt))

	_, err = c.decode([]byte("not zstd"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

// Redis tests need a server: WEBGU_TEST_REDIS_ADDR=localhost:6379.
func testRedis(t *testing.T, capacity int) *Redis {
	t.Helper()
	addr := os.Getenv("WEBGU_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WEBGU_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	prefix := "webgu-test-" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	r, err := NewRedis(client, RedisOptions{Prefix: prefix, Capacity: capacity})
	require.NoError(t, err)
	return r
}

func TestRedisGetPut(t *testing.T) {
	ctx := context.Background()
	r := testRedis(t, 5)

	_, ok, err := r.Get(ctx, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Put(ctx, "https://example.com", entry("hello")))
	got, ok, err := r.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Markup)
	assert.Equal(t, entry("hello").Elements, got.Elements)
}

func TestRedisEviction(t *testing.T) {
	ctx := context.Background()
	r := testRedis(t, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Put(ctx, fmt.Sprintf("u%d", i), entry(fmt.Sprint(i))))
	}
	require.NoError(t, r.Put(ctx, "u3", entry("again")))

	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, gone := range []string{"u0", "u1"} {
		_, ok, err := r.Get(ctx, gone)
		require.NoError(t, err)
		assert.False(t, ok, gone)
	}
	got, ok, err := r.Get(ctx, "u3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "again", got.Markup)
}

func TestRedisDelete(t *testing.T) {
	ctx := context.Background()
	r := testRedis(t, 3)

	require.NoError(t, r.Put(ctx, "a", entry("a")))
	require.NoError(t, r.Put(ctx, "b", entry("b")))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "missing"))

	_, ok, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
