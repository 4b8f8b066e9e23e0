package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// putScript stores an entry and evicts the oldest keys past capacity in one
// round trip, so concurrent writers cannot interleave between the write and
// the eviction.
//
// KEYS[1] entry key, KEYS[2] order list
// ARGV[1] payload, ARGV[2] capacity, ARGV[3] ttl in ms (0 = none)
var putScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
redis.call('LREM', KEYS[2], 0, KEYS[1])
redis.call('RPUSH', KEYS[2], KEYS[1])
local evicted = 0
while redis.call('LLEN', KEYS[2]) > tonumber(ARGV[2]) do
  local old = redis.call('LPOP', KEYS[2])
  redis.call('DEL', old)
  evicted = evicted + 1
end
return evicted
`)

// RedisOptions configures a Redis cache.
type RedisOptions struct {
	Prefix   string
	Capacity int
	// TTL expires entries on the server; zero keeps them until evicted.
	TTL time.Duration
}

// Redis is a Cache shared between processes.
type Redis struct {
	client redis.UniversalClient
	opts   RedisOptions
	codec  *codec
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts RedisOptions) (*Redis, error) {
	if opts.Prefix == "" {
		opts.Prefix = "webgu:"
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &Redis{client: client, opts: opts, codec: c}, nil
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedis(client, opts)
}

func (r *Redis) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return r.opts.Prefix + "page:" + hex.EncodeToString(sum[:])
}

func (r *Redis) orderKey() string {
	return r.opts.Prefix + "order"
}

// Get returns the entry stored for url.
func (r *Redis) Get(ctx context.Context, url string) (Entry, bool, error) {
	data, err := r.client.Get(ctx, r.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	e, err := r.codec.decode(data)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put stores e for url, evicting the oldest entries past capacity.
func (r *Redis) Put(ctx context.Context, url string, e Entry) error {
	data, err := r.codec.encode(e)
	if err != nil {
		return err
	}

	keys := []string{r.key(url), r.orderKey()}
	err = putScript.Run(ctx, r.client, keys, data, r.opts.Capacity, r.opts.TTL.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for url and its place in the eviction order.
func (r *Redis) Delete(ctx context.Context, url string) error {
	key := r.key(url)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.LRem(ctx, r.orderKey(), 0, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Len returns the number of tracked entries.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, r.orderKey()).Result()
	return int(n), err
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
