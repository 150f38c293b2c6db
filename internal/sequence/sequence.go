// Package sequence hands out protocol sequence numbers. A number is never
// handed out twice by the same counter, even to concurrent callers.
package sequence

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Counter allocates monotonically increasing sequence numbers
type Counter interface {
	// Next returns the next unused number, starting at 1
	Next(ctx context.Context) (int64, error)
	// Floor guarantees that subsequent Next calls return values above n
	Floor(ctx context.Context, n int64) error
}

// MemoryCounter is a process-local counter
type MemoryCounter struct {
	mu   sync.Mutex
	last int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

func (c *MemoryCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last, nil
}

func (c *MemoryCounter) Floor(ctx context.Context, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.last {
		c.last = n
	}
	return nil
}

// raiseTo sets KEYS[1] to ARGV[1] only when the stored value is lower
var raiseTo = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if cur < floor then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return cur
`)

// RedisCounter shares one sequence across every process using the same key
type RedisCounter struct {
	rdb *redis.Client
	key string
}

// NewRedisCounter creates a counter stored at key (default "seq:protocol")
func NewRedisCounter(rdb *redis.Client, key string) *RedisCounter {
	if key == "" {
		key = "seq:protocol"
	}
	return &RedisCounter{rdb: rdb, key: key}
}

func (c *RedisCounter) Next(ctx context.Context) (int64, error) {
	seq, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return seq, nil
}

func (c *RedisCounter) Floor(ctx context.Context, n int64) error {
	if err := raiseTo.Run(ctx, c.rdb, []string{c.key}, n).Err(); err != nil {
		return fmt.Errorf("failed to raise sequence floor: %w", err)
	}
	return nil
}
