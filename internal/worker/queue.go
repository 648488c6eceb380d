package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop/TryPop when nothing is waiting.
var ErrQueueEmpty = errors.New("queue empty")

// Queue is a FIFO of JSON payloads shared between the API and the workers.
type Queue interface {
	// Pop blocks up to timeout for the next payload.
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	// TryPop returns the next payload without blocking.
	TryPop(ctx context.Context) ([]byte, error)
	Push(ctx context.Context, payload []byte) error
}

// RedisQueue is a Redis list used as a queue (RPUSH / BLPOP).
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(item) < 2 {
		return nil, ErrQueueEmpty
	}
	return []byte(item[1]), nil
}

func (q *RedisQueue) TryPop(ctx context.Context) ([]byte, error) {
	raw, err := q.rdb.LPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	return raw, err
}

func (q *RedisQueue) Push(ctx context.Context, payload []byte) error {
	return q.rdb.RPush(ctx, q.key, payload).Err()
}
