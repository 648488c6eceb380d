package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBatchSize    = 50
	DefaultBatchTimeout = 2 * time.Second
	DefaultPollTimeout  = 1 * time.Second
	DefaultRetryDelay   = 5 * time.Second
	drainTimeout        = 10 * time.Second
)

// sink persists decoded queue items, in bulk or one by one.
type sink[T any] interface {
	InsertBatch(ctx context.Context, items []T) error
	Insert(ctx context.Context, item T) error
}

// batcher drains a queue into a sink in batches. A batch is written when it
// reaches size items or when every has elapsed since the last write. A
// failed bulk write falls back to per-item writes; items that still fail
// go back on the queue.
type batcher[T any] struct {
	queue      Queue
	sink       sink[T]
	size       int
	every      time.Duration
	poll       time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

func newBatcher[T any](q Queue, s sink[T], log zerolog.Logger) *batcher[T] {
	return &batcher[T]{
		queue:      q,
		sink:       s,
		size:       DefaultBatchSize,
		every:      DefaultBatchTimeout,
		poll:       DefaultPollTimeout,
		retryDelay: DefaultRetryDelay,
		log:        log,
	}
}

type entry[T any] struct {
	item T
	raw  []byte
}

func (b *batcher[T]) run(ctx context.Context) {
	b.log.Info().Msg("Worker started")

	batch := make([]entry[T], 0, b.size)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 && (len(batch) >= b.size || time.Since(lastFlush) >= b.every) {
			requeued := b.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
			if requeued > 0 {
				b.pause(ctx)
			}
		}

		select {
		case <-ctx.Done():
			b.log.Info().Int("pending", len(batch)).Msg("Shutdown requested, flushing")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			b.flush(shutdownCtx, batch)
			b.drain(shutdownCtx)
			cancel()
			b.log.Info().Msg("Worker stopped")
			return
		default:
		}

		raw, err := b.queue.Pop(ctx, b.poll)
		if err != nil {
			if !errors.Is(err, ErrQueueEmpty) && ctx.Err() == nil {
				b.log.Error().Err(err).Msg("Queue pop failed")
				b.pause(ctx)
			}
			continue
		}

		if e, ok := b.decode(raw); ok {
			batch = append(batch, e)
		}
	}
}

func (b *batcher[T]) decode(raw []byte) (entry[T], bool) {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		b.log.Error().Err(err).Msg("Invalid JSON payload, dropping")
		return entry[T]{}, false
	}
	return entry[T]{item: item, raw: raw}, true
}

// flush writes batch and returns how many items were pushed back.
func (b *batcher[T]) flush(ctx context.Context, batch []entry[T]) int {
	if len(batch) == 0 {
		return 0
	}

	items := make([]T, len(batch))
	for i, e := range batch {
		items[i] = e.item
	}
	err := b.sink.InsertBatch(ctx, items)
	if err == nil {
		b.log.Debug().Int("count", len(batch)).Msg("Batch persisted")
		return 0
	}

	b.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, using fallback")
	requeued := 0
	for _, e := range batch {
		if err := b.sink.Insert(ctx, e.item); err != nil {
			b.log.Error().Err(err).Msg("Single insert failed, requeueing")
			if err := b.queue.Push(ctx, e.raw); err != nil {
				b.log.Error().Err(err).Msg("Requeue failed, item lost")
				continue
			}
			requeued++
		}
	}
	return requeued
}

// drain empties the queue before exit. It stops at the first batch that had
// to be requeued so a failing sink cannot spin forever.
func (b *batcher[T]) drain(ctx context.Context) {
	drained := 0
	for ctx.Err() == nil {
		batch := make([]entry[T], 0, b.size)
		for len(batch) < b.size {
			raw, err := b.queue.TryPop(ctx)
			if err != nil {
				break
			}
			if e, ok := b.decode(raw); ok {
				batch = append(batch, e)
			}
		}
		if len(batch) == 0 {
			break
		}
		requeued := b.flush(ctx, batch)
		drained += len(batch) - requeued
		if requeued > 0 {
			break
		}
	}

	if drained > 0 {
		b.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func (b *batcher[T]) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(b.retryDelay):
	}
}
