// Package history keeps the ordered list of submitted results per learner.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Store when nothing is stored under a key.
var ErrNotFound = errors.New("history: key not found")

// Store is a key-addressable persistence surface holding one serialized
// result list per key. It has no partial-update API.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Emitter appends submitted results to a stored history list.
type Emitter struct {
	store Store
	key   string
	limit int
	log   zerolog.Logger

	results []quiz.Result
}

// NewEmitter loads the history stored under key. A missing or unreadable
// list degrades to an empty history. limit caps the list to the most recent
// results; zero or less keeps everything.
func NewEmitter(ctx context.Context, store Store, key string, limit int, log zerolog.Logger) *Emitter {
	e := &Emitter{
		store: store,
		key:   key,
		limit: limit,
		log:   log.With().Str("component", "result_emitter").Str("key", key).Logger(),
	}
	results, err := e.load(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("history unavailable, starting empty")
	}
	e.results = results
	return e
}

// load reads and decodes the stored list. A missing key is an empty history.
func (e *Emitter) load(ctx context.Context) ([]quiz.Result, error) {
	raw, err := e.store.Get(ctx, e.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var results []quiz.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return results, nil
}

// History returns a copy of the known results, oldest first.
func (e *Emitter) History() []quiz.Result {
	out := make([]quiz.Result, len(e.results))
	for i, r := range e.results {
		out[i] = r.Clone()
	}
	return out
}

// Find returns the stored result with the given ID.
func (e *Emitter) Find(id string) (quiz.Result, bool) {
	for _, r := range e.results {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return quiz.Result{}, false
}

// Emit appends r to the history and writes the full list back, last writer
// wins. Write failures are logged only; r is always returned for immediate
// display.
func (e *Emitter) Emit(ctx context.Context, r quiz.Result) quiz.Result {
	// Another writer may have appended since we loaded; prefer the stored
	// list, keep the cached one if it cannot be read.
	if latest, err := e.load(ctx); err == nil {
		e.results = latest
	} else {
		e.log.Debug().Err(err).Msg("re-read before append failed, using cached history")
	}

	e.results = append(e.results, r.Clone())
	if e.limit > 0 && len(e.results) > e.limit {
		e.results = append([]quiz.Result(nil), e.results[len(e.results)-e.limit:]...)
	}

	raw, err := json.Marshal(e.results)
	if err != nil {
		e.log.Error().Err(err).Str("result_id", r.ID).Msg("encode history failed")
		return r.Clone()
	}
	if err := e.store.Set(ctx, e.key, raw); err != nil {
		e.log.Error().Err(err).Str("result_id", r.ID).Msg("persist history failed")
	}
	return r.Clone()
}
