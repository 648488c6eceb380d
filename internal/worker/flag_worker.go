package worker

import (
	"context"

	"github.com/certbible/certprep/internal/model"
	"github.com/rs/zerolog"
)

// FlagWorker consumes persist_flags_queue and stores question flags.
type FlagWorker struct {
	b *batcher[model.QuestionFlag]
}

func NewFlagWorker(repo sink[model.QuestionFlag], queue Queue, log zerolog.Logger) *FlagWorker {
	b := newBatcher(queue, repo, log.With().Str("component", "flag_worker").Logger())
	// Flags trickle in; small batches keep them visible quickly.
	b.size = 20
	return &FlagWorker{b: b}
}

func (w *FlagWorker) Start(ctx context.Context) { w.b.run(ctx) }
