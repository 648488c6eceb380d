package worker

import (
	"context"

	"github.com/certbible/certprep/internal/model"
	"github.com/rs/zerolog"
)

// ArchiveWorker consumes archive_results_queue and writes submitted results
// into the PostgreSQL exam_results archive.
type ArchiveWorker struct {
	b *batcher[model.ArchiveJob]
}

func NewArchiveWorker(repo sink[model.ArchiveJob], queue Queue, log zerolog.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		b: newBatcher(queue, repo, log.With().Str("component", "archive_worker").Logger()),
	}
}

// Start runs until ctx is cancelled, then flushes and drains. Call in a goroutine.
func (w *ArchiveWorker) Start(ctx context.Context) { w.b.run(ctx) }
