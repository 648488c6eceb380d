package service

import (
	"context"
	"errors"

	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/history"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrResultNotFound     = errors.New("result not found")
	ErrArchiveUnavailable = errors.New("result archive is not configured")
)

type archiveLister interface {
	ListByLearner(ctx context.Context, learnerID string, q model.ArchiveQuery) ([]model.ArchivedResult, int, error)
}

// ResultService reads and appends learner histories.
type ResultService struct {
	store   history.Store
	limit   int
	archive archiveLister
	log     zerolog.Logger
}

// NewResultService creates a ResultService. archive may be nil when no
// PostgreSQL archive is configured.
func NewResultService(store history.Store, limit int, archive archiveLister, log zerolog.Logger) *ResultService {
	return &ResultService{
		store:   store,
		limit:   limit,
		archive: archive,
		log:     log.With().Str("component", "result_service").Logger(),
	}
}

// Emitter opens the learner's history. Each call re-reads the store.
func (s *ResultService) Emitter(ctx context.Context, learnerID string) *history.Emitter {
	return history.NewEmitter(ctx, s.store, config.CacheKey.LearnerResultsKey(learnerID), s.limit, s.log)
}

// History returns the learner's results, oldest first.
func (s *ResultService) History(ctx context.Context, learnerID string) []quiz.Result {
	return s.Emitter(ctx, learnerID).History()
}

// Find returns one stored result.
func (s *ResultService) Find(ctx context.Context, learnerID, resultID string) (quiz.Result, error) {
	r, ok := s.Emitter(ctx, learnerID).Find(resultID)
	if !ok {
		return quiz.Result{}, ErrResultNotFound
	}
	return r, nil
}

// Review expands a stored result into per-question markers.
func (s *ResultService) Review(ctx context.Context, learnerID, resultID string) (model.SubmitResponse, error) {
	r, err := s.Find(ctx, learnerID, resultID)
	if err != nil {
		return model.SubmitResponse{}, err
	}
	return model.SubmitResponse{Result: model.Summarize(r), Review: quiz.Review(r)}, nil
}

// Archive pages the learner's archived results.
func (s *ResultService) Archive(ctx context.Context, learnerID string, q model.ArchiveQuery) ([]model.ArchivedResult, int, error) {
	if s.archive == nil {
		return nil, 0, ErrArchiveUnavailable
	}
	q.Normalize()
	return s.archive.ListByLearner(ctx, learnerID, q)
}
