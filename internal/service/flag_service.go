package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/certbible/certprep/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrCustomReasonRequired = errors.New("custom reason is required when reason is Other")
)

// FlagService queues learner reports about problematic questions.
type FlagService struct {
	sessions *SessionService
	queue    queuePusher
	now      func() time.Time
	log      zerolog.Logger
}

func NewFlagService(sessions *SessionService, queue queuePusher, log zerolog.Logger) *FlagService {
	return &FlagService{
		sessions: sessions,
		queue:    queue,
		now:      time.Now,
		log:      log.With().Str("component", "flag_service").Logger(),
	}
}

// Create records a flag for the question at req.QuestionIndex of the session.
func (s *FlagService) Create(ctx context.Context, learnerID string, req model.CreateFlagRequest) (model.QuestionFlag, error) {
	custom := strings.TrimSpace(req.CustomReason)
	if req.Reason == model.FlagOther && custom == "" {
		return model.QuestionFlag{}, ErrCustomReasonRequired
	}

	ref, err := s.sessions.QuestionAt(ctx, learnerID, req.SessionID, *req.QuestionIndex)
	if err != nil {
		return model.QuestionFlag{}, err
	}

	flag := model.QuestionFlag{
		ID:            uuid.New(),
		LearnerID:     learnerID,
		SessionID:     req.SessionID,
		QuestionIndex: *req.QuestionIndex,
		QuestionID:    ref.Question.ID,
		QuestionText:  ref.Question.Text,
		Exam:          ref.Exam,
		Reason:        req.Reason,
		CreatedAt:     s.now().UTC(),
	}
	if req.Reason == model.FlagOther {
		flag.CustomReason = custom
	}

	raw, err := json.Marshal(flag)
	if err != nil {
		return model.QuestionFlag{}, fmt.Errorf("encode flag: %w", err)
	}
	if err := s.queue.Push(ctx, raw); err != nil {
		return model.QuestionFlag{}, fmt.Errorf("enqueue flag: %w", err)
	}

	s.log.Info().
		Str("flag_id", flag.ID.String()).
		Str("session_id", flag.SessionID).
		Int("question_index", flag.QuestionIndex).
		Str("reason", string(flag.Reason)).
		Msg("Question flagged")
	return flag, nil
}
