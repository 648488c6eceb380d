package service

import (
	"context"
	"fmt"

	"github.com/certbible/certprep/internal/chat"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

type asker interface {
	Ask(ctx context.Context, qc chat.Context, history []chat.Message, userMessage string) (string, error)
}

// ChatService answers learner questions about a specific exam question.
// It only reads session state.
type ChatService struct {
	client   asker
	sessions *SessionService
	results  *ResultService
	log      zerolog.Logger
}

func NewChatService(client asker, sessions *SessionService, results *ResultService, log zerolog.Logger) *ChatService {
	return &ChatService{
		client:   client,
		sessions: sessions,
		results:  results,
		log:      log.With().Str("component", "chat_service").Logger(),
	}
}

// Ask resolves the question the learner is asking about and forwards the
// conversation to the chat API.
func (s *ChatService) Ask(ctx context.Context, learnerID string, req model.ChatRequest) (model.ChatResponse, error) {
	qc, err := s.resolve(ctx, learnerID, req)
	if err != nil {
		return model.ChatResponse{}, err
	}

	history := make([]chat.Message, len(req.History))
	for i, m := range req.History {
		history[i] = chat.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := s.client.Ask(ctx, qc, history, req.Message)
	if err != nil {
		s.log.Warn().Err(err).Str("learner_id", learnerID).Msg("Chat request failed")
		return model.ChatResponse{}, fmt.Errorf("ask tutor: %w", err)
	}
	return model.ChatResponse{Reply: reply}, nil
}

func (s *ChatService) resolve(ctx context.Context, learnerID string, req model.ChatRequest) (chat.Context, error) {
	idx := *req.QuestionIndex

	if req.SessionID != "" {
		ref, err := s.sessions.QuestionAt(ctx, learnerID, req.SessionID, idx)
		if err != nil {
			return chat.Context{}, err
		}
		return chat.Context{Question: ref.Question, Selected: ref.Selected}, nil
	}

	r, err := s.results.Find(ctx, learnerID, req.ResultID)
	if err != nil {
		return chat.Context{}, err
	}
	if idx >= len(r.Questions) {
		return chat.Context{}, quiz.ErrQuestionOutOfRange
	}
	return chat.Context{Question: r.Questions[idx], Selected: r.Answers[idx]}, nil
}
