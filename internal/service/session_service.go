package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/certbible/certprep/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

// QuestionSource fetches question sets, normally the provider client.
type QuestionSource interface {
	Fetch(ctx context.Context, req provider.Request) ([]quiz.Question, error)
}

type snapshotStore interface {
	Save(ctx context.Context, sessionID string, snap repository.SessionSnapshot) error
	Load(ctx context.Context, sessionID string) (repository.SessionSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type queuePusher interface {
	Push(ctx context.Context, payload []byte) error
}

// liveSession is one registry entry. mu serializes every operation on the
// wrapped session. closed is set once the session is abandoned; holders of a
// stale pointer must treat it as gone.
type liveSession struct {
	mu        sync.Mutex
	id        string
	learnerID string
	session   *quiz.Session
	lastUsed  time.Time
	closed    bool
}

// QuestionRef is a question of a session together with the learner's
// current answer to it.
type QuestionRef struct {
	Question quiz.Question
	Selected quiz.Label
	Exam     string
}

// SessionService owns the live exam sessions.
type SessionService struct {
	source    QuestionSource
	catalog   *catalog.Catalog
	results   *ResultService
	snapshots snapshotStore
	archive   queuePusher
	idle      time.Duration
	now       func() time.Time
	log       zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

// SessionOption configures optional SessionService collaborators.
type SessionOption func(*SessionService)

// WithSnapshots enables snapshot persistence so sessions survive restarts.
func WithSnapshots(store snapshotStore) SessionOption {
	return func(s *SessionService) { s.snapshots = store }
}

// WithArchiveQueue pushes every emitted result onto the archive queue.
func WithArchiveQueue(q queuePusher) SessionOption {
	return func(s *SessionService) { s.archive = q }
}

// WithIdleTimeout sets how long an untouched session stays in memory.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *SessionService) { s.idle = d }
}

// NewSessionService creates a SessionService.
func NewSessionService(source QuestionSource, cat *catalog.Catalog, results *ResultService, log zerolog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		source:   source,
		catalog:  cat,
		results:  results,
		idle:     2 * time.Hour,
		now:      time.Now,
		log:      log.With().Str("component", "session_service").Logger(),
		sessions: make(map[string]*liveSession),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────────────────────────────────

// Start creates a session from inline questions or from the provider.
func (s *SessionService) Start(ctx context.Context, learnerID string, req model.StartSessionRequest) (model.SessionView, error) {
	questions, exam, domain, err := s.loadQuestions(ctx, req)
	if err != nil {
		return model.SessionView{}, err
	}

	sess, err := quiz.Start(questions, quiz.WithExam(exam, domain), quiz.WithClock(s.now))
	if err != nil {
		return model.SessionView{}, err
	}

	ls := &liveSession{
		id:        uuid.NewString(),
		learnerID: learnerID,
		session:   sess,
		lastUsed:  s.now(),
	}
	s.saveSnapshot(ctx, ls)

	s.mu.Lock()
	s.sessions[ls.id] = ls
	s.mu.Unlock()

	s.log.Info().
		Str("session_id", ls.id).
		Str("learner_id", learnerID).
		Str("exam", exam).
		Str("domain", domain).
		Int("questions", sess.Len()).
		Msg("Session started")

	return s.view(ls), nil
}

func (s *SessionService) loadQuestions(ctx context.Context, req model.StartSessionRequest) ([]quiz.Question, string, string, error) {
	if len(req.Questions) > 0 {
		qs, err := quiz.Load(req.Questions)
		return qs, req.Exam, req.Domain, err
	}

	exam, err := s.catalog.Resolve(req.Exam, req.Domain)
	if err != nil {
		return nil, "", "", err
	}
	count := req.Count
	if count == 0 && req.Domain == "" {
		count = exam.PracticeCount
	}

	qs, err := s.source.Fetch(ctx, provider.Request{Exam: exam.Code, Domain: req.Domain, Count: count})
	if err != nil {
		return nil, "", "", fmt.Errorf("fetch %s questions: %w", exam.Code, err)
	}
	return qs, exam.Code, req.Domain, nil
}

// Abandon drops a session without recording a result.
func (s *SessionService) Abandon(ctx context.Context, learnerID, sessionID string) error {
	ls, err := s.lookup(ctx, learnerID, sessionID)
	if err != nil {
		return err
	}

	// Wait for in-flight transitions so none of them can re-save the
	// snapshot after it is deleted.
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return ErrSessionNotFound
	}
	ls.closed = true

	s.mu.Lock()
	if s.sessions[ls.id] == ls {
		delete(s.sessions, ls.id)
	}
	s.mu.Unlock()
	s.deleteSnapshot(ctx, ls.id)

	s.log.Info().Str("session_id", ls.id).Msg("Session abandoned")
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Transitions
// ────────────────────────────────────────────────────────────────────────────

// View returns the current state of a session.
func (s *SessionService) View(ctx context.Context, learnerID, sessionID string) (model.SessionView, error) {
	var v model.SessionView
	err := s.with(ctx, learnerID, sessionID, false, func(ls *liveSession) error {
		v = s.view(ls)
		return nil
	})
	return v, err
}

// Answer selects (or clears) the answer for the current question.
func (s *SessionService) Answer(ctx context.Context, learnerID, sessionID string, req model.AnswerRequest) (model.SessionView, error) {
	return s.transition(ctx, learnerID, sessionID, func(sess *quiz.Session) error {
		if req.Clear {
			return sess.ClearAnswer()
		}
		return sess.SelectAnswer(req.Answer)
	})
}

// Navigate moves the current question.
func (s *SessionService) Navigate(ctx context.Context, learnerID, sessionID string, req model.NavigateRequest) (model.SessionView, error) {
	return s.transition(ctx, learnerID, sessionID, func(sess *quiz.Session) error {
		switch req.Action {
		case model.NavigateNext:
			return sess.Next()
		case model.NavigatePrevious:
			return sess.Previous()
		case model.NavigateGoTo:
			if req.Index == nil {
				return quiz.ErrQuestionOutOfRange
			}
			return sess.GoTo(*req.Index)
		default:
			return fmt.Errorf("unknown navigate action %q", req.Action)
		}
	})
}

// Check grades the current answer without changing the session.
func (s *SessionService) Check(ctx context.Context, learnerID, sessionID string) (model.CheckResponse, error) {
	var out model.CheckResponse
	err := s.with(ctx, learnerID, sessionID, false, func(ls *liveSession) error {
		out = model.CheckResponse{Index: ls.session.CurrentIndex(), Feedback: ls.session.Check()}
		return nil
	})
	return out, err
}

// Submit completes the session, records the result in the learner's history
// and queues it for archiving.
func (s *SessionService) Submit(ctx context.Context, learnerID, sessionID string) (model.SubmitResponse, error) {
	var out model.SubmitResponse
	err := s.with(ctx, learnerID, sessionID, false, func(ls *liveSession) error {
		r, err := ls.session.Submit()
		if err != nil {
			return err
		}

		r = s.results.Emitter(ctx, learnerID).Emit(ctx, r)
		s.queueArchive(ctx, ls, r)
		s.deleteSnapshot(ctx, ls.id)

		s.log.Info().
			Str("session_id", ls.id).
			Str("result_id", r.ID).
			Float64("score", r.Score).
			Msg("Session submitted")

		out = model.SubmitResponse{Result: model.Summarize(r), Review: quiz.Review(r)}
		return nil
	})
	return out, err
}

// QuestionAt returns question index of a session with the learner's answer.
// Completed sessions still answer while they remain in memory.
func (s *SessionService) QuestionAt(ctx context.Context, learnerID, sessionID string, index int) (QuestionRef, error) {
	var ref QuestionRef
	err := s.with(ctx, learnerID, sessionID, false, func(ls *liveSession) error {
		q, err := ls.session.Question(index)
		if err != nil {
			return err
		}
		sel, _ := ls.session.Answer(index)
		ref = QuestionRef{Question: q, Selected: sel, Exam: ls.session.Exam()}
		return nil
	})
	return ref, err
}

func (s *SessionService) transition(ctx context.Context, learnerID, sessionID string, fn func(*quiz.Session) error) (model.SessionView, error) {
	var v model.SessionView
	err := s.with(ctx, learnerID, sessionID, true, func(ls *liveSession) error {
		if err := fn(ls.session); err != nil {
			return err
		}
		v = s.view(ls)
		return nil
	})
	return v, err
}

// with runs fn while holding the session's lock. When persist is set and
// fn succeeds, the new state is snapshotted.
func (s *SessionService) with(ctx context.Context, learnerID, sessionID string, persist bool, fn func(*liveSession) error) error {
	ls, err := s.lookup(ctx, learnerID, sessionID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return ErrSessionNotFound
	}
	ls.lastUsed = s.now()

	if err := fn(ls); err != nil {
		return err
	}
	if persist {
		s.saveSnapshot(ctx, ls)
	}
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Registry
// ────────────────────────────────────────────────────────────────────────────

// lookup finds a session in memory, rehydrating it from its snapshot when
// the process has restarted. Sessions of other learners are reported as
// missing.
func (s *SessionService) lookup(ctx context.Context, learnerID, sessionID string) (*liveSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	ls, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		if ls.learnerID != learnerID {
			return nil, ErrSessionNotFound
		}
		return ls, nil
	}

	if s.snapshots == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := s.snapshots.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrSnapshotNotFound) {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Snapshot load failed")
		}
		return nil, ErrSessionNotFound
	}
	if snap.LearnerID != learnerID {
		return nil, ErrSessionNotFound
	}
	sess, err := quiz.Restore(snap.Session, quiz.WithClock(s.now))
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Snapshot unusable")
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing, nil
	}
	ls = &liveSession{id: sessionID, learnerID: learnerID, session: sess, lastUsed: s.now()}
	s.sessions[sessionID] = ls
	s.log.Info().Str("session_id", sessionID).Msg("Session restored from snapshot")
	return ls, nil
}

// RunJanitor evicts sessions idle for longer than the idle timeout until
// ctx is cancelled. Evicted active sessions keep their snapshot, so they
// can still be resumed.
func (s *SessionService) RunJanitor(ctx context.Context) {
	interval := s.idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(); n > 0 {
				s.log.Info().Int("evicted", n).Msg("Idle sessions evicted")
			}
		}
	}
}

func (s *SessionService) evictIdle() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, ls := range s.sessions {
		if !ls.mu.TryLock() {
			continue
		}
		idle := ls.lastUsed.Before(cutoff)
		ls.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Active returns how many sessions are held in memory.
func (s *SessionService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ────────────────────────────────────────────────────────────────────────────
// Side effects (best-effort)
// ────────────────────────────────────────────────────────────────────────────

func (s *SessionService) saveSnapshot(ctx context.Context, ls *liveSession) {
	if s.snapshots == nil || ls.closed || ls.session.Completed() {
		return
	}
	snap := repository.SessionSnapshot{LearnerID: ls.learnerID, Session: ls.session.Snapshot()}
	if err := s.snapshots.Save(ctx, ls.id, snap); err != nil {
		s.log.Warn().Err(err).Str("session_id", ls.id).Msg("Snapshot save failed")
	}
}

func (s *SessionService) deleteSnapshot(ctx context.Context, sessionID string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("Snapshot delete failed")
	}
}

func (s *SessionService) queueArchive(ctx context.Context, ls *liveSession, r quiz.Result) {
	if s.archive == nil {
		return
	}
	raw, err := json.Marshal(model.ArchiveJob{
		LearnerID: ls.learnerID,
		SessionID: ls.id,
		Result:    model.Summarize(r),
	})
	if err == nil {
		err = s.archive.Push(ctx, raw)
	}
	if err != nil {
		s.log.Error().Err(err).Str("result_id", r.ID).Msg("Archive enqueue failed")
	}
}

func (s *SessionService) view(ls *liveSession) model.SessionView {
	sess := ls.session
	v := model.SessionView{
		SessionID:     ls.id,
		Exam:          sess.Exam(),
		Domain:        sess.Domain(),
		State:         sess.State(),
		CurrentIndex:  sess.CurrentIndex(),
		Total:         sess.Len(),
		AnsweredCount: sess.AnsweredCount(),
		Answers:       sess.Answers(),
		Question:      model.ViewQuestion(sess.CurrentIndex(), sess.Current()),
	}
	if r, ok := sess.Result(); ok {
		summary := model.Summarize(r)
		v.Result = &summary
	}
	return v
}
