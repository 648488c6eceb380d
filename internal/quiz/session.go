package quiz

import (
	"time"

	"github.com/google/uuid"
)

// State enumerates session states.
type State string

const (
	StateActive    State = "ACTIVE"
	StateCompleted State = "COMPLETED"
)

// Session tracks one attempt at a question set. It is not safe for
// concurrent use; callers serialize access per session.
type Session struct {
	questions []Question
	answers   map[int]Label
	current   int
	state     State
	result    *Result

	exam   string
	domain string
	now    func() time.Time
	newID  func() string
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used to stamp results.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithIDFunc overrides how result IDs are generated.
func WithIDFunc(f func() string) Option { return func(s *Session) { s.newID = f } }

// WithExam tags the session (and its result) with the exam and domain it was drawn from.
func WithExam(exam, domain string) Option {
	return func(s *Session) {
		s.exam = exam
		s.domain = domain
	}
}

// Start begins a session over a copy of questions.
func Start(questions []Question, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrInvalidStart
	}
	s := &Session{
		questions: CloneQuestions(questions),
		answers:   make(map[int]Label),
		state:     StateActive,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// CurrentIndex returns the 0-based position of the displayed question.
func (s *Session) CurrentIndex() int { return s.current }

// State returns the session state.
func (s *Session) State() State { return s.state }

// Completed reports whether the session has been submitted.
func (s *Session) Completed() bool { return s.state == StateCompleted }

// Exam returns the exam code the session was tagged with.
func (s *Session) Exam() string { return s.exam }

// Domain returns the exam domain the session was tagged with.
func (s *Session) Domain() string { return s.domain }

// Current returns a copy of the displayed question.
func (s *Session) Current() Question { return s.questions[s.current].Clone() }

// Question returns a copy of the question at index i.
func (s *Session) Question(i int) (Question, error) {
	if i < 0 || i >= len(s.questions) {
		return Question{}, ErrQuestionOutOfRange
	}
	return s.questions[i].Clone(), nil
}

// Answer returns the recorded answer for question i.
func (s *Session) Answer(i int) (Label, bool) {
	l, ok := s.answers[i]
	return l, ok
}

// Answers returns a copy of the recorded answers.
func (s *Session) Answers() map[int]Label { return cloneAnswers(s.answers) }

// AnsweredCount returns how many questions have an answer.
func (s *Session) AnsweredCount() int { return len(s.answers) }

// SelectAnswer records label for the current question, replacing any earlier
// choice. It never moves the current index.
func (s *Session) SelectAnswer(label string) error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	l, err := ParseLabel(label)
	if err != nil {
		return err
	}
	s.answers[s.current] = l
	return nil
}

// ClearAnswer removes the answer recorded for the current question.
func (s *Session) ClearAnswer() error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	delete(s.answers, s.current)
	return nil
}

// GoTo moves to question i, clamped into range.
func (s *Session) GoTo(i int) error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	switch {
	case i < 0:
		i = 0
	case i > len(s.questions)-1:
		i = len(s.questions) - 1
	}
	s.current = i
	return nil
}

// Next advances one question. On the last question it does nothing.
func (s *Session) Next() error { return s.GoTo(s.current + 1) }

// Previous goes back one question. On the first question it does nothing.
func (s *Session) Previous() error { return s.GoTo(s.current - 1) }

// Submit completes the session and returns its result. Unanswered questions
// score as incorrect.
func (s *Session) Submit() (Result, error) {
	if s.Completed() {
		return Result{}, ErrSessionCompleted
	}
	r, err := NewResult(s.newID(), s.now(), s.questions, s.answers)
	if err != nil {
		return Result{}, err
	}
	r.Exam = s.exam
	r.Domain = s.domain

	s.state = StateCompleted
	s.result = &r
	return r.Clone(), nil
}

// Result returns a copy of the result once the session is completed.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return s.result.Clone(), true
}

// Check grades the current answer without changing state, for practice
// feedback before submission.
func (s *Session) Check() Feedback {
	return Check(s.questions[s.current], s.answers[s.current])
}
