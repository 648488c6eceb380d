package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/chat"
	"github.com/certbible/certprep/internal/history"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/certbible/certprep/internal/repository"
	"github.com/rs/zerolog"
)

const inlineQuestions = `[
	{"question-text":"Q1","option-a":"a","option-b":"b","option-c":"c","option-d":"d","correct answer":"A","explanation-b":"B is wrong"},
	{"question-text":"Q2","option-a":"a","option-b":"b","option-c":"c","option-d":"d","correct answer":"B"},
	{"question-text":"Q3","option-a":"a","option-b":"b","option-c":"c","option-d":"d","correct answer":"C"},
	{"question-text":"Q4","option-a":"a","option-b":"b","option-c":"c","option-d":"d","correct answer":"D"}
]`

type fakeSource struct {
	got []provider.Request
	qs  []quiz.Question
	err error
}

func (f *fakeSource) Fetch(_ context.Context, req provider.Request) ([]quiz.Question, error) {
	f.got = append(f.got, req)
	return f.qs, f.err
}

type memSnapshots struct {
	mu    sync.Mutex
	snaps map[string]repository.SessionSnapshot
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snaps: make(map[string]repository.SessionSnapshot)}
}

func (m *memSnapshots) Save(_ context.Context, id string, snap repository.SessionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Round-trip through JSON like the Redis repository does.
	raw, _ := json.Marshal(snap)
	var clone repository.SessionSnapshot
	_ = json.Unmarshal(raw, &clone)
	m.snaps[id] = clone
	return nil
}

func (m *memSnapshots) Load(_ context.Context, id string) (repository.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return repository.SessionSnapshot{}, repository.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memSnapshots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

type memPusher struct {
	mu    sync.Mutex
	items [][]byte
}

func (p *memPusher) Push(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, payload)
	return nil
}

type fixture struct {
	sessions  *SessionService
	results   *ResultService
	source    *fakeSource
	snapshots *memSnapshots
	archive   *memPusher
	store     *history.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		source:    &fakeSource{},
		snapshots: newMemSnapshots(),
		archive:   &memPusher{},
		store:     history.NewMemoryStore(),
	}
	f.results = NewResultService(f.store, 0, nil, zerolog.Nop())
	f.sessions = NewSessionService(f.source, cat, f.results, zerolog.Nop(),
		WithSnapshots(f.snapshots),
		WithArchiveQueue(f.archive),
	)
	return f
}

func (f *fixture) startInline(t *testing.T, learner string) model.SessionView {
	t.Helper()
	v, err := f.sessions.Start(context.Background(), learner, model.StartSessionRequest{
		Exam:      "Net09",
		Questions: json.RawMessage(inlineQuestions),
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSessionService_FullAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")

	if v.Total != 4 || v.CurrentIndex != 0 || v.State != quiz.StateActive {
		t.Fatalf("start view = %+v", v)
	}

	answer := func(label string) {
		t.Helper()
		if _, err := f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: label}); err != nil {
			t.Fatal(err)
		}
	}
	next := func() {
		t.Helper()
		if _, err := f.sessions.Navigate(ctx, "ana", v.SessionID, model.NavigateRequest{Action: model.NavigateNext}); err != nil {
			t.Fatal(err)
		}
	}

	answer("A")
	next()
	answer("b")
	next()
	answer("A")

	out, err := f.sessions.Submit(ctx, "ana", v.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Score != 50 || out.Result.Exam != "Net09" || len(out.Review) != 4 {
		t.Fatalf("submit = %+v", out)
	}
	if out.Review[3].Selected != "" || out.Review[3].Correct {
		t.Errorf("unanswered review item = %+v", out.Review[3])
	}

	h := f.results.History(ctx, "ana")
	if len(h) != 1 || h[0].ID != out.Result.ID {
		t.Fatalf("history = %+v", h)
	}
	if len(f.archive.items) != 1 {
		t.Fatalf("archive queue = %d items", len(f.archive.items))
	}
	var job model.ArchiveJob
	_ = json.Unmarshal(f.archive.items[0], &job)
	if job.LearnerID != "ana" || job.SessionID != v.SessionID || job.Result.CorrectCount != 2 {
		t.Errorf("archive job = %+v", job)
	}
	if _, err := f.snapshots.Load(ctx, v.SessionID); !errors.Is(err, repository.ErrSnapshotNotFound) {
		t.Error("snapshot should be removed after submission")
	}

	final, err := f.sessions.View(ctx, "ana", v.SessionID)
	if err != nil || final.State != quiz.StateCompleted || final.Result == nil {
		t.Fatalf("completed view = %+v, %v", final, err)
	}
}

func TestSessionService_CompletedIsReadOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")
	if _, err := f.sessions.Submit(ctx, "ana", v.SessionID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.sessions.Submit(ctx, "ana", v.SessionID); !errors.Is(err, quiz.ErrSessionCompleted) {
		t.Errorf("second submit err = %v", err)
	}
	if _, err := f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "A"}); !errors.Is(err, quiz.ErrSessionCompleted) {
		t.Errorf("answer err = %v", err)
	}
	if got := len(f.results.History(ctx, "ana")); got != 1 {
		t.Errorf("history len = %d", got)
	}
}

func TestSessionService_InvalidLabelAndGoTo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")

	if _, err := f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "E"}); !errors.Is(err, quiz.ErrInvalidLabel) {
		t.Fatalf("err = %v", err)
	}

	far := 99
	got, err := f.sessions.Navigate(ctx, "ana", v.SessionID, model.NavigateRequest{Action: model.NavigateGoTo, Index: &far})
	if err != nil || got.CurrentIndex != 3 {
		t.Fatalf("goto = %+v, %v", got, err)
	}
	if got.AnsweredCount != 0 {
		t.Errorf("invalid label left an answer: %+v", got.Answers)
	}
}

func TestSessionService_Check(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")

	fb, err := f.sessions.Check(ctx, "ana", v.SessionID)
	if err != nil || fb.Answered {
		t.Fatalf("unanswered check = %+v, %v", fb, err)
	}

	_, _ = f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "B"})
	fb, _ = f.sessions.Check(ctx, "ana", v.SessionID)
	if !fb.Answered || fb.Correct || fb.Explanation != "B is wrong" {
		t.Errorf("check = %+v", fb)
	}
}

func TestSessionService_OtherLearnerCannotSee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")

	if _, err := f.sessions.View(ctx, "bob", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
	if _, err := f.sessions.View(ctx, "ana", "not-a-uuid"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestSessionService_RestoresFromSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")
	_, _ = f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "c"})
	_, _ = f.sessions.Navigate(ctx, "ana", v.SessionID, model.NavigateRequest{Action: model.NavigateNext})

	cat, _ := catalog.Default()
	restarted := NewSessionService(f.source, cat, f.results, zerolog.Nop(), WithSnapshots(f.snapshots))

	got, err := restarted.View(ctx, "ana", v.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentIndex != 1 || got.Answers[0] != quiz.LabelC || got.Exam != "Net09" {
		t.Fatalf("restored view = %+v", got)
	}
	if _, err := restarted.View(ctx, "bob", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("other learner err = %v", err)
	}
}

func TestSessionService_ProviderPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	qs, _ := quiz.Load([]byte(inlineQuestions))
	f.source.qs = qs

	v, err := f.sessions.Start(ctx, "ana", model.StartSessionRequest{Exam: "sec701"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Exam != "Sec701" || len(f.source.got) != 1 || f.source.got[0].Count != 30 {
		t.Fatalf("view = %+v, requests = %+v", v, f.source.got)
	}

	_, err = f.sessions.Start(ctx, "ana", model.StartSessionRequest{Exam: "Sec701", Domain: "1.2"})
	if err != nil || f.source.got[1].Domain != "1.2" || f.source.got[1].Count != 0 {
		t.Fatalf("domain request = %+v, %v", f.source.got[1], err)
	}

	if _, err := f.sessions.Start(ctx, "ana", model.StartSessionRequest{Exam: "CCNA"}); !errors.Is(err, catalog.ErrUnknownExam) {
		t.Errorf("unknown exam err = %v", err)
	}

	f.source.err = provider.ErrUnavailable
	if _, err := f.sessions.Start(ctx, "ana", model.StartSessionRequest{Exam: "Net09"}); !errors.Is(err, provider.ErrUnavailable) {
		t.Errorf("provider err = %v", err)
	}

	f.source.err, f.source.qs = nil, nil
	if _, err := f.sessions.Start(ctx, "ana", model.StartSessionRequest{Exam: "Net09"}); !errors.Is(err, quiz.ErrInvalidStart) {
		t.Errorf("empty set err = %v", err)
	}
}

func TestSessionService_InlineMalformed(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessions.Start(context.Background(), "ana", model.StartSessionRequest{
		Questions: json.RawMessage(`[{"question-text":"only text"}]`),
	})
	var mqe *quiz.MalformedQuestionError
	if !errors.As(err, &mqe) || len(mqe.Missing) == 0 {
		t.Fatalf("err = %v", err)
	}
	if f.sessions.Active() != 0 {
		t.Error("malformed batch must not create a session")
	}
}

func TestSessionService_EvictIdle(t *testing.T) {
	f := newFixture(t)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	f.sessions.now = func() time.Time { return clock }
	f.sessions.idle = time.Hour

	v := f.startInline(t, "ana")
	clock = clock.Add(30 * time.Minute)
	if n := f.sessions.evictIdle(); n != 0 {
		t.Fatalf("evicted %d too early", n)
	}
	clock = clock.Add(31 * time.Minute)
	if n := f.sessions.evictIdle(); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}

	// Still resumable from its snapshot.
	if _, err := f.sessions.View(context.Background(), "ana", v.SessionID); err != nil {
		t.Fatalf("resume after eviction: %v", err)
	}
}

func TestSessionService_Abandon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")

	if err := f.sessions.Abandon(ctx, "ana", v.SessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.sessions.View(ctx, "ana", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
	if len(f.results.History(ctx, "ana")) != 0 {
		t.Error("abandon must not record a result")
	}
}

// gatedSnapshots blocks the first Save after arm until release is closed.
type gatedSnapshots struct {
	*memSnapshots
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSnapshots) Save(ctx context.Context, id string, snap repository.SessionSnapshot) error {
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.memSnapshots.Save(ctx, id, snap)
}

func TestSessionService_AbandonDuringTransition(t *testing.T) {
	ctx := context.Background()
	cat, _ := catalog.Default()
	snaps := &gatedSnapshots{
		memSnapshots: newMemSnapshots(),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	results := NewResultService(history.NewMemoryStore(), 0, nil, zerolog.Nop())
	sessions := NewSessionService(&fakeSource{}, cat, results, zerolog.Nop(), WithSnapshots(snaps))

	v, err := sessions.Start(ctx, "ana", model.StartSessionRequest{Questions: json.RawMessage(inlineQuestions)})
	if err != nil {
		t.Fatal(err)
	}

	snaps.armed.Store(true)
	answered := make(chan error, 1)
	go func() {
		_, err := sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "B"})
		answered <- err
	}()
	<-snaps.entered

	abandoned := make(chan error, 1)
	go func() { abandoned <- sessions.Abandon(ctx, "ana", v.SessionID) }()
	time.Sleep(20 * time.Millisecond)
	close(snaps.release)

	if err := <-answered; err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := <-abandoned; err != nil {
		t.Fatalf("abandon: %v", err)
	}

	if _, err := snaps.Load(ctx, v.SessionID); !errors.Is(err, repository.ErrSnapshotNotFound) {
		t.Fatalf("snapshot still stored after abandon: %v", err)
	}
	if _, err := sessions.View(ctx, "ana", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("view after abandon err = %v", err)
	}
	if _, err := sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "C"}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("answer after abandon err = %v", err)
	}
}

type fakeAsker struct {
	got chat.Context
	err error
}

func (a *fakeAsker) Ask(_ context.Context, qc chat.Context, _ []chat.Message, _ string) (string, error) {
	a.got = qc
	return "because", a.err
}

func TestChatService_ResolvesQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")
	_, _ = f.sessions.Answer(ctx, "ana", v.SessionID, model.AnswerRequest{Answer: "D"})

	a := &fakeAsker{}
	svc := NewChatService(a, f.sessions, f.results, zerolog.Nop())

	idx := 0
	resp, err := svc.Ask(ctx, "ana", model.ChatRequest{SessionID: v.SessionID, QuestionIndex: &idx, Message: "why?"})
	if err != nil || resp.Reply != "because" {
		t.Fatalf("resp = %+v, %v", resp, err)
	}
	if a.got.Question.Text != "Q1" || a.got.Selected != quiz.LabelD {
		t.Errorf("context = %+v", a.got)
	}

	out, _ := f.sessions.Submit(ctx, "ana", v.SessionID)
	idx = 1
	if _, err := svc.Ask(ctx, "ana", model.ChatRequest{ResultID: out.Result.ID, QuestionIndex: &idx, Message: "?"}); err != nil {
		t.Fatal(err)
	}
	if a.got.Question.Text != "Q2" || a.got.Selected != "" {
		t.Errorf("result context = %+v", a.got)
	}

	idx = 10
	if _, err := svc.Ask(ctx, "ana", model.ChatRequest{ResultID: out.Result.ID, QuestionIndex: &idx, Message: "?"}); !errors.Is(err, quiz.ErrQuestionOutOfRange) {
		t.Errorf("err = %v", err)
	}

	a.err = chat.ErrUnavailable
	idx = 0
	if _, err := svc.Ask(ctx, "ana", model.ChatRequest{ResultID: out.Result.ID, QuestionIndex: &idx, Message: "?"}); !errors.Is(err, chat.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestFlagService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	v := f.startInline(t, "ana")
	q := &memPusher{}
	svc := NewFlagService(f.sessions, q, zerolog.Nop())

	idx := 2
	flag, err := svc.Create(ctx, "ana", model.CreateFlagRequest{
		SessionID:     v.SessionID,
		QuestionIndex: &idx,
		Reason:        model.FlagOther,
		CustomReason:  "  two options are identical ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if flag.QuestionText != "Q3" || flag.Exam != "Net09" || flag.CustomReason != "two options are identical" {
		t.Errorf("flag = %+v", flag)
	}
	if len(q.items) != 1 {
		t.Fatalf("queued %d flags", len(q.items))
	}

	idx = 4
	if _, err := svc.Create(ctx, "ana", model.CreateFlagRequest{SessionID: v.SessionID, QuestionIndex: &idx, Reason: model.FlagUnclearWording}); !errors.Is(err, quiz.ErrQuestionOutOfRange) {
		t.Errorf("err = %v", err)
	}

	idx = 0
	for _, custom := range []string{"", "   \t\n"} {
		_, err := svc.Create(ctx, "ana", model.CreateFlagRequest{
			SessionID:     v.SessionID,
			QuestionIndex: &idx,
			Reason:        model.FlagOther,
			CustomReason:  custom,
		})
		if !errors.Is(err, ErrCustomReasonRequired) {
			t.Errorf("custom %q: err = %v", custom, err)
		}
	}
	if len(q.items) != 1 {
		t.Errorf("blank custom reasons were queued: %d items", len(q.items))
	}
}
