package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

func makeQuestions(correct ...Label) []Question {
	qs := make([]Question, len(correct))
	for i, c := range correct {
		qs[i] = Question{
			ID:   fmt.Sprintf("q%d", i),
			Text: fmt.Sprintf("question %d", i),
			Options: map[Label]string{
				LabelA: "alpha", LabelB: "bravo", LabelC: "charlie", LabelD: "delta",
			},
			CorrectAnswer: c,
			Explanations: map[Label]string{
				LabelA: "why A", LabelB: "why B", LabelC: "why C", LabelD: "why D",
			},
		}
	}
	return qs
}

func TestStart_Empty(t *testing.T) {
	if _, err := Start(nil); !errors.Is(err, ErrInvalidStart) {
		t.Fatalf("err = %v, want ErrInvalidStart", err)
	}
}

func TestSession_ScenarioHalfCorrect(t *testing.T) {
	s, err := Start(makeQuestions(LabelB, LabelD))
	if err != nil {
		t.Fatal(err)
	}
	mustNil(t, s.SelectAnswer("A"))
	mustNil(t, s.Next())
	mustNil(t, s.SelectAnswer("D"))

	r, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Score != 50.0 {
		t.Errorf("Score = %v, want 50", r.Score)
	}
	if len(r.Answers) != 2 || r.Answers[0] != LabelA || r.Answers[1] != LabelD {
		t.Errorf("Answers = %v", r.Answers)
	}
	if r.TotalQuestions != 2 || r.CorrectCount != 1 {
		t.Errorf("Total=%d Correct=%d", r.TotalQuestions, r.CorrectCount)
	}
}

func TestSession_SubmitUnanswered(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC, LabelD))
	r, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Score != 0 || len(r.Answers) != 0 {
		t.Errorf("Score=%v Answers=%v, want 0 and empty", r.Score, r.Answers)
	}
}

func TestSession_LowercaseSelection(t *testing.T) {
	s, _ := Start(makeQuestions(LabelB))
	mustNil(t, s.SelectAnswer("b"))
	r, _ := s.Submit()
	if r.Score != 100 {
		t.Errorf("Score = %v, want 100", r.Score)
	}
}

func TestSession_PreviousAtStart(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB))
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex())
	}
}

func TestSession_IndexStaysInBounds(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC, LabelD, LabelA))
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			mustNil(t, s.Next())
		case 1:
			mustNil(t, s.Previous())
		default:
			mustNil(t, s.GoTo(rng.Intn(21)-10))
		}
		if idx := s.CurrentIndex(); idx < 0 || idx >= s.Len() {
			t.Fatalf("step %d: index %d out of [0,%d)", i, idx, s.Len())
		}
	}
}

func TestSession_AnswersPersistAcrossNavigation(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC))
	mustNil(t, s.GoTo(1))
	mustNil(t, s.SelectAnswer("C"))
	mustNil(t, s.Next())
	mustNil(t, s.Previous())
	mustNil(t, s.GoTo(0))
	mustNil(t, s.GoTo(1))

	if got, ok := s.Answer(1); !ok || got != LabelC {
		t.Errorf("Answer(1) = %q,%v, want C", got, ok)
	}
}

func TestSession_Reselection(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA))
	mustNil(t, s.SelectAnswer("A"))
	mustNil(t, s.SelectAnswer("d"))
	answers := s.Answers()
	if len(answers) != 1 || answers[0] != LabelD {
		t.Errorf("Answers = %v, want {0: D}", answers)
	}
}

func TestSession_InvalidLabelChangesNothing(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB))
	mustNil(t, s.SelectAnswer("B"))
	if err := s.SelectAnswer("E"); !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("err = %v, want ErrInvalidLabel", err)
	}
	if got, _ := s.Answer(0); got != LabelB || s.CurrentIndex() != 0 {
		t.Errorf("state changed: answer=%q index=%d", got, s.CurrentIndex())
	}
}

func TestSession_TerminalImmutability(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC))
	mustNil(t, s.SelectAnswer("A"))
	mustNil(t, s.Next())
	if _, err := s.Submit(); err != nil {
		t.Fatal(err)
	}

	before := s.Answers()
	idx := s.CurrentIndex()
	calls := map[string]func() error{
		"SelectAnswer": func() error { return s.SelectAnswer("B") },
		"Next":         s.Next,
		"Previous":     s.Previous,
		"GoTo":         func() error { return s.GoTo(2) },
		"ClearAnswer":  s.ClearAnswer,
		"Submit":       func() error { _, err := s.Submit(); return err },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrSessionCompleted) {
			t.Errorf("%s err = %v, want ErrSessionCompleted", name, err)
		}
	}
	if s.CurrentIndex() != idx {
		t.Errorf("index moved to %d", s.CurrentIndex())
	}
	after := s.Answers()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("answers changed: %v -> %v", before, after)
	}
	if s.State() != StateCompleted {
		t.Errorf("State = %s", s.State())
	}
}

func TestSession_ResultIndependentOfInputs(t *testing.T) {
	qs := makeQuestions(LabelA, LabelB)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, _ := Start(qs, WithClock(func() time.Time { return fixed }), WithIDFunc(func() string { return "r-1" }))
	mustNil(t, s.SelectAnswer("A"))
	r, err := s.Submit()
	if err != nil {
		t.Fatal(err)
	}

	qs[0].Text = "mutated"
	qs[0].Options[LabelA] = "mutated"
	qs[0].CorrectAnswer = LabelD

	s2, _ := Start(qs)
	mustNil(t, s2.SelectAnswer("C"))

	if r.Questions[0].Text != "question 0" || r.Questions[0].Options[LabelA] != "alpha" {
		t.Errorf("result question aliased: %+v", r.Questions[0])
	}
	if r.Answers[0] != LabelA || r.Score != 50 {
		t.Errorf("result changed: answers=%v score=%v", r.Answers, r.Score)
	}
	if r.ID != "r-1" || !r.Timestamp.Equal(fixed) {
		t.Errorf("ID=%q Timestamp=%v", r.ID, r.Timestamp)
	}

	r.Answers[1] = LabelB
	stored, _ := s.Result()
	if _, ok := stored.Answers[1]; ok {
		t.Error("mutating a returned result leaked into the session copy")
	}
}

func TestSession_Check(t *testing.T) {
	s, _ := Start(makeQuestions(LabelC), WithExam("Net09", "1.1"))
	if fb := s.Check(); fb.Answered {
		t.Errorf("unanswered check = %+v", fb)
	}
	mustNil(t, s.SelectAnswer("a"))
	fb := s.Check()
	if !fb.Answered || fb.Correct || fb.Explanation != "why A" {
		t.Errorf("Check = %+v", fb)
	}
	r, _ := s.Submit()
	if r.Exam != "Net09" || r.Domain != "1.1" {
		t.Errorf("exam tags = %q %q", r.Exam, r.Domain)
	}
}

func TestRestore(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC), WithExam("A1101", "2.3"))
	mustNil(t, s.SelectAnswer("B"))
	mustNil(t, s.GoTo(2))
	snap := s.Snapshot()
	snap.Answers[9] = LabelA
	snap.Answers[1] = "z"

	r, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if r.CurrentIndex() != 2 || r.Exam() != "A1101" || r.Domain() != "2.3" {
		t.Errorf("restored index=%d exam=%s domain=%s", r.CurrentIndex(), r.Exam(), r.Domain())
	}
	answers := r.Answers()
	if len(answers) != 1 || answers[0] != LabelB {
		t.Errorf("restored answers = %v", answers)
	}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
