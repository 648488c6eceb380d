package quiz

import (
	"errors"
	"math/rand"
	"testing"
)

func TestScore(t *testing.T) {
	qs := makeQuestions(LabelA, LabelB, LabelC)
	tests := []struct {
		name    string
		answers map[int]Label
		want    float64
	}{
		{name: "none", answers: map[int]Label{}, want: 0},
		{name: "nil map", answers: nil, want: 0},
		{name: "all", answers: map[int]Label{0: "A", 1: "B", 2: "C"}, want: 100},
		{name: "case insensitive", answers: map[int]Label{0: "a", 1: "b"}, want: 200.0 / 3},
		{name: "wrong", answers: map[int]Label{0: "D", 1: "D", 2: "D"}, want: 0},
		{name: "out of range key ignored", answers: map[int]Label{5: "A", 0: "A"}, want: 100.0 / 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Score(qs, tc.answers)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got != tc.want {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScore_Empty(t *testing.T) {
	if _, err := Score(nil, map[int]Label{0: "A"}); !errors.Is(err, ErrDivisionUndefined) {
		t.Fatalf("err = %v, want ErrDivisionUndefined", err)
	}
}

func TestScore_RangeAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := rng.Intn(20) + 1
		correct := make([]Label, n)
		answers := map[int]Label{}
		for i := range correct {
			correct[i] = Labels[rng.Intn(4)]
			if rng.Intn(3) > 0 {
				answers[i] = Labels[rng.Intn(4)]
			}
		}
		qs := makeQuestions(correct...)

		a, err := Score(qs, answers)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := Score(qs, answers)
		if a != b {
			t.Fatalf("round %d: %v != %v", round, a, b)
		}
		if a < 0 || a > 100 {
			t.Fatalf("round %d: score %v out of range", round, a)
		}
	}
}

func TestLabels(t *testing.T) {
	if LetterForIndex(0) != LabelA || LetterForIndex(3) != LabelD || LetterForIndex(4) != "" {
		t.Error("LetterForIndex mapping wrong")
	}
	if _, err := ParseLabel(" c "); err != nil {
		t.Errorf("ParseLabel(\" c \"): %v", err)
	}
	if _, err := ParseLabel("AB"); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("ParseLabel(AB) err = %v", err)
	}
}
