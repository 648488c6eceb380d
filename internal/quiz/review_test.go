package quiz

import "testing"

func TestReview(t *testing.T) {
	s, _ := Start(makeQuestions(LabelA, LabelB, LabelC))
	mustNil(t, s.SelectAnswer("a"))
	mustNil(t, s.Next())
	mustNil(t, s.SelectAnswer("C"))
	r, _ := s.Submit()

	items := Review(r)
	if len(items) != 3 {
		t.Fatalf("len = %d", len(items))
	}

	if !items[0].Correct || items[0].Explanation != "why A" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Correct || items[1].Selected != LabelC || items[1].CorrectAnswer != LabelB || items[1].Explanation != "why C" {
		t.Errorf("item 1 = %+v", items[1])
	}
	if items[2].Correct || items[2].Selected != "" || items[2].Explanation != "" {
		t.Errorf("item 2 = %+v", items[2])
	}

	again := Review(r)
	for i := range items {
		if items[i].Correct != again[i].Correct || items[i].Selected != again[i].Selected {
			t.Fatalf("review not reproducible at %d", i)
		}
	}
}
