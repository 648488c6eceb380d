package quiz

// Feedback is the outcome of checking one selected answer.
type Feedback struct {
	Answered    bool   `json:"answered"`
	Selected    Label  `json:"selected,omitempty"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Check grades a single selection. The explanation is the one written for
// the selected label, not for the answer key.
func Check(q Question, selected Label) Feedback {
	if selected == "" {
		return Feedback{}
	}
	return Feedback{
		Answered:    true,
		Selected:    selected,
		Correct:     IsCorrect(q, selected),
		Explanation: q.ExplanationFor(selected),
	}
}

// ReviewItem describes one question of a submitted result.
type ReviewItem struct {
	Index         int              `json:"index"`
	QuestionID    string           `json:"question_id"`
	Text          string           `json:"text"`
	Options       map[Label]string `json:"options"`
	Selected      Label            `json:"selected,omitempty"`
	CorrectAnswer Label            `json:"correct_answer"`
	Correct       bool             `json:"correct"`
	Explanation   string           `json:"explanation,omitempty"`
}

// Review expands a result into per-question markers. It only reads the
// result's snapshot, so it yields the same markers at any later time.
func Review(r Result) []ReviewItem {
	items := make([]ReviewItem, len(r.Questions))
	for i, q := range r.Questions {
		sel := r.Answers[i]
		fb := Check(q, sel)
		items[i] = ReviewItem{
			Index:         i,
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       cloneLabelMap(q.Options),
			Selected:      sel,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       fb.Correct,
			Explanation:   fb.Explanation,
		}
	}
	return items
}
