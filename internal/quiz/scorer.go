package quiz

// IsCorrect reports whether the selected label matches the question's answer
// key, ignoring case. An empty selection is never correct.
func IsCorrect(q Question, selected Label) bool {
	return selected.Matches(q.CorrectAnswer)
}

// CountCorrect returns how many questions have a correct recorded answer.
func CountCorrect(questions []Question, answers map[int]Label) int {
	correct := 0
	for i, q := range questions {
		if ans, ok := answers[i]; ok && IsCorrect(q, ans) {
			correct++
		}
	}
	return correct
}

// Score returns the percentage of correctly answered questions in [0, 100].
// Missing answers count as incorrect; answers keyed outside the question
// range are ignored.
func Score(questions []Question, answers map[int]Label) (float64, error) {
	if len(questions) == 0 {
		return 0, ErrDivisionUndefined
	}
	return 100 * float64(CountCorrect(questions, answers)) / float64(len(questions)), nil
}
