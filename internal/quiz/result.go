package quiz

import "time"

// Result is the immutable record of a submitted session.
type Result struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Exam           string        `json:"exam,omitempty"`
	Domain         string        `json:"domain,omitempty"`
	TotalQuestions int           `json:"total_questions"`
	CorrectCount   int           `json:"correct_count"`
	Score          float64       `json:"score"`
	Answers        map[int]Label `json:"answers"`
	Questions      []Question    `json:"questions"`
}

// NewResult scores a question set and snapshots it together with the answers.
// Neither argument is retained.
func NewResult(id string, at time.Time, questions []Question, answers map[int]Label) (Result, error) {
	score, err := Score(questions, answers)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ID:             id,
		Timestamp:      at,
		TotalQuestions: len(questions),
		CorrectCount:   CountCorrect(questions, answers),
		Score:          score,
		Answers:        cloneAnswers(answers),
		Questions:      CloneQuestions(questions),
	}, nil
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	c := r
	c.Answers = cloneAnswers(r.Answers)
	c.Questions = CloneQuestions(r.Questions)
	return c
}

// RoundedScore is the score as shown to learners.
func (r Result) RoundedScore() int {
	return int(r.Score + 0.5)
}

func cloneAnswers(m map[int]Label) map[int]Label {
	out := make(map[int]Label, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
