package model

import (
	"encoding/json"
	"time"

	"github.com/certbible/certprep/internal/quiz"
)

// StartSessionRequest starts a session either from the question provider
// (exam, optional domain, count) or from an inline question payload in the
// provider's format.
type StartSessionRequest struct {
	Exam      string          `json:"exam" binding:"required_without=Questions,max=32"`
	Domain    string          `json:"domain" binding:"max=128"`
	Count     int             `json:"count" binding:"omitempty,min=1,max=90"`
	Questions json.RawMessage `json:"questions"`
}

// AnswerRequest records (or clears) the answer for the current question.
// The label is validated by the session itself so that an invalid letter
// reports INVALID_LABEL rather than a generic validation error.
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required_without=Clear,max=8"`
	Clear  bool   `json:"clear"`
}

type NavigateAction string

const (
	NavigateNext     NavigateAction = "next"
	NavigatePrevious NavigateAction = "previous"
	NavigateGoTo     NavigateAction = "goto"
)

// NavigateRequest moves the current index. Index is required for goto.
type NavigateRequest struct {
	Action NavigateAction `json:"action" binding:"required,oneof=next previous goto"`
	Index  *int           `json:"index" binding:"required_if=Action goto"`
}

// QuestionView is a question as shown during an active session: no answer
// key, no explanations.
type QuestionView struct {
	Index   int                   `json:"index"`
	ID      string                `json:"id"`
	Text    string                `json:"text"`
	Options map[quiz.Label]string `json:"options"`
	Domain  string                `json:"domain,omitempty"`
}

// SessionView is the externally visible state of a session.
type SessionView struct {
	SessionID     string             `json:"session_id"`
	Exam          string             `json:"exam,omitempty"`
	Domain        string             `json:"domain,omitempty"`
	State         quiz.State         `json:"state"`
	CurrentIndex  int                `json:"current_index"`
	Total         int                `json:"total_questions"`
	AnsweredCount int                `json:"answered_count"`
	Answers       map[int]quiz.Label `json:"answers"`
	Question      QuestionView       `json:"question"`
	Result        *ResultSummary     `json:"result,omitempty"`
}

// CheckResponse is practice feedback for the current question.
type CheckResponse struct {
	Index int `json:"index"`
	quiz.Feedback
}

// SubmitResponse returns the result together with its review for immediate
// display.
type SubmitResponse struct {
	Result ResultSummary     `json:"result"`
	Review []quiz.ReviewItem `json:"review"`
}

// ResultSummary is a Result without its question snapshot.
type ResultSummary struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Exam           string    `json:"exam,omitempty"`
	Domain         string    `json:"domain,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	Score          float64   `json:"score"`
	RoundedScore   int       `json:"rounded_score"`
}

// Summarize projects r into a ResultSummary.
func Summarize(r quiz.Result) ResultSummary {
	return ResultSummary{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		Exam:           r.Exam,
		Domain:         r.Domain,
		TotalQuestions: r.TotalQuestions,
		CorrectCount:   r.CorrectCount,
		Score:          r.Score,
		RoundedScore:   r.RoundedScore(),
	}
}

// ViewQuestion strips the answer key from q.
func ViewQuestion(index int, q quiz.Question) QuestionView {
	opts := make(map[quiz.Label]string, len(q.Options))
	for k, v := range q.Options {
		opts[k] = v
	}
	return QuestionView{Index: index, ID: q.ID, Text: q.Text, Options: opts, Domain: q.Domain}
}
