package websocket

import (
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/quiz"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState    Action = "state"
	ActionSelect   Action = "select"
	ActionClear    Action = "clear"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionGoTo     Action = "goto"
	ActionCheck    Action = "check"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// Request is every client message. Answer is used by select, Index by goto.
type Request struct {
	Action Action `json:"action"`
	Answer string `json:"answer,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventFeedback Event = "feedback"
	EventGraded   Event = "graded"
	EventPong     Event = "pong"
	EventError    Event = "error"
)

type StateResponse struct {
	Event   Event             `json:"event"`
	Session model.SessionView `json:"session"`
}

type FeedbackResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
	quiz.Feedback
}

type GradedResponse struct {
	Event  Event               `json:"event"`
	Result model.ResultSummary `json:"result"`
	Review []quiz.ReviewItem   `json:"review"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}
