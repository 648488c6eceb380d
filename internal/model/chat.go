package model

// ChatMessage is one prior turn of the explanation chat.
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=4000"`
}

// ChatRequest asks the tutor about one question. The question is looked up
// in a live session (session_id) or in a stored result (result_id).
type ChatRequest struct {
	SessionID     string        `json:"session_id" binding:"omitempty,uuid"`
	ResultID      string        `json:"result_id" binding:"required_without=SessionID,max=64"`
	QuestionIndex *int          `json:"question_index" binding:"required,min=0"`
	Message       string        `json:"message" binding:"required,max=2000"`
	History       []ChatMessage `json:"history" binding:"max=40,dive"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}
