package model

import (
	"time"

	"github.com/google/uuid"
)

type FlagReason string

const (
	FlagIncorrectAnswer FlagReason = "Incorrect answer"
	FlagUnclearWording  FlagReason = "Unclear wording"
	FlagOther           FlagReason = "Other"
)

// CreateFlagRequest reports a problem with one question of a session.
type CreateFlagRequest struct {
	SessionID     string     `json:"session_id" binding:"required,uuid"`
	QuestionIndex *int       `json:"question_index" binding:"required,min=0"`
	Reason        FlagReason `json:"reason" binding:"required,oneof='Incorrect answer' 'Unclear wording' Other"`
	CustomReason  string     `json:"custom_reason" binding:"required_if=Reason Other,max=500"`
}

// QuestionFlag is a queued / persisted flag.
type QuestionFlag struct {
	ID            uuid.UUID  `json:"id"`
	LearnerID     string     `json:"learner_id"`
	SessionID     string     `json:"session_id"`
	QuestionIndex int        `json:"question_index"`
	QuestionID    string     `json:"question_id"`
	QuestionText  string     `json:"question_text"`
	Exam          string     `json:"exam,omitempty"`
	Reason        FlagReason `json:"reason"`
	CustomReason  string     `json:"custom_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
