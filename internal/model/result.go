package model

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveJob is the queue payload pushed for every emitted result.
type ArchiveJob struct {
	LearnerID string        `json:"learner_id"`
	SessionID string        `json:"session_id"`
	Result    ResultSummary `json:"result"`
}

// ArchivedResult is one row of the durable results archive.
type ArchivedResult struct {
	ID             uuid.UUID `json:"id"`
	LearnerID      string    `json:"learner_id"`
	SessionID      string    `json:"session_id,omitempty"`
	Exam           string    `json:"exam,omitempty"`
	Domain         string    `json:"domain,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	Score          float64   `json:"score"`
	SubmittedAt    time.Time `json:"submitted_at"`
	ArchivedAt     time.Time `json:"archived_at"`
}

// ArchiveQuery filters and pages the archive listing.
type ArchiveQuery struct {
	Exam    string `form:"exam" binding:"max=32"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// Normalize fills paging defaults.
func (q *ArchiveQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = 20
	}
}

// Offset returns the row offset for the requested page.
func (q ArchiveQuery) Offset() int { return (q.Page - 1) * q.PerPage }
