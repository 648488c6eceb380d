package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Domain Errors
var (
	ErrEmptyQuestionSet   = errors.New("no questions available")
	ErrMalformedQuestion  = errors.New("malformed question")
	ErrInvalidStart       = errors.New("cannot start a session without questions")
	ErrSessionCompleted   = errors.New("session is already completed")
	ErrDivisionUndefined  = errors.New("score is undefined for an empty question set")
	ErrInvalidLabel       = errors.New("answer label must be one of A, B, C, D")
	ErrQuestionOutOfRange = errors.New("question index out of range")
)

// MalformedQuestionError reports which required fields a provider record lacks.
// It matches ErrMalformedQuestion under errors.Is.
type MalformedQuestionError struct {
	Index   int
	Missing []string
	Reason  string
}

func (e *MalformedQuestionError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("malformed question at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed question at index %d: missing %s", e.Index, strings.Join(e.Missing, ", "))
}

func (e *MalformedQuestionError) Unwrap() error {
	return ErrMalformedQuestion
}
