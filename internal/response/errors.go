package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Access ────────────────────────────────────────────────────────
	ErrAPIKeyRequired ErrCode = "API_KEY_REQUIRED"
	ErrAPIKeyInvalid  ErrCode = "API_KEY_INVALID"
	ErrInvalidLearner ErrCode = "INVALID_LEARNER_ID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidLabel   ErrCode = "INVALID_LABEL"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrResultNotFound  ErrCode = "RESULT_NOT_FOUND"
	ErrArchiveDisabled ErrCode = "ARCHIVE_UNAVAILABLE"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrMalformedQuestion   ErrCode = "MALFORMED_QUESTION"
	ErrSessionCompleted    ErrCode = "SESSION_COMPLETED"
	ErrQuestionOutOfRange  ErrCode = "QUESTION_OUT_OF_RANGE"
	ErrUnknownExam         ErrCode = "UNKNOWN_EXAM"
	ErrProviderUnavailable ErrCode = "PROVIDER_UNAVAILABLE"

	// ─── Chat ──────────────────────────────────────────────────────────
	ErrChatUnavailable ErrCode = "CHAT_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Access ────────────────────────────────────────────────────────
	case ErrAPIKeyRequired:
		return "An API key is required."
	case ErrAPIKeyInvalid:
		return "The API key is not valid."
	case ErrInvalidLearner:
		return "The learner ID must be 1-64 letters, digits, '-' or '_'."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidLabel:
		return "Answer must be one of A, B, C or D."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSessionNotFound:
		return "Exam session not found or expired."
	case ErrResultNotFound:
		return "Result not found in your history."
	case ErrArchiveDisabled:
		return "The result archive is not enabled on this server."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrNoQuestions:
		return "No questions were returned for this exam."
	case ErrMalformedQuestion:
		return "The question data is malformed."
	case ErrSessionCompleted:
		return "This exam has already been submitted."
	case ErrQuestionOutOfRange:
		return "Question index is out of range."
	case ErrUnknownExam:
		return "Unknown exam or domain."
	case ErrProviderUnavailable:
		return "Failed to fetch questions. Please try again later."

	// ─── Chat ──────────────────────────────────────────────────────────
	case ErrChatUnavailable:
		return "The assistant is unavailable right now."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
