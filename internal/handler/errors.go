package handler

import (
	"errors"
	"net/http"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/chat"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/certbible/certprep/internal/response"
	"github.com/certbible/certprep/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// classify maps a service error to its HTTP status, error code and the
// message shown to the learner.
func classify(err error) (int, response.ErrCode, string) {
	var malformed *quiz.MalformedQuestionError
	switch {
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, response.ErrMalformedQuestion, malformed.Error()
	case errors.Is(err, quiz.ErrMalformedQuestion):
		return http.StatusUnprocessableEntity, response.ErrMalformedQuestion, err.Error()
	case errors.Is(err, quiz.ErrEmptyQuestionSet), errors.Is(err, quiz.ErrInvalidStart):
		return status(http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, provider.ErrUnavailable):
		return status(http.StatusBadGateway, response.ErrProviderUnavailable)
	case errors.Is(err, quiz.ErrSessionCompleted):
		return status(http.StatusConflict, response.ErrSessionCompleted)
	case errors.Is(err, quiz.ErrInvalidLabel):
		return status(http.StatusBadRequest, response.ErrInvalidLabel)
	case errors.Is(err, quiz.ErrQuestionOutOfRange):
		return status(http.StatusBadRequest, response.ErrQuestionOutOfRange)
	case errors.Is(err, catalog.ErrUnknownExam), errors.Is(err, catalog.ErrUnknownDomain):
		return status(http.StatusBadRequest, response.ErrUnknownExam)
	case errors.Is(err, service.ErrSessionNotFound):
		return status(http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrResultNotFound):
		return status(http.StatusNotFound, response.ErrResultNotFound)
	case errors.Is(err, service.ErrCustomReasonRequired):
		return http.StatusBadRequest, response.ErrValidation, err.Error()
	case errors.Is(err, service.ErrArchiveUnavailable):
		return status(http.StatusServiceUnavailable, response.ErrArchiveDisabled)
	case errors.Is(err, chat.ErrUnavailable), errors.Is(err, chat.ErrEmptyReply):
		return status(http.StatusBadGateway, response.ErrChatUnavailable)
	default:
		return status(http.StatusInternalServerError, response.ErrInternal)
	}
}

func status(code int, errCode response.ErrCode) (int, response.ErrCode, string) {
	return code, errCode, response.GetMessage(errCode)
}

// failWith writes the error envelope for err. Unclassified errors are logged.
func failWith(c *gin.Context, log zerolog.Logger, err error) {
	code, errCode, msg := classify(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	response.FailMessage(c, code, errCode, msg)
}
