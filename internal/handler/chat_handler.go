package handler

import (
	"net/http"

	"github.com/certbible/certprep/internal/middleware"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/response"
	"github.com/certbible/certprep/internal/service"
	"github.com/certbible/certprep/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ChatHandler struct {
	chat *service.ChatService
	log  zerolog.Logger
}

func NewChatHandler(chat *service.ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		log:  log.With().Str("component", "chat_handler").Logger(),
	}
}

// Ask godoc
// POST /api/v1/chat
// Asks the tutor about one question of a live session or a stored result.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req model.ChatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.chat.Ask(c.Request.Context(), middleware.GetLearnerID(c), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
