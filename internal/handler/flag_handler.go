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

type FlagHandler struct {
	flags *service.FlagService
	log   zerolog.Logger
}

func NewFlagHandler(flags *service.FlagService, log zerolog.Logger) *FlagHandler {
	return &FlagHandler{
		flags: flags,
		log:   log.With().Str("component", "flag_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/flags
// Reports a problematic question. Flags are persisted asynchronously.
func (h *FlagHandler) Create(c *gin.Context) {
	var req model.CreateFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flag, err := h.flags.Create(c.Request.Context(), middleware.GetLearnerID(c), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusAccepted, flag)
}
