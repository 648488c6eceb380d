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

// ResultHandler exposes a learner's result history.
type ResultHandler struct {
	results *service.ResultService
	log     zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results *service.ResultService, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		log:     log.With().Str("component", "result_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/results
// Lists the learner's results, newest first.
func (h *ResultHandler) List(c *gin.Context) {
	history := h.results.History(c.Request.Context(), middleware.GetLearnerID(c))

	out := make([]model.ResultSummary, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, model.Summarize(history[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"results": out})
}

// Review godoc
// GET /api/v1/results/:result_id/review
// Returns a stored result with its per-question review.
func (h *ResultHandler) Review(c *gin.Context) {
	out, err := h.results.Review(c.Request.Context(), middleware.GetLearnerID(c), c.Param("result_id"))
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Archive godoc
// GET /api/v1/results/archive?exam=&page=&per_page=
func (h *ResultHandler) Archive(c *gin.Context) {
	var q model.ArchiveQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rows, total, err := h.results.Archive(c.Request.Context(), middleware.GetLearnerID(c), q)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	q.Normalize()
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": rows}, response.NewPagination(q.Page, q.PerPage, total))
}
