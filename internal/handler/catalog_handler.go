package handler

import (
	"net/http"
	"strings"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/response"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static exam catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// List godoc
// GET /api/v1/catalog
func (h *CatalogHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"exams": h.catalog.Exams})
}

// Get godoc
// GET /api/v1/catalog/:code
func (h *CatalogHandler) Get(c *gin.Context) {
	exam, ok := h.catalog.Lookup(strings.TrimSpace(c.Param("code")))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrUnknownExam)
		return
	}
	response.Success(c, http.StatusOK, exam)
}
