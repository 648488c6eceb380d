package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/certbible/certprep/internal/response"
	"github.com/certbible/certprep/internal/validator"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAPIKey    = "x-api-key"
	HeaderLearnerID = "X-Learner-ID"

	// ContextKeyLearnerID is the Gin context key holding the learner ID.
	ContextKeyLearnerID = "learner_id"
	// AnonymousLearner is used when the client sends no learner ID.
	AnonymousLearner = "anonymous"
)

// APIKey requires the x-api-key header to equal key. An empty key disables
// the check.
func APIKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			// Browsers cannot set headers on WebSocket handshakes.
			got = c.Query("api_key")
		}
		if got == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAPIKeyRequired)
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.AbortFail(c, http.StatusForbidden, response.ErrAPIKeyInvalid)
			return
		}
		c.Next()
	}
}

// Learner resolves the learner ID from X-Learner-ID (or the learner_id query
// parameter for WebSocket clients) and stores it in the context.
func Learner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderLearnerID)
		if id == "" {
			id = c.Query("learner_id")
		}
		if id == "" {
			id = AnonymousLearner
		}
		if !validator.ValidLearnerID(id) {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidLearner)
			return
		}
		c.Set(ContextKeyLearnerID, id)
		c.Next()
	}
}

// GetLearnerID returns the learner ID stored by Learner.
func GetLearnerID(c *gin.Context) string {
	if id := c.GetString(ContextKeyLearnerID); id != "" {
		return id
	}
	return AnonymousLearner
}
