package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikraya/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Tracking callbacks from carriers are the main reason this exists:
// a misbehaving integration once posted multi-megabyte metadata blobs.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size"))
			return
		}

		// Streaming requests without Content-Length still get capped.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
