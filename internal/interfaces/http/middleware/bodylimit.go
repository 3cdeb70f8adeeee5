package middleware

import (
	"fmt"
	"net/http"

	"github.com/fulfillment/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit caps request body size. Delivery and issue payloads are a few
// kilobytes at most, so anything near the limit is a misbehaving client.
// Declared lengths over the cap are rejected up front; chunked uploads are
// cut off by MaxBytesReader while the handler reads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE",
					fmt.Sprintf("Request body exceeds the %d byte limit", maxBytes)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
