package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/ticketdesk/backend/internal/api"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing a well formed inbound header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		api.GetRequestContext(c).RequestID = id
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
