package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDContextKey = "request_id"

// RequestID tags each request with an id, honoring one supplied by the edge.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDContextKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" outside it.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(RequestIDContextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
