package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID reuses an incoming X-Request-Id so the staff CLI can correlate
// its own logs with the API's.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDHeader, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}
