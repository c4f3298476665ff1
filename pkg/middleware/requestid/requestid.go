package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request ID between services.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags every request with an ID, reusing the caller's when one
// is supplied so traces line up across services.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value reads the request ID assigned by Middleware, or "" outside of it.
func Value(c *gin.Context) string {
	id, _ := c.Get(contextKey)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}
