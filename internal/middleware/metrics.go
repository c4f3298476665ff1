package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type requestObserver interface {
	ObserveRequest(method, path, status string, duration time.Duration)
}

// Metrics captures request counts and latencies per route.
func Metrics(observer requestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		observer.ObserveRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
