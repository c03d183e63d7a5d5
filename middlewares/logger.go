package middlewares

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger records method, path, status and latency of every request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s -> %d (%s) user=%s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString(UserIDKey))
	}
}
