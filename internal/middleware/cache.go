package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as private and uncacheable. Every API response
// carries one teacher's documents.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Next()
	}
}
