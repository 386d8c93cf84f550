package middlewares

import (
	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware -> browser tidak bisa kirim header saat upgrade, jadi token lewat query
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		if !authenticate(c, token) {
			return
		}
		c.Next()
	}
}
