package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders untuk endpoint yang hanya melayani Telegram dan monitoring;
// tidak ada halaman browser sehingga semua framing dan caching ditolak.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
