package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kasir-bot/utils"
)

// TelegramSecretHeader dikirim Telegram bila webhook didaftarkan dengan secret_token.
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret menolak request webhook yang path :secret-nya tidak cocok. Bila
// header secret token ada, nilainya juga harus cocok.
func WebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || !equal(c.Param("secret"), secret) {
			utils.RespondError(c, http.StatusNotFound, errors.New("not found"))
			c.Abort()
			return
		}
		if header := c.GetHeader(TelegramSecretHeader); header != "" && !equal(header, secret) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid secret token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
