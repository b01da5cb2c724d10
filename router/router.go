package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yeremiapane/kasir-bot/metrics"
	"github.com/yeremiapane/kasir-bot/middlewares"
	"github.com/yeremiapane/kasir-bot/telegram"
	"github.com/yeremiapane/kasir-bot/utils"
	"gorm.io/gorm"
)

const healthText = "🤖 Bot Telegram VillaParfum Aktif"

// Options mengatur route yang dipasang. Webhook hanya aktif bila Handler dan
// WebhookSecret diisi.
type Options struct {
	Handler       telegram.Handler
	WebhookSecret string
	// WebhookRate adalah batas request webhook per detik per IP. 0 = tanpa batas.
	WebhookRate float64
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, healthText)
	})
	r.GET("/healthz", healthz(db))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if opts.Handler != nil && opts.WebhookSecret != "" {
		handlers := []gin.HandlerFunc{middlewares.WebhookSecret(opts.WebhookSecret)}
		if opts.WebhookRate > 0 {
			handlers = append(handlers, middlewares.NewRateLimiter(opts.WebhookRate, int(opts.WebhookRate)+1).RateLimit())
		}
		handlers = append(handlers, webhook(opts.Handler))
		r.POST("/webhook/:secret", handlers...)
	}

	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("health check: database unreachable")
			utils.RespondError(c, http.StatusServiceUnavailable, errors.New("database unreachable"))
			return
		}
		utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"database": "up"})
	}
}

// webhook memproses update secara sinkron lalu selalu membalas 200 supaya Telegram
// tidak mengirim ulang update yang sama.
func webhook(h telegram.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid update payload"))
			return
		}
		telegram.Dispatch(context.WithoutCancel(c.Request.Context()), h, update)
		c.Status(http.StatusOK)
	}
}
