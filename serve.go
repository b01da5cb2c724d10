package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/kasir-bot/bot"
	"github.com/yeremiapane/kasir-bot/config"
	"github.com/yeremiapane/kasir-bot/database"
	"github.com/yeremiapane/kasir-bot/metrics"
	"github.com/yeremiapane/kasir-bot/router"
	"github.com/yeremiapane/kasir-bot/services"
	"github.com/yeremiapane/kasir-bot/session"
	"github.com/yeremiapane/kasir-bot/telegram"
	"github.com/yeremiapane/kasir-bot/utils"
)

const (
	debounceCleanupInterval = time.Minute
	debounceMaxIdle         = 10 * time.Minute
	webhookRatePerSecond    = 30
	shutdownTimeout         = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Jalankan bot (long polling atau webhook) dan server HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	utils.InitLogger(cfg.App.LogLevel)
	if cfg.HTTP.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	db, err := config.InitDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := database.SeedRoles(db); err != nil {
		return err
	}

	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		return err
	}

	sessions := session.NewMemoryStore[bot.Session]()
	if err := metrics.RegisterActiveSessions(sessions.Len); err != nil {
		return err
	}

	dispatcher := bot.NewDispatcher(
		client,
		services.NewAccessService(db),
		services.NewTransactionService(db),
		services.NewReportService(db),
		sessions,
		bot.Options{Location: cfg.Location()},
	)

	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	go dispatcher.Debouncer().RunCleanup(debounceCleanupInterval, debounceMaxIdle, cleanupDone)

	webhookMode := cfg.Telegram.WebhookURL != ""
	routerOpts := router.Options{}
	if webhookMode {
		routerOpts = router.Options{
			Handler:       dispatcher,
			WebhookSecret: cfg.Telegram.WebhookSecret,
			WebhookRate:   webhookRatePerSecond,
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router.SetupRouter(db, routerOpts),
	}
	serverErr := make(chan error, 1)
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	pollErr := make(chan error, 1)
	if webhookMode {
		url := strings.TrimRight(cfg.Telegram.WebhookURL, "/") + "/webhook/" + cfg.Telegram.WebhookSecret
		if err := client.SetWebhook(url); err != nil {
			return err
		}
	} else {
		go func() {
			pollErr <- client.Poll(ctx, cfg.Telegram.PollTimeout, dispatcher)
		}()
	}

	select {
	case <-ctx.Done():
		utils.InfoLogger.Info("Shutting down")
	case err := <-serverErr:
		return fmt.Errorf("http server stopped: %w", err)
	case err := <-pollErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
