package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sorteo-ig/internal/config"
	"sorteo-ig/internal/db"
	"sorteo-ig/internal/handlers"
	"sorteo-ig/internal/services"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// 0. Load Config (.env + environment)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Init Database (Turso)
	store, err := db.Open(cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database initialized with Turso")

	// 2. Init Telegram Bot
	var notifier services.Notifier
	if cfg.TelegramToken == "" {
		slog.Warn("TELEGRAM_TOKEN not set, admin notifications disabled")
	} else {
		tg, err := services.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			slog.Warn("failed to init telegram bot", "error", err)
		} else {
			notifier = tg
			if cfg.TelegramAdminChatID == 0 {
				go tg.Listen(ctx)
			}
		}
	}

	giveaway := services.NewGiveaway(store, cfg.AdminPassword, cfg.StoreTimeout, notifier)

	// 3. Setup Router
	tmpl, err := handlers.ParseTemplates()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	router, err := handlers.NewRouter(handlers.New(giveaway, tmpl))
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// 4. Start
	slog.Info("server listening", "addr", "http://localhost:"+cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("server closed")
}
