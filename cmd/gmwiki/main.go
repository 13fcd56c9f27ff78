package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/omarshaarawi/gmwiki/internal/api/chesscom"
	"github.com/omarshaarawi/gmwiki/internal/bot"
	"github.com/omarshaarawi/gmwiki/internal/config"
	"github.com/omarshaarawi/gmwiki/internal/handler"
	"github.com/omarshaarawi/gmwiki/internal/logging"
	"github.com/omarshaarawi/gmwiki/internal/repository/memory"
	"github.com/omarshaarawi/gmwiki/internal/scheduler"
	"github.com/omarshaarawi/gmwiki/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	logging.Init(cfg.Log, os.Stdout)

	chessClient := chesscom.NewClient(cfg.ChessAPI)
	chessAPI := chesscom.NewAPI(chessClient)
	directory := service.NewDirectoryService(chessAPI, cfg.ChessAPI.FanOutLimit)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	sessions := memory.NewRepository()
	defer func() {
		if n := sessions.CloseAll(); n > 0 {
			slog.Info("Closed live clock sessions", "count", n)
		}
	}()

	h, err := handler.NewHandler(directory, sched, sessions, cfg.HTTP)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      h.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.TelegramBot.Enabled() {
		telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, directory)
		if err != nil {
			return fmt.Errorf("failed to start telegram bot: %w", err)
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	slog.Info("Shutting down gracefully...")

	// Hijacked websocket connections are not tracked by Shutdown; closing the
	// sessions ends their handlers.
	if n := sessions.CloseAll(); n > 0 {
		slog.Info("Closed live clock sessions", "count", n)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
