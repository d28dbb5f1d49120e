// Hearth is a self-hosted family finance hub: shared expenses and debts with
// peer approval, invite links for joining a family, and live change
// notifications over WebSocket.
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

	"github.com/joho/godotenv"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/logging"
	"github.com/dukerupert/hearth/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Missing .env is fine; config falls back to real environment variables.
	_ = godotenv.Load()

	logger := logging.Setup(env("HEARTH_LOG_LEVEL", "info"))

	port := env("HEARTH_PORT", "8080")
	dbPath := env("HEARTH_DB_PATH", "hearth.db")
	baseURL := env("HEARTH_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, logger, server.Config{
		BaseURL:       baseURL,
		PostmarkToken: os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkFrom:  env("POSTMARK_FROM_EMAIL", "hearth@localhost"),
	})

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweep(ctx, logger, srv)

	go func() {
		logger.Info("server starting", "addr", httpServer.Addr, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// sweep periodically clears expired sessions, expired invites, and stale rate
// limiter entries.
func sweep(ctx context.Context, logger *slog.Logger, srv *server.Server) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := srv.Sessions().DeleteExpired(); err != nil {
				logger.Error("sweep sessions", "error", err)
			} else if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			if n, err := srv.Invites().DeleteExpired(); err != nil {
				logger.Error("sweep invites", "error", err)
			} else if n > 0 {
				logger.Info("expired invites removed", "count", n)
			}
			srv.Limiter().Cleanup()
		case <-ctx.Done():
			return
		}
	}
}
