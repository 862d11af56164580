package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vendzone/internal/api"
	"vendzone/internal/buildinfo"
	"vendzone/internal/config"
	"vendzone/internal/logging"
)

func main() {
	// Local overrides; absent in deployed environments.
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvDeps, err := api.NewServer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	defer func() { _ = srvDeps.Close() }()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           logMiddleware(logger, srvDeps.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("API listening", "addr", cfg.Addr(), "version", buildinfo.Version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("API stopped")
}

func logMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
