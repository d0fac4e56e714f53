package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/use-agent/wishgrab/api"
	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/engine"
	"github.com/use-agent/wishgrab/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("wishgrab starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"transports", len(cfg.Fetch.Transports),
	)

	// ── 3. Build the transport chain ────────────────────────────────
	engines, err := engine.Build(cfg.Fetch.Transports, engine.BuildOptions{
		PassthroughRPS:   cfg.Fetch.PassthroughRPS,
		PassthroughBurst: cfg.Fetch.PassthroughBurst,
	})
	if err != nil {
		slog.Error("failed to build transports", "error", err)
		os.Exit(1)
	}
	chain := engine.NewChain(engines, cfg.Fetch.AttemptTimeout, cfg.Fetch.MinBodyLength)
	slog.Info("transport chain ready",
		"order", chain.Names(),
		"attemptTimeout", cfg.Fetch.AttemptTimeout,
	)

	// ── 4. Scraper + router ─────────────────────────────────────────
	sc := scraper.New(chain)
	router := api.NewRouter(sc, chain.Names(), cfg, time.Now())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	})

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight scrapes get one full attempt window to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.AttemptTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	slog.Info("wishgrab stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
