package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petasbytes/form-agent/internal/config"
	"github.com/petasbytes/form-agent/internal/provider"
	"github.com/petasbytes/form-agent/internal/runner"
	"github.com/petasbytes/form-agent/internal/server"
	"github.com/petasbytes/form-agent/internal/telemetry"
	"github.com/petasbytes/form-agent/session"
	"github.com/petasbytes/form-agent/tools"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $AGT_CONFIG)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	telemetry.Configure(cfg.ObserveJSON, cfg.EventsPath)

	ttl, _ := cfg.TTL()
	store, err := session.NewFileStore(cfg.DataDir, ttl)
	if err != nil {
		logger.Error("open session store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	var r *runner.Runner
	model, err := provider.New(cfg.ModelConfig())
	switch {
	case err != nil:
		logger.Error("provider", "error", err)
		os.Exit(1)
	case cfg.Provider == "anthropic" && cfg.AnthropicAPIKey == "":
		// Sessions and the tool route still work; only /api/chat needs a model
		logger.Warn("ANTHROPIC_API_KEY not set; chat disabled")
	default:
		r = runner.New(model, tools.Registry())
		r.MaxSteps = cfg.MaxSteps
		r.MaxTokens = cfg.MaxTokens
		r.Logger = logger
	}

	srv := server.New(store, r, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Addr) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}
