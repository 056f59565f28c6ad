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

	"github.com/ashita-ai/fitcoach/internal/agent"
	"github.com/ashita-ai/fitcoach/internal/bridge"
	"github.com/ashita-ai/fitcoach/internal/config"
	"github.com/ashita-ai/fitcoach/internal/dataset"
	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/gemini"
	"github.com/ashita-ai/fitcoach/internal/server"
	"github.com/ashita-ai/fitcoach/internal/store"
	"github.com/ashita-ai/fitcoach/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("FITCOACH_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("fitcoach starting", "version", version, "port", cfg.Port, "model", cfg.Model)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer repo.Close()

	if err := repo.SeedDemoData(ctx); err != nil {
		slog.Warn("demo data seeding failed", "error", err)
	}

	provider := dataset.NewProvider(
		cfg.CacheDir, cfg.KaggleUsername, cfg.KaggleKey, logger,
		dataset.WithSnapshotter(repo),
	)
	filterSvc := exercise.New(provider, logger)

	// Transport selection happens exactly once, here.
	workoutTool := bridge.Select(cfg.MCPCommand, cfg.MCPArgs, filterSvc, logger)
	defer func() { _ = workoutTool.Close() }()

	coach := agent.New(
		gemini.NewClient(cfg.GeminiAPIKey),
		cfg.Model,
		workoutTool,
		agent.NewSessions(),
		logger,
	)

	srv := server.New(server.ServerConfig{
		Repo:                repo,
		Coach:               coach,
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
