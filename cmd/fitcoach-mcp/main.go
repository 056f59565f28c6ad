package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ashita-ai/fitcoach/internal/config"
	"github.com/ashita-ai/fitcoach/internal/dataset"
	"github.com/ashita-ai/fitcoach/internal/exercise"
	"github.com/ashita-ai/fitcoach/internal/mcp"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	// stdout carries the protocol stream, so all logging goes to stderr.
	level := slog.LevelInfo
	if os.Getenv("FITCOACH_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	provider := dataset.NewProvider(cfg.CacheDir, cfg.KaggleUsername, cfg.KaggleKey, logger)
	svc := exercise.New(provider, logger)

	logger.Info("exercise tool server starting", "version", version)
	if err := mcp.New(svc, logger, version).ServeStdio(); err != nil {
		logger.Error("serve stdio", "error", err)
		return 1
	}
	return 0
}
