package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/config"
	"github.com/garyjia/sip-workflow/internal/container"
	httpserver "github.com/garyjia/sip-workflow/internal/interfaces/http"
	"github.com/garyjia/sip-workflow/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting internship workflow service",
		zap.String("version", httpserver.Version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("lark_enabled", cfg.Lark.Enabled),
		zap.Bool("openai_enabled", cfg.OpenAI.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("webhook_enabled", cfg.Webhook.Enabled))

	if err := run(cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Service stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
	}()

	// Blocks until a shutdown signal arrives or the listener fails
	if err := c.Server().Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
