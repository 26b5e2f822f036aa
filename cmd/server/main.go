package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"status-sentiment/internal/app"
	"status-sentiment/internal/config"
	"status-sentiment/internal/feed/vk"
	"status-sentiment/internal/handler"
	"status-sentiment/internal/logging"
	"status-sentiment/internal/server"
	"status-sentiment/internal/service"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to the YAML config")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	a, err := app.Bootstrap(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to bootstrap application", zap.Error(err))
	}
	defer a.Close()

	authService, err := a.AuthService()
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}

	var feedHandler *handler.FeedHandler
	if cfg.VK.ClientID != "" {
		feedService := service.NewFeedService(a.Statuses, cfg.VK.PostLimit, logger.Named("feed"))
		newFetcher := func(accessToken string) (service.WallFetcher, error) {
			return vk.NewClient(accessToken, cfg.VK.APIVersion, logger.Named("vk"))
		}
		feedHandler = handler.NewFeedHandler(vk.NewOAuth(cfg.VK), feedService, authService, newFetcher, cfg.Features.FeedImport, logger)
		logger.Info("VK login enabled", zap.Bool("feed_import", cfg.Features.FeedImport))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewServer(server.Deps{
		DB:       a.DB,
		Statuses: a.Statuses,
		Auth:     authService,
		Feed:     feedHandler,
		Labels:   a.Artifacts.Labels.Names(),
	}, cfg.Server.ShutdownTimeout, logger)

	if err := srv.Run(ctx, ":"+cfg.Server.Port); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Application stopped.")
}
