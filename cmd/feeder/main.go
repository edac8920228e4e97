package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erain9/depthbook/pkg/feeder"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := feeder.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender, err := feeder.NewKafkaCommandSender(cfg.BrokerAddr, cfg.Topic)
	if err != nil {
		logger.Error("Failed to create command sender", "error", err)
		os.Exit(1)
	}
	defer sender.Close()

	priceFetcher, err := feeder.NewPriceFetcher(cfg, logger)
	if err != nil {
		logger.Error("Failed to create price fetcher", "error", err)
		os.Exit(1)
	}
	defer priceFetcher.Close()

	strategy := feeder.NewLayeredSymmetricQuoting(cfg, logger)

	f := feeder.NewFeeder(cfg, logger, sender, priceFetcher, strategy)
	if err := f.Start(ctx); err != nil {
		logger.Error("Failed to start feeder", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := f.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Feeder service stopped successfully")
}
