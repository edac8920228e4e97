package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/erain9/depthbook/config"
	"github.com/erain9/depthbook/pkg/db/queue"
	"github.com/erain9/depthbook/pkg/feed"
	"github.com/erain9/depthbook/pkg/marketdata"
	mdredis "github.com/erain9/depthbook/pkg/marketdata/redis"
	"github.com/erain9/depthbook/pkg/otel"
	"github.com/erain9/depthbook/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Server.LogFormat == "pretty" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	// Initialize OpenTelemetry
	cleanup, err := otel.Init(otel.Config{
		ServiceVersion:   "1.0.0",
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer cleanup()

	metrics, err := otel.GetBookMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create book metrics")
	}

	// Outbound depth transports: Kafka for the firehose, Redis for the
	// latest-snapshot lookup the client uses.
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
	}

	publisher := marketdata.NewMultiPublisher(
		queue.NewPooledPublisher(),
		mdredis.NewRedisPublisher(redisClient, cfg.Redis.Prefix),
	)
	defer publisher.Close()

	// Book manager and command service
	manager := server.NewBookManager()
	defer manager.Close()

	service := server.NewBookService(manager, publisher, metrics)

	// Inbound order command feed
	feedCfg, err := feed.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load feed configuration")
	}

	consumer := feed.NewConsumer(feedCfg, service, logger)
	defer consumer.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Run(ctx)
	}()

	logger.Info().
		Str("brokers", cfg.Kafka.BrokerAddr).
		Str("topic", feedCfg.Topic).
		Msg("Depth book server started")

	// Wait for interrupt signal or feed failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("Feed consumer failed")
		}
	}

	cancel()
	logger.Info().Msg("Server shutdown complete")
}
