package feeder

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the feeder service
type Config struct {
	// Kafka settings
	BrokerAddr string
	Topic      string

	// Market settings
	Book           string // e.g., "BTC-USDT"
	ExternalSymbol string // e.g., "BTCUSDT"
	PriceSourceURL string // e.g., "https://api.binance.com"

	// Quoting parameters
	NumLevels         int
	BaseSpreadPercent float64
	PriceStepPercent  float64
	OrderSize         int64
	UpdateInterval    time.Duration

	// HTTP client settings
	HTTPTimeout time.Duration
	MaxRetries  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("FEEDER_BROKER_ADDR", "localhost:9092")
	v.SetDefault("FEEDER_TOPIC", "depthbook-orders")
	v.SetDefault("FEEDER_BOOK", "BTC-USDT")
	v.SetDefault("FEEDER_EXTERNAL_SYMBOL", "BTCUSDT")
	v.SetDefault("FEEDER_PRICE_SOURCE_URL", "https://api.binance.com")
	v.SetDefault("FEEDER_NUM_LEVELS", 3)
	v.SetDefault("FEEDER_BASE_SPREAD_PERCENT", 0.1)
	v.SetDefault("FEEDER_PRICE_STEP_PERCENT", 0.05)
	v.SetDefault("FEEDER_ORDER_SIZE", 100)
	v.SetDefault("FEEDER_UPDATE_INTERVAL_SECONDS", 10)
	v.SetDefault("FEEDER_HTTP_TIMEOUT_SECONDS", 5)
	v.SetDefault("FEEDER_MAX_RETRIES", 3)

	v.AutomaticEnv()

	cfg := &Config{
		BrokerAddr:        v.GetString("FEEDER_BROKER_ADDR"),
		Topic:             v.GetString("FEEDER_TOPIC"),
		Book:              v.GetString("FEEDER_BOOK"),
		ExternalSymbol:    v.GetString("FEEDER_EXTERNAL_SYMBOL"),
		PriceSourceURL:    v.GetString("FEEDER_PRICE_SOURCE_URL"),
		NumLevels:         v.GetInt("FEEDER_NUM_LEVELS"),
		BaseSpreadPercent: v.GetFloat64("FEEDER_BASE_SPREAD_PERCENT"),
		PriceStepPercent:  v.GetFloat64("FEEDER_PRICE_STEP_PERCENT"),
		OrderSize:         v.GetInt64("FEEDER_ORDER_SIZE"),
		UpdateInterval:    time.Duration(v.GetInt("FEEDER_UPDATE_INTERVAL_SECONDS")) * time.Second,
		HTTPTimeout:       time.Duration(v.GetInt("FEEDER_HTTP_TIMEOUT_SECONDS")) * time.Second,
		MaxRetries:        v.GetInt("FEEDER_MAX_RETRIES"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.BrokerAddr == "" {
		return fmt.Errorf("FEEDER_BROKER_ADDR must not be empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("FEEDER_TOPIC must not be empty")
	}
	if cfg.Book == "" {
		return fmt.Errorf("FEEDER_BOOK must not be empty")
	}
	if cfg.ExternalSymbol == "" {
		return fmt.Errorf("FEEDER_EXTERNAL_SYMBOL must not be empty")
	}
	if cfg.PriceSourceURL == "" {
		return fmt.Errorf("FEEDER_PRICE_SOURCE_URL must not be empty")
	}
	if cfg.NumLevels <= 0 {
		return fmt.Errorf("FEEDER_NUM_LEVELS must be positive")
	}
	if cfg.BaseSpreadPercent <= 0 {
		return fmt.Errorf("FEEDER_BASE_SPREAD_PERCENT must be positive")
	}
	if cfg.PriceStepPercent <= 0 {
		return fmt.Errorf("FEEDER_PRICE_STEP_PERCENT must be positive")
	}
	if cfg.OrderSize <= 0 {
		return fmt.Errorf("FEEDER_ORDER_SIZE must be positive")
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("FEEDER_UPDATE_INTERVAL_SECONDS must be positive")
	}
	return nil
}
