package feed

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings of the order-command consumer.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string

	MinBytes int
	MaxBytes int
}

// LoadConfig loads consumer configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("FEED_BROKERS", "localhost:9092")
	v.SetDefault("FEED_TOPIC", "depthbook-orders")
	v.SetDefault("FEED_GROUP_ID", "depthbook")
	v.SetDefault("FEED_MIN_BYTES", 1)
	v.SetDefault("FEED_MAX_BYTES", 10*1024*1024)

	v.AutomaticEnv()

	cfg := &Config{
		Brokers:  strings.Split(v.GetString("FEED_BROKERS"), ","),
		Topic:    v.GetString("FEED_TOPIC"),
		GroupID:  v.GetString("FEED_GROUP_ID"),
		MinBytes: v.GetInt("FEED_MIN_BYTES"),
		MaxBytes: v.GetInt("FEED_MAX_BYTES"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Brokers) == 0 || cfg.Brokers[0] == "" {
		return fmt.Errorf("FEED_BROKERS must not be empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("FEED_TOPIC must not be empty")
	}
	if cfg.GroupID == "" {
		return fmt.Errorf("FEED_GROUP_ID must not be empty")
	}
	if cfg.MinBytes <= 0 || cfg.MaxBytes < cfg.MinBytes {
		return fmt.Errorf("FEED_MIN_BYTES/FEED_MAX_BYTES out of range")
	}
	return nil
}
