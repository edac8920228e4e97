package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/erain9/depthbook/pkg/db/queue"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Kafka struct {
		BrokerAddr string `yaml:"broker_addr"`
		DepthTopic string `yaml:"depth_topic"`
	} `yaml:"kafka"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	// Create default configuration
	config := &Config{}
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Redis.Addr = "localhost:6379"
	config.Redis.Prefix = "depthbook"
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.DepthTopic = "depthbook-depth"
	config.Otel.Endpoint = "localhost:4317"

	// Load configuration from file if specified
	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	// Point the depth queue at the configured broker
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.DepthTopic)

	return config, nil
}
