package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from an optional YAML file
// with env overrides on top.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`
	Sweeper struct {
		NumWorkers int   `yaml:"num_workers"`
		BatchSize  int32 `yaml:"batch_size"`
	} `yaml:"sweeper"`
	Outbox struct {
		PollIntervalSec int   `yaml:"poll_interval_sec"`
		BatchSize       int32 `yaml:"batch_size"`
		UseListener     bool  `yaml:"use_listener"`
	} `yaml:"outbox"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.NATS.Enabled = true
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Sweeper.NumWorkers = 4
	cfg.Sweeper.BatchSize = 25
	cfg.Outbox.PollIntervalSec = 2
	cfg.Outbox.BatchSize = 100
	cfg.Outbox.UseListener = true
	return cfg
}

// loadConfig reads the YAML config at path. A missing file is not an error:
// defaults plus env overrides apply.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	if v := os.Getenv("NATS_ENABLED"); v != "" {
		c.NATS.Enabled = v == "true" || v == "1"
	}
	c.Sweeper.NumWorkers = getEnvAsInt("SWEEPER_WORKERS", c.Sweeper.NumWorkers)
}

// OutboxPollInterval returns the worker poll cadence as a duration.
func (c *Config) OutboxPollInterval() time.Duration {
	return time.Duration(c.Outbox.PollIntervalSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
