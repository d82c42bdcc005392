package spool

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the Engine.
type Config struct {
	// Workers is the number of worker goroutines processing jobs.
	Workers int `yaml:"workers"`

	// QueueCapacity bounds the job queue. While the queue holds this
	// many jobs, Submit blocks (backpressure). Zero means unbounded.
	QueueCapacity int `yaml:"queue_capacity"`

	// RateLimit is the maximum sustained jobs per second producers may
	// submit. Zero disables rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if RateLimit is set but RateBurst is zero.
	RateBurst int `yaml:"rate_burst"`

	// ShutdownTimeout is the maximum time Close waits for workers to
	// drain the backlog and terminate.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UnmarshalYAML decodes a Config node on top of the receiver's current
// values, so fields absent from the document are left untouched.
// shutdown_timeout is a Go duration string such as "30s" or "1m30s".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	aux := struct {
		Workers         int     `yaml:"workers"`
		QueueCapacity   int     `yaml:"queue_capacity"`
		RateLimit       float64 `yaml:"rate_limit"`
		RateBurst       int     `yaml:"rate_burst"`
		ShutdownTimeout string  `yaml:"shutdown_timeout"`
	}{
		Workers:       c.Workers,
		QueueCapacity: c.QueueCapacity,
		RateLimit:     c.RateLimit,
		RateBurst:     c.RateBurst,
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}

	c.Workers = aux.Workers
	c.QueueCapacity = aux.QueueCapacity
	c.RateLimit = aux.RateLimit
	c.RateBurst = aux.RateBurst
	if aux.ShutdownTimeout != "" {
		d, err := time.ParseDuration(aux.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         10,
		QueueCapacity:   0,
		ShutdownTimeout: 30 * time.Second,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("spool: read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("spool: parse config: %w", err)
	}
	return cfg, nil
}
