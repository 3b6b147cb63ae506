package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variable overrides.
const envPrefix = "SOYUZNIKRR_"

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Logs    LogsConfig    `koanf:"logs"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	HTTPAddr string `koanf:"http_addr"`
}

// LoggingConfig controls the terminal log output (the bus captures every
// record regardless of these settings).
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LogsConfig tunes the log bus and its streaming delivery.
type LogsConfig struct {
	// BufferCapacity bounds the ring buffer; older entries are evicted.
	BufferCapacity int `koanf:"buffer_capacity"`
	// HeartbeatInterval is how long an idle stream waits before emitting a
	// heartbeat frame.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`
	// WaitTimeout bounds a session's wait outright; must exceed
	// HeartbeatInterval so a missed wakeup cannot stall a session.
	WaitTimeout time.Duration `koanf:"wait_timeout"`
	// SSERetryMs is the client reconnect interval advertised on the stream.
	SSERetryMs int `koanf:"sse_retry_ms"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr: ":8248",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Logs: LogsConfig{
			BufferCapacity:    5000,
			HeartbeatInterval: 30 * time.Second,
			WaitTimeout:       35 * time.Second,
			SSERetryMs:        3000,
		},
	}
}

// Load merges defaults, an optional YAML file, and environment overrides,
// then validates the result. An empty path skips the file layer; a path
// that does not exist is an error.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the process relies on.
func (c Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	if c.Logs.BufferCapacity <= 0 {
		return fmt.Errorf("logs.buffer_capacity must be positive, got %d", c.Logs.BufferCapacity)
	}
	if c.Logs.HeartbeatInterval <= 0 {
		return fmt.Errorf("logs.heartbeat_interval must be positive, got %s", c.Logs.HeartbeatInterval)
	}
	if c.Logs.WaitTimeout <= c.Logs.HeartbeatInterval {
		return fmt.Errorf("logs.wait_timeout (%s) must exceed logs.heartbeat_interval (%s)",
			c.Logs.WaitTimeout, c.Logs.HeartbeatInterval)
	}
	if c.Logs.SSERetryMs <= 0 {
		return fmt.Errorf("logs.sse_retry_ms must be positive, got %d", c.Logs.SSERetryMs)
	}
	return nil
}
