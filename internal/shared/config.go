package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Service  ServiceConfig  `toml:"service"`
	Database DatabaseConfig `toml:"database"`
	Playback PlaybackConfig `toml:"playback"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
}

// ServiceConfig contains settings for the remote counter service.
type ServiceConfig struct {
	BaseURL     string `toml:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// DatabaseConfig contains local database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlaybackConfig contains playback session settings.
//
// PreviewLimitSecs is the interruption timer duration: continuous playback
// beyond this limit pauses the track and surfaces the platform-link prompt.
type PlaybackConfig struct {
	PreviewLimitSecs int `toml:"preview_limit_secs"`
}

// RefreshConfig contains settings for bulk counter refreshes.
type RefreshConfig struct {
	RateLimit  float64 `toml:"rate_limit"`
	NumWorkers int     `toml:"num_workers"`
}

// ServerConfig contains settings for the development counter service.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PreviewLimit returns the interruption timer duration, defaulting to 30s
// when unset or invalid.
func (c PlaybackConfig) PreviewLimit() time.Duration {
	if c.PreviewLimitSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PreviewLimitSecs) * time.Second
}

// Timeout returns the counter service request timeout, defaulting to 10s.
func (c ServiceConfig) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
