package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Server  ServerConfig  `toml:"server"`
	Tracker TrackerConfig `toml:"tracker"`
}

// SpotifyConfig contains Spotify API credentials and token storage settings.
type SpotifyConfig struct {
	ClientID         string `toml:"client_id"`
	ClientSecret     string `toml:"client_secret"`
	RedirectURI      string `toml:"redirect_uri"`
	RefreshTokenPath string `toml:"refresh_token_path"`
}

// ServerConfig contains WebSocket and OAuth callback server settings.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	AuthPort int    `toml:"auth_port"`
}

// TrackerConfig contains playback polling settings.
type TrackerConfig struct {
	RefreshIntervalMs int `toml:"refresh_interval_ms"`
	IdleBackoffMs     int `toml:"idle_backoff_ms"`
}

// Validate reports whether the config carries the credentials required to talk to Spotify.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrInvalidConfig)
	}
	return nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
