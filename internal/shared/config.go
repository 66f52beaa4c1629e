package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the credentials section of the config file.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Upstream    UpstreamConfig    `toml:"upstream"`
	Retry       RetryConfig       `toml:"retry"`
	Cache       CacheConfig       `toml:"cache"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	Prefix    string `toml:"prefix"`
	AssetsDir string `toml:"assets_dir"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// UpstreamConfig contains base URLs and timeouts for the upstream APIs.
type UpstreamConfig struct {
	SpotifyAPIURL   string `toml:"spotify_api_url"`
	SpotifyTokenURL string `toml:"spotify_token_url"`
	ReccoBeatsURL   string `toml:"reccobeats_url"`
	TimeoutMS       int    `toml:"timeout_ms"`
}

// Timeout returns the per-request upstream timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

// RetryConfig controls the retrying fetcher used for ReccoBeats calls.
type RetryConfig struct {
	MaxAttempts    int     `toml:"max_attempts"`
	InitialDelayMS int     `toml:"initial_delay_ms"`
	RateLimit      float64 `toml:"rate_limit"` // requests per second, 0 disables pacing
}

// InitialDelay returns the base backoff delay.
func (r RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMS) * time.Millisecond
}

// CacheConfig selects the token cache implementation: "memory", "sqlite" or "none".
type CacheConfig struct {
	Driver string `toml:"driver"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
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

// ResolveConfig loads the config at path when it exists and falls back to defaults otherwise.
// Environment overrides are applied in both cases.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	config.ApplyEnv(os.Getenv)
	return config, nil
}

// ApplyEnv overrides credentials with values from the environment lookup function.
//
// Empty values never clear a credential set in the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// Validate checks values that would otherwise fail at request time.
//
// Missing credentials are not a config error: they surface per request as MISSING_ENV_VARS.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Retry.InitialDelayMS < 0 || c.Upstream.TimeoutMS <= 0 {
		return fmt.Errorf("%w: retry.initial_delay_ms and upstream.timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.Cache.Driver {
	case "memory", "sqlite", "none":
	default:
		return fmt.Errorf("%w: unknown cache driver %q", ErrInvalidConfig, c.Cache.Driver)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process environment.
//
// Missing files are ignored and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
