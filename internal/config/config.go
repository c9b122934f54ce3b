// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	Server  ServerConfig  `koanf:"server"`
	Spotify SpotifyConfig `koanf:"spotify"`
	Planner PlannerConfig `koanf:"planner"`
	Store   StoreConfig   `koanf:"store"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	AllowedOrigins    []string      `koanf:"allowed_origins"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// SpotifyConfig holds the OAuth client registration and API endpoints.
type SpotifyConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	RedirectURI  string        `koanf:"redirect_uri"`
	APIBaseURL   string        `koanf:"api_base_url"`
	AuthURL      string        `koanf:"auth_url"`
	TokenURL     string        `koanf:"token_url"`
	CallTimeout  time.Duration `koanf:"call_timeout"`
}

// PlannerConfig tunes the recommendation fan-out.
type PlannerConfig struct {
	// Concurrency bounds in-flight recommendation calls. 1 is sequential.
	Concurrency int `koanf:"concurrency"`
}

// StoreConfig selects and tunes the code guard and playlist store.
type StoreConfig struct {
	Driver            string        `koanf:"driver"`
	RedisURL          string        `koanf:"redis_url"`
	CodeCooldown      time.Duration `koanf:"code_cooldown"`
	PlaylistCacheSize int           `koanf:"playlist_cache_size"`
	// PlaylistTTL of zero keeps entries until evicted.
	PlaylistTTL time.Duration `koanf:"playlist_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Addr:              ":4000",
			AllowedOrigins:    []string{"http://localhost:3000"},
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Spotify: SpotifyConfig{
			RedirectURI: "http://localhost:3000/callback",
			APIBaseURL:  "https://api.spotify.com/v1/",
			AuthURL:     "https://accounts.spotify.com/authorize",
			TokenURL:    "https://accounts.spotify.com/api/token",
			CallTimeout: 10 * time.Second,
		},
		Planner: PlannerConfig{
			Concurrency: 10,
		},
		Store: StoreConfig{
			Driver:            DriverMemory,
			RedisURL:          "redis://localhost:6379/0",
			CodeCooldown:      10 * time.Minute,
			PlaylistCacheSize: 10_000,
			PlaylistTTL:       24 * time.Hour,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify.client_id and spotify.client_secret are required", ErrInvalidConfig)
	}
	if c.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: spotify.redirect_uri is required", ErrInvalidConfig)
	}
	if c.Spotify.CallTimeout <= 0 {
		return fmt.Errorf("%w: spotify.call_timeout must be positive", ErrInvalidConfig)
	}
	if c.Planner.Concurrency < 1 {
		return fmt.Errorf("%w: planner.concurrency must be at least 1", ErrInvalidConfig)
	}
	switch c.Store.Driver {
	case DriverMemory:
		if c.Store.PlaylistCacheSize < 1 {
			return fmt.Errorf("%w: store.playlist_cache_size must be at least 1", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: store.redis_url is required for the redis driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Store.CodeCooldown <= 0 {
		return fmt.Errorf("%w: store.code_cooldown must be positive", ErrInvalidConfig)
	}
	if c.Store.PlaylistTTL < 0 {
		return fmt.Errorf("%w: store.playlist_ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}
