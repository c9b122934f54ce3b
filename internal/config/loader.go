package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "MOODSHIFT_"
	// EnvConfigFile names the YAML file to layer over the defaults.
	EnvConfigFile = "MOODSHIFT_CONFIG"
	// EnvDotenvFile overrides the .env path.
	EnvDotenvFile = "MOODSHIFT_ENV_FILE"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New())
//  2. a .env file, if present, exported into the process environment
//  3. YAML file if MOODSHIFT_CONFIG is set
//  4. SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REDIRECT_URI
//  5. MOODSHIFT_* env vars, "__" separating nested keys
//     (MOODSHIFT_STORE__DRIVER -> store.driver)
func Load() (*Config, error) {
	dotenv := os.Getenv(EnvDotenvFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	// Existing variables win over the file.
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	spotifyEnv := env.Provider("SPOTIFY_", ".", func(s string) string {
		switch s {
		case "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI":
			return "spotify." + strings.ToLower(strings.TrimPrefix(s, "SPOTIFY_"))
		}
		return ""
	})
	if err := k.Load(spotifyEnv, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	prefixed := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if key == "server.allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	// Lists replace the default rather than merge into it.
	defaultOrigins := cfg.Server.AllowedOrigins
	cfg.Server.AllowedOrigins = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = defaultOrigins
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
