// ABOUTME: Configuration loader for the admin client
// ABOUTME: Loads an optional .env file, then parses environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
)

type Config struct {
	// Backend
	APIURL  string        `env:"RERNG_API_URL" envDefault:"http://localhost:8080/api/v1"`
	Timeout time.Duration `env:"RERNG_TIMEOUT" envDefault:"30s"`

	// DetailCacheTTL caches series detail lookups; zero disables the cache
	DetailCacheTTL time.Duration `env:"RERNG_DETAIL_CACHE_TTL" envDefault:"60s"`

	// Local state (token, locale, theme) and debug.log live here
	ConfigDir string `env:"RERNG_CONFIG_DIR"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFiles (default ".env") into the process environment without
// overriding variables already set, then parses the environment. Missing env
// files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = ensureScheme(strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"))
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = storage.DefaultConfigDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("RERNG_API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("RERNG_API_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("RERNG_API_URL must include a host")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("RERNG_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.DetailCacheTTL < 0 {
		return fmt.Errorf("RERNG_DETAIL_CACHE_TTL must not be negative, got %s", c.DetailCacheTTL)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
