package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// Environment variables read by Load itself.
const (
	EnvPrefix  = "FWTRANK_"
	EnvFile    = "FWTRANK_CONFIG"
	EnvDotFile = "FWTRANK_ENV_FILE"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FWTRANK_CONFIG is set
//  3. env (prefix FWTRANK_), including variables from a .env file
//     (FWTRANK_ENV_FILE, default ".env") that are not already set
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")
	for key, val := range New().values() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("%w: default %s: %w", ErrLoadConfig, key, err)
		}
	}

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	dotenv := os.Getenv(EnvDotFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotenv, err)
	}

	// FWTRANK_FETCH_WORKERS -> fetch_workers; underscores are kept to match
	// the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)
	cfg.ExcludedSeriesTerms = cleanList(cfg.ExcludedSeriesTerms)
	cfg.EntryStatuses = cleanList(cfg.EntryStatuses)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if u, err := url.Parse(c.LiveheatsURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("liveheats_url %q is not an absolute URL", c.LiveheatsURL))
	}
	if strings.TrimSpace(c.Organisation) == "" {
		errs = append(errs, errors.New("organisation must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must not be negative"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry_delay must not be negative"))
	}
	if c.FetchWorkers < 1 {
		errs = append(errs, errors.New("fetch_workers must be at least 1"))
	}
	if _, err := cron.ParseStandard(c.EventsRefreshCron); err != nil {
		errs = append(errs, fmt.Errorf("events_refresh_cron %q: %w", c.EventsRefreshCron, err))
	}
	if c.EventsCacheTTL <= 0 {
		errs = append(errs, errors.New("events_cache_ttl must be positive"))
	}
	if c.EventsGracePeriod < 0 {
		errs = append(errs, errors.New("events_grace_period must not be negative"))
	}
	if c.SeriesYearFrom > c.SeriesYearTo {
		errs = append(errs, fmt.Errorf("series_year_from %d is after series_year_to %d", c.SeriesYearFrom, c.SeriesYearTo))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
