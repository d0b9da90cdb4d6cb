// Package config defines service configuration and its loading.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// CORSOrigins lists origins allowed to call the API; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// LiveheatsURL is the GraphQL endpoint.
	LiveheatsURL string `koanf:"liveheats_url"`
	// Organisation is the Liveheats short name whose series are ranked.
	Organisation string `koanf:"organisation"`
	// RequestTimeout bounds a single upstream request.
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// MaxRetries and RetryDelay control upstream retries with exponential backoff.
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
	// FetchWorkers sets how many series are fetched concurrently.
	FetchWorkers int `koanf:"fetch_workers"`

	// ExcludedSeriesTerms hides matching series from statistics and reports.
	ExcludedSeriesTerms []string `koanf:"excluded_series_terms"`
	// EntryStatuses selects which event entries count as participants.
	EntryStatuses []string `koanf:"entry_statuses"`

	// EventsRefreshCron schedules the event list refresh (five-field cron).
	EventsRefreshCron string `koanf:"events_refresh_cron"`
	// EventsCacheTTL is how long the event list is served without refresh.
	EventsCacheTTL time.Duration `koanf:"events_cache_ttl"`
	// EventsGracePeriod keeps events that started within this window.
	EventsGracePeriod time.Duration `koanf:"events_grace_period"`
	// SeriesYearFrom and SeriesYearTo bound the series scanned for events.
	SeriesYearFrom int `koanf:"series_year_from"`
	SeriesYearTo   int `koanf:"series_year_to"`

	// ReportCacheTTL keeps built athlete reports; zero disables the cache.
	ReportCacheTTL time.Duration `koanf:"report_cache_ttl"`
	// ReportDir is where the rankings CLI writes its files.
	ReportDir string `koanf:"report_dir"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		CORSOrigins:         []string{"*"},
		LiveheatsURL:        "https://liveheats.com/api/graphql",
		Organisation:        "fwtglobal",
		RequestTimeout:      30 * time.Second,
		MaxRetries:          3,
		RetryDelay:          time.Second,
		FetchWorkers:        runtime.NumCPU() * 2,
		ExcludedSeriesTerms: []string{"National Ranking", "Seeding List"},
		EntryStatuses:       []string{"confirmed", "waitlisted"},
		EventsRefreshCron:   "0 3 * * *",
		EventsCacheTTL:      24 * time.Hour,
		EventsGracePeriod:   5 * 24 * time.Hour,
		SeriesYearFrom:      2024,
		SeriesYearTo:        2029,
		ReportCacheTTL:      10 * time.Minute,
		ReportDir:           "reports",
	}
}

// values flattens c into koanf keys.
func (c *Config) values() map[string]any {
	return map[string]any{
		"log_level":             c.LogLevel,
		"log_format":            c.LogFormat,
		"addr":                  c.Addr,
		"cors_origins":          c.CORSOrigins,
		"liveheats_url":         c.LiveheatsURL,
		"organisation":          c.Organisation,
		"request_timeout":       c.RequestTimeout,
		"max_retries":           c.MaxRetries,
		"retry_delay":           c.RetryDelay,
		"fetch_workers":         c.FetchWorkers,
		"excluded_series_terms": c.ExcludedSeriesTerms,
		"entry_statuses":        c.EntryStatuses,
		"events_refresh_cron":   c.EventsRefreshCron,
		"events_cache_ttl":      c.EventsCacheTTL,
		"events_grace_period":   c.EventsGracePeriod,
		"series_year_from":      c.SeriesYearFrom,
		"series_year_to":        c.SeriesYearTo,
		"report_cache_ttl":      c.ReportCacheTTL,
		"report_dir":            c.ReportDir,
	}
}
