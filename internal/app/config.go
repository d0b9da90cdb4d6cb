package service

import (
	"github.com/okian/fwtrank/internal/adapters/liveheats"
	"github.com/okian/fwtrank/internal/config"
	"github.com/okian/fwtrank/pkg/logger"
)

// NewFromConfig builds the Liveheats client and a Service from cfg.
func NewFromConfig(cfg *config.Config, l logger.Logger) (*Service, error) {
	if l == nil {
		l = logger.Get()
	}
	client := liveheats.New(cfg.LiveheatsURL,
		liveheats.WithTimeout(cfg.RequestTimeout),
		liveheats.WithMaxRetries(cfg.MaxRetries),
		liveheats.WithRetryDelay(cfg.RetryDelay),
		liveheats.WithMaxConcurrent(cfg.FetchWorkers),
		liveheats.WithLogger(l.Named("liveheats")),
	)
	return New(client,
		WithLogger(l.Named("service")),
		WithOrganisation(cfg.Organisation),
		WithEntryStatuses(cfg.EntryStatuses),
		WithExcludedSeriesTerms(cfg.ExcludedSeriesTerms),
		WithWorkerCount(cfg.FetchWorkers),
		WithEventWindow(cfg.SeriesYearFrom, cfg.SeriesYearTo, cfg.EventsGracePeriod),
		WithEventsCacheTTL(cfg.EventsCacheTTL),
		WithEventsRefreshCron(cfg.EventsRefreshCron),
		WithReportCacheTTL(cfg.ReportCacheTTL),
	)
}
