package service

import (
	"time"

	"github.com/okian/fwtrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithOrganisation sets the organisation whose series are ranked.
func WithOrganisation(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.organisation = name
		}
	}
}

// WithEntryStatuses sets the entry statuses that put an athlete on an event roster.
func WithEntryStatuses(statuses []string) Option {
	return func(s *Service) {
		if len(statuses) > 0 {
			s.entryStatuses = append([]string(nil), statuses...)
		}
	}
}

// WithExcludedSeriesTerms sets the series name terms hidden from statistics and reports.
func WithExcludedSeriesTerms(terms []string) Option {
	return func(s *Service) {
		s.excludedTerms = append([]string(nil), terms...)
	}
}

// WithWorkerCount sets the number of concurrent series fetches.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithEventWindow sets the year range of scanned series and how long a
// started event stays listed.
func WithEventWindow(fromYear, toYear int, grace time.Duration) Option {
	return func(s *Service) {
		if fromYear > 0 && toYear >= fromYear {
			s.window.FromYear = fromYear
			s.window.ToYear = toYear
		}
		if grace >= 0 {
			s.window.Grace = grace
		}
	}
}

// WithEventsCacheTTL sets how long the event list is served without refresh.
func WithEventsCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.eventsTTL = ttl
		}
	}
}

// WithEventsRefreshCron sets the wall-clock schedule of the event list refresh.
func WithEventsRefreshCron(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.refreshCron = spec
		}
	}
}

// WithReportCacheTTL sets how long built reports are reused; zero disables it.
func WithReportCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.reportTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
