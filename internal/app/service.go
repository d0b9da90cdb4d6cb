// Package service wires the upstream client, the fan-out pool and the
// domain packages into the operations served by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/fwtrank/internal/adapters/cache"
	"github.com/okian/fwtrank/internal/adapters/liveheats"
	"github.com/okian/fwtrank/internal/adapters/mq/worker"
	"github.com/okian/fwtrank/internal/adapters/repository"
	"github.com/okian/fwtrank/internal/domain/consolidate"
	"github.com/okian/fwtrank/internal/domain/exclusion"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/parser"
	"github.com/okian/fwtrank/internal/domain/report"
	"github.com/okian/fwtrank/internal/domain/stats"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

// Upstream is the subset of the Liveheats client the service needs.
type Upstream interface {
	worker.Fetcher
	EventAthletes(ctx context.Context, eventID string) (*liveheats.EventDetails, error)
	SeriesIDs(ctx context.Context, organisation string) ([]string, error)
	FutureEvents(ctx context.Context, w liveheats.EventWindow) ([]model.EventSummary, error)
}

// Service implements the API dependencies for the rankings system.
type Service struct {
	mu sync.RWMutex

	upstream     Upstream
	pool         *worker.Pool
	events       *cache.EventsCache
	scheduler    *cache.Scheduler
	reports      *repository.InMemoryStore
	consolidator *consolidate.Consolidator
	builder      *report.Builder

	// Configuration
	organisation  string
	entryStatuses []string
	excludedTerms []string
	workerCount   int
	window        liveheats.EventWindow
	eventsTTL     time.Duration
	refreshCron   string
	reportTTL     time.Duration
	now           func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// New constructs a Service on top of upstream.
func New(upstream Upstream, opts ...Option) (*Service, error) {
	s := &Service{
		upstream:      upstream,
		organisation:  "fwtglobal",
		entryStatuses: liveheats.DefaultEntryStatuses,
		workerCount:   runtime.NumCPU() * 2,
		window:        liveheats.EventWindow{FromYear: 2024, ToYear: 2029, Grace: 5 * 24 * time.Hour},
		eventsTTL:     24 * time.Hour,
		refreshCron:   cache.DefaultSchedule,
		reportTTL:     10 * time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.window.Organisation = s.organisation

	filter := exclusion.New(s.excludedTerms...)
	s.consolidator = consolidate.New(
		consolidate.WithParser(parser.New(parser.WithClock(s.now))),
		consolidate.WithAggregator(stats.New(stats.WithExclusion(filter))),
	)
	s.builder = report.NewBuilder(filter)
	s.pool = worker.NewPool(s.workerCount, upstream)
	s.reports = repository.NewInMemoryStore(
		repository.WithTTL(s.reportTTL),
		repository.WithClock(s.now),
	)

	events, err := cache.NewEventsCache(s.loadEvents,
		cache.WithTTL(s.eventsTTL),
		cache.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	s.events = events

	scheduler, err := cache.NewScheduler(s.events, s.refreshCron, nil)
	if err != nil {
		return nil, err
	}
	s.scheduler = scheduler
	return s, nil
}

// Start warms the event cache in the background and starts the refresh
// schedule and the report janitor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	s.scheduler.Start(runCtx)
	go func() {
		defer close(s.done)
		if s.reports.Enabled() {
			s.reports.Run(runCtx)
		}
	}()
	go func() {
		if err := s.events.Refresh(runCtx); err != nil {
			s.logger.Warn(runCtx, "initial event cache refresh failed", logger.Error(err))
		}
	}()

	s.started = true
	s.logger.Info(ctx, "rankings service started",
		logger.String("organisation", s.organisation),
		logger.Int("workers", s.pool.Size()),
		logger.String("refresh_cron", s.refreshCron),
		logger.Time("next_refresh", s.scheduler.Next(s.now())),
	)
	return nil
}

// Stop shuts down background jobs.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.scheduler.Stop()
	s.cancel()
	<-s.done
	s.started = false
	s.logger.Info(context.Background(), "rankings service stopped")
}

func (s *Service) loadEvents(ctx context.Context) ([]model.EventSummary, error) {
	return s.upstream.FutureEvents(ctx, s.window)
}

// Events returns the upcoming events, served from the cache.
func (s *Service) Events(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.events.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return events, nil
}

// RefreshEvents reloads the event list now.
func (s *Service) RefreshEvents(ctx context.Context) error {
	if err := s.events.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}

// Rankings fetches the ranking history of every athlete entered in eventID
// and returns the event name with the consolidated, bib-sorted records.
func (s *Service) Rankings(ctx context.Context, eventID string) (string, []model.RankingsData, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return "", nil, ErrInvalidEventID
	}

	var (
		details   *liveheats.EventDetails
		seriesIDs []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.upstream.EventAthletes(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		seriesIDs, err = s.upstream.SeriesIDs(gctx, s.organisation)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, liveheats.ErrEventNotFound) {
			return "", nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return "", nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	athleteIDs, bibs := details.Roster(s.entryStatuses)
	if len(athleteIDs) == 0 {
		s.logger.Info(ctx, "event has no entered athletes", logger.String("event_id", eventID))
		return details.Name, []model.RankingsData{}, nil
	}

	results, err := s.pool.FetchAll(ctx, seriesIDs, athleteIDs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	series, failed := worker.Collect(results)
	if failed > 0 && failed == len(seriesIDs) {
		return "", nil, fmt.Errorf("%w: every series fetch failed: %w", ErrUpstream, worker.FirstError(results))
	}
	if failed > 0 {
		s.logger.Warn(ctx, "some series could not be fetched",
			logger.String("event_id", eventID),
			logger.Int("failed", failed),
			logger.Int("series", len(seriesIDs)))
	}

	data := s.consolidator.Process(ctx, series, bibs, details.Identities(s.entryStatuses))
	return details.Name, data, nil
}

// AthleteData returns the rendered report of eventID, reusing a recent one
// when the report cache is enabled.
func (s *Service) AthleteData(ctx context.Context, eventID string) (report.EventReport, error) {
	eventID = strings.TrimSpace(eventID)
	if s.reports.Enabled() {
		if r, err := s.reports.Get(ctx, eventID); err == nil {
			metrics.RecordReportCacheHit()
			return r, nil
		}
	}

	name, data, err := s.Rankings(ctx, eventID)
	if err != nil {
		return report.EventReport{}, err
	}
	r := s.builder.Build(name, data)
	metrics.RecordReportBuilt()
	if s.reports.Enabled() {
		s.reports.Put(ctx, eventID, r)
	}
	return r, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	events, refreshed, loaded := s.events.Snapshot()
	out := map[string]interface{}{
		"started":       s.started,
		"organisation":  s.organisation,
		"workerCount":   s.pool.Size(),
		"eventsCached":  len(events),
		"eventsLoaded":  loaded,
		"reportsCached": s.reports.Count(ctx),
		"refreshCron":   s.refreshCron,
		"nextRefresh":   s.scheduler.Next(s.now()).Format(time.RFC3339),
	}
	if loaded {
		out["eventsRefreshedAt"] = refreshed.Format(time.RFC3339)
	}
	return out
}
