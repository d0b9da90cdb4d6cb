package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/fwtrank/pkg/logger"
)

// DefaultSchedule refreshes every day at 03:00 local time.
const DefaultSchedule = "0 3 * * *"

// Refresher is what the Scheduler triggers.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs a Refresher on a cron schedule.
type Scheduler struct {
	target   Refresher
	spec     string
	mu       sync.Mutex
	cron     *cron.Cron
	schedule cron.Schedule
	logger   logger.Logger
	timeout  time.Duration
}

// NewScheduler validates spec (standard five-field cron, DefaultSchedule
// when empty) and prepares a scheduler for target.
func NewScheduler(target Refresher, spec string, l logger.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, spec, err)
	}
	if l == nil {
		l = logger.Named("events-scheduler")
	}
	return &Scheduler{
		target:   target,
		spec:     spec,
		schedule: schedule,
		logger:   l,
		timeout:  5 * time.Minute,
	}, nil
}

// Start schedules the refresh job. Jobs run with a context derived from ctx.
// Starting a running scheduler replaces its job.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.cron = cron.New()
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		jobCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		s.logger.Info(jobCtx, "scheduled event cache refresh")
		if err := s.target.Refresh(jobCtx); err != nil {
			s.logger.Error(jobCtx, "scheduled refresh failed", logger.Error(err))
		}
	}))
	s.cron.Start()
	s.logger.Info(ctx, "event cache refresh scheduled",
		logger.String("schedule", s.spec),
		logger.Time("next", s.Next(time.Now())))
}

// Next returns the first run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Jobs returns the number of scheduled jobs; zero when stopped.
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// Stop stops scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}
