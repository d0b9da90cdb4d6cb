// Package worker fetches series rankings concurrently from a job queue.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fwtrank/internal/adapters/mq/queue"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultQueueCapacity    = 4096
)

// Fetch outcomes recorded in metrics.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Fetcher loads the rankings of one series. A nil result without error
// means the series holds none of the requested athletes.
type Fetcher interface {
	SeriesRankings(ctx context.Context, seriesID string, athleteIDs []string) (*model.SeriesRankings, error)
}

// Source is where workers read jobs from.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// sharedSource hands every worker of a pool the same job channel.
type sharedSource <-chan queue.Job

func (s sharedSource) Dequeue(context.Context) <-chan queue.Job { return s }

// Result is the outcome of one job. Series is nil when Err is set or the
// series had no matching athletes.
type Result struct {
	SeriesID string
	Series   *model.SeriesRankings
	Err      error
}

// InMemoryWorker runs jobs from a Source until it is drained.
type InMemoryWorker struct {
	source  Source
	fetcher Fetcher
	name    string
	logger  logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(source Source, fetcher Fetcher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:  source,
		fetcher: fetcher,
		name:    "worker",
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named("worker")
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs and sends one Result per job to results. It returns
// when the source is drained or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context, results chan<- Result) {
	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res := w.process(ctx, job)
			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) Result {
	start := time.Now()
	series, err := w.fetcher.SeriesRankings(ctx, job.SeriesID, job.AthleteIDs)
	res := Result{SeriesID: job.SeriesID, Series: series, Err: err}

	switch {
	case err != nil:
		metrics.RecordSeriesFetch(OutcomeError)
		w.logger.Warn(ctx, "series fetch failed",
			logger.String("series_id", job.SeriesID),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		res.Series = nil
	case series == nil:
		metrics.RecordSeriesFetch(OutcomeEmpty)
	default:
		metrics.RecordSeriesFetch(OutcomeOK)
		w.logger.Debug(ctx, "series fetched",
			logger.String("series_id", job.SeriesID),
			logger.String("series", series.SeriesName),
			logger.Int("divisions", len(series.Divisions)),
			logger.Duration("elapsed", time.Since(start)))
	}
	return res
}

// Pool fans series fetches out over a fixed number of workers.
type Pool struct {
	size          int
	fetcher       Fetcher
	queueCapacity int
	active        atomic.Int64
	logger        logger.Logger
}

// NewPool creates a pool of workerCount workers; a count below one picks a
// default based on the CPU count.
func NewPool(workerCount int, fetcher Fetcher, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		size:          workerCount,
		fetcher:       fetcher,
		queueCapacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Named("worker-pool")
	}
	return p
}

// Size returns the configured number of workers.
func (p *Pool) Size() int { return p.size }

// FetchAll fetches every series and returns one Result per series id, in
// the order of seriesIDs. Fetch failures are reported in Result.Err; the
// returned error is only set when the jobs could not be queued or ctx ended
// first.
func (p *Pool) FetchAll(ctx context.Context, seriesIDs, athleteIDs []string) ([]Result, error) {
	if len(seriesIDs) == 0 {
		return nil, nil
	}
	if len(seriesIDs) > p.queueCapacity {
		return nil, queue.ErrFull
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(seriesIDs)))
	for _, id := range seriesIDs {
		if err := q.Enqueue(ctx, queue.Job{SeriesID: id, AthleteIDs: athleteIDs}); err != nil {
			_ = q.Close()
			return nil, err
		}
	}
	_ = q.Close()

	n := p.size
	if n > len(seriesIDs) {
		n = len(seriesIDs)
	}

	jobs := sharedSource(q.Dequeue(ctx))
	results := make(chan Result, len(seriesIDs))
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		w := NewInMemoryWorker(jobs, p.fetcher,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger))
		wg.Add(1)
		metrics.UpdateWorkersActive(int(p.active.Add(1)))
		go func() {
			defer wg.Done()
			defer func() { metrics.UpdateWorkersActive(int(p.active.Add(-1))) }()
			w.Run(ctx, results)
		}()
	}
	wg.Wait()
	close(results)

	positions := make(map[string][]int, len(seriesIDs))
	for i, id := range seriesIDs {
		positions[id] = append(positions[id], i)
	}
	slots := make([]*Result, len(seriesIDs))
	received, failed := 0, 0
	for r := range results {
		pos := positions[r.SeriesID]
		if len(pos) == 0 {
			continue
		}
		positions[r.SeriesID] = pos[1:]
		r := r
		slots[pos[0]] = &r
		received++
		if r.Err != nil {
			failed++
		}
	}

	out := make([]Result, 0, received)
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}

	if err := ctx.Err(); err != nil && received < len(seriesIDs) {
		return out, err
	}
	p.logger.Info(ctx, "series fan-out complete",
		logger.Int("series", len(seriesIDs)),
		logger.Int("workers", n),
		logger.Int("failed", failed))
	return out, nil
}

// Collect keeps the series of successful, non-empty results and counts the
// failures.
func Collect(results []Result) ([]*model.SeriesRankings, int) {
	series := make([]*model.SeriesRankings, 0, len(results))
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Series != nil:
			series = append(series, r.Series)
		}
	}
	return series, failed
}

// FirstError returns the first fetch error, if any.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
