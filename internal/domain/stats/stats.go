// Package stats derives career statistics from an athlete's series results.
package stats

import (
	"strings"

	"github.com/okian/fwtrank/internal/domain/exclusion"
	"github.com/okian/fwtrank/internal/domain/model"
)

// Series and event name markers for the tier-specific bests.
const (
	proSeriesMarker        = "Pro"
	challengerSeriesMarker = "Challenger"
	worldTourEventMarker   = "Freeride World Tour"
)

// Aggregator computes AthleteStats. It holds no mutable state and is safe
// for concurrent use.
type Aggregator struct {
	filter exclusion.Filter
}

// New creates an Aggregator using the default exclusion terms unless
// WithExclusion is given.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{filter: exclusion.New()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type eventKey struct {
	name string
	year int
}

// Calculate derives the statistics of one athlete.
//
// Totals and series-level bests only consider series the filter keeps, while
// the best and oldest event results are drawn from every named series.
// All comparisons keep the first candidate on ties.
func (a *Aggregator) Calculate(series []model.SeriesResult) model.AthleteStats {
	var out model.AthleteStats
	if len(series) == 0 {
		return out
	}

	years := make(map[int]struct{})
	events := make(map[eventKey]struct{})
	var pool []model.EventResult

	for i := range series {
		s := &series[i]
		excluded := s.SeriesName == "" || a.filter.Excludes(s.SeriesName)

		if !excluded {
			if s.SeriesName != model.NewAthleteSeries {
				years[s.SeriesYear] = struct{}{}
			}
			for _, ev := range s.Results {
				events[eventKey{name: ev.EventName, year: s.SeriesYear}] = struct{}{}
			}
			out.BestSeriesPlace = lowerPlace(out.BestSeriesPlace, s)
		}

		if strings.Contains(s.SeriesName, proSeriesMarker) {
			out.BestProPlace = lowerPlace(out.BestProPlace, s)
			out.BestProEvent = topEvent(out.BestProEvent, s.Results, isProEvent)
		}
		if strings.Contains(s.SeriesName, challengerSeriesMarker) {
			out.BestChallengerPlace = lowerPlace(out.BestChallengerPlace, s)
			out.BestChallengerEvent = topEvent(out.BestChallengerEvent, s.Results, isChallengerEvent)
		}

		if s.SeriesName != "" {
			pool = append(pool, s.Results...)
		}
	}

	out.TotalSeries = len(years)
	out.TotalEvents = len(events)

	var byPoints, byRank, oldest *model.EventResult
	for i := range pool {
		ev := &pool[i]
		if ev.Place == nil || ev.Points == nil {
			continue
		}
		if byPoints == nil || *ev.Points > *byPoints.Points {
			byPoints = ev
		}
		if byRank == nil || rankedBefore(ev, byRank) {
			byRank = ev
		}
		if oldest == nil || ev.Date.Before(oldest.Date) {
			oldest = ev
		}
	}
	out.BestResult = &model.BestResult{
		ByPoints: clone(byPoints),
		ByRank:   clone(byRank),
	}
	out.OldestResult = clone(oldest)
	return out
}

// rankedBefore orders by place ascending, then by date descending.
func rankedBefore(a, b *model.EventResult) bool {
	if *a.Place != *b.Place {
		return *a.Place < *b.Place
	}
	return a.Date.After(b.Date)
}

// lowerPlace returns the series with the strictly lower non-zero place.
func lowerPlace(best *model.SeriesResult, s *model.SeriesResult) *model.SeriesResult {
	if s.Place == 0 {
		return best
	}
	if best == nil || s.Place < best.Place {
		c := *s
		return &c
	}
	return best
}

// topEvent returns the event with the strictly highest points among those
// accepted by match, starting from best.
func topEvent(best *model.EventResult, results []model.EventResult, match func(string) bool) *model.EventResult {
	for i := range results {
		ev := &results[i]
		if ev.Points == nil || !match(ev.EventName) {
			continue
		}
		if best == nil || *ev.Points > *best.Points {
			best = clone(ev)
		}
	}
	return best
}

func isProEvent(name string) bool {
	return strings.Contains(name, proSeriesMarker) || strings.Contains(name, worldTourEventMarker)
}

func isChallengerEvent(name string) bool {
	return strings.Contains(name, challengerSeriesMarker)
}

func clone(ev *model.EventResult) *model.EventResult {
	if ev == nil {
		return nil
	}
	c := *ev
	return &c
}
