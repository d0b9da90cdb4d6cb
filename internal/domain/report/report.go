// Package report renders consolidated rankings into the JSON document served
// per event.
package report

import (
	"sort"
	"time"

	"github.com/okian/fwtrank/internal/domain/consolidate"
	"github.com/okian/fwtrank/internal/domain/exclusion"
	"github.com/okian/fwtrank/internal/domain/model"
)

// EventReport is the athlete report of one event.
type EventReport struct {
	EventName string          `json:"event_name"`
	Athletes  []AthleteReport `json:"athletes"`
}

// AthleteReport is one athlete of the report.
type AthleteReport struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Nationality   *string        `json:"nationality"`
	Bib           *string        `json:"bib"`
	Image         *string        `json:"image"`
	DOB           *string        `json:"dob"`
	Stats         StatsReport    `json:"stats"`
	SeriesResults []SeriesReport `json:"series_results"`
}

// StatsReport carries the totals and the bests that exist.
type StatsReport struct {
	TotalEvents          int         `json:"total_events"`
	TotalSeries          int         `json:"total_series"`
	BestResultByPoints   *Highlight  `json:"best_result_by_points,omitempty"`
	BestResultByRank     *Highlight  `json:"best_result_by_rank,omitempty"`
	OldestResult         *Highlight  `json:"oldest_result,omitempty"`
	BestSeries           *SeriesBest `json:"best_series,omitempty"`
	BestProSeries        *SeriesBest `json:"best_pro_series,omitempty"`
	BestChallengerSeries *SeriesBest `json:"best_challenger_series,omitempty"`
	BestProEvent         *Highlight  `json:"best_pro_event,omitempty"`
	BestChallengerEvent  *Highlight  `json:"best_challenger_event,omitempty"`
}

// Highlight is a single highlighted event result.
type Highlight struct {
	EventName string   `json:"event_name"`
	Points    *float64 `json:"points"`
	Place     *int     `json:"place"`
	Date      string   `json:"date"`
}

// SeriesBest is a highlighted series standing.
type SeriesBest struct {
	SeriesName string  `json:"series_name"`
	SeriesYear int     `json:"series_year"`
	Place      int     `json:"place"`
	Points     float64 `json:"points"`
}

// SeriesReport is one listed series with its events.
type SeriesReport struct {
	SeriesName   string       `json:"series_name"`
	SeriesYear   int          `json:"series_year"`
	DivisionName string       `json:"division_name"`
	Place        int          `json:"place"`
	Points       float64      `json:"points"`
	Events       []EventEntry `json:"events"`
}

// EventEntry is one event inside a listed series.
type EventEntry struct {
	EventName string   `json:"event_name"`
	Date      string   `json:"date"`
	Place     *int     `json:"place"`
	Points    *float64 `json:"points"`
}

// Builder assembles EventReports.
type Builder struct {
	filter exclusion.Filter
}

// NewBuilder creates a Builder that hides series matched by filter.
func NewBuilder(filter exclusion.Filter) *Builder {
	return &Builder{filter: filter}
}

// Build renders the report. Athletes are ordered by bib.
func (b *Builder) Build(eventName string, data []model.RankingsData) EventReport {
	sorted := append([]model.RankingsData(nil), data...)
	consolidate.SortByBib(sorted)

	out := EventReport{EventName: eventName, Athletes: make([]AthleteReport, 0, len(sorted))}
	for _, d := range sorted {
		out.Athletes = append(out.Athletes, b.athlete(d))
	}
	return out
}

func (b *Builder) athlete(d model.RankingsData) AthleteReport {
	a := AthleteReport{
		ID:            d.Athlete.ID,
		Name:          d.Athlete.Name,
		Nationality:   d.Athlete.Nationality,
		Bib:           d.Athlete.Bib,
		Image:         d.Athlete.Image,
		SeriesResults: make([]SeriesReport, 0, len(d.SeriesResults)),
	}
	if d.Athlete.DOB != nil {
		s := formatTime(*d.Athlete.DOB)
		a.DOB = &s
	}
	if d.Stats != nil {
		a.Stats = statsReport(d.Stats)
	}
	for _, s := range d.SeriesResults {
		if b.filter.Excludes(s.SeriesName) {
			continue
		}
		sr := SeriesReport{
			SeriesName:   s.SeriesName,
			SeriesYear:   s.SeriesYear,
			DivisionName: s.DivisionName,
			Place:        s.Place,
			Points:       s.Points,
			Events:       make([]EventEntry, 0, len(s.Results)),
		}
		for _, ev := range s.Results {
			sr.Events = append(sr.Events, EventEntry{
				EventName: ev.EventName,
				Date:      formatTime(ev.Date),
				Place:     ev.Place,
				Points:    ev.Points,
			})
		}
		a.SeriesResults = append(a.SeriesResults, sr)
	}
	return a
}

func statsReport(st *model.AthleteStats) StatsReport {
	r := StatsReport{
		TotalEvents:          st.TotalEvents,
		TotalSeries:          st.TotalSeries,
		OldestResult:         highlight(st.OldestResult),
		BestSeries:           seriesBest(st.BestSeriesPlace),
		BestProSeries:        seriesBest(st.BestProPlace),
		BestChallengerSeries: seriesBest(st.BestChallengerPlace),
		BestProEvent:         highlight(st.BestProEvent),
		BestChallengerEvent:  highlight(st.BestChallengerEvent),
	}
	if st.BestResult != nil {
		r.BestResultByPoints = highlight(st.BestResult.ByPoints)
		r.BestResultByRank = highlight(st.BestResult.ByRank)
	}
	return r
}

func highlight(ev *model.EventResult) *Highlight {
	if ev == nil {
		return nil
	}
	return &Highlight{
		EventName: ev.EventName,
		Points:    ev.Points,
		Place:     ev.Place,
		Date:      formatTime(ev.Date),
	}
}

func seriesBest(s *model.SeriesResult) *SeriesBest {
	if s == nil {
		return nil
	}
	return &SeriesBest{
		SeriesName: s.SeriesName,
		SeriesYear: s.SeriesYear,
		Place:      s.Place,
		Points:     s.Points,
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// SeriesNames lists the distinct series shown anywhere in the report, sorted.
func (r EventReport) SeriesNames() []string {
	set := make(map[string]struct{})
	for _, a := range r.Athletes {
		for _, s := range a.SeriesResults {
			set[s.SeriesName] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
