// Package model contains domain models passed between layers.
package model

import "time"

const (
	// NewAthleteSeries names the synthetic series attached to athletes
	// that have no ranking history.
	NewAthleteSeries = "New Athlete"
	// NoDivision is the division of the synthetic series.
	NoDivision = "No Division"
)

// Athlete is the identity of a competitor. Two values with the same ID are
// the same athlete within one aggregation run.
type Athlete struct {
	ID          string
	Name        string
	Nationality *string
	DOB         *time.Time
	Image       *string
	Bib         *string // event-scoped, not globally unique
}

// EventResult is one athlete's outcome in one event-division.
// A nil Place means unranked or no-show; a nil Points means no points awarded.
type EventResult struct {
	EventName string
	Date      time.Time
	Place     *int
	Points    *float64
}

// SeriesResult is one athlete's standing within a series and division.
// Place and Points are zero when the ranking carried no value.
type SeriesResult struct {
	SeriesName   string
	SeriesYear   int
	DivisionName string
	Place        int
	Points       float64
	Results      []EventResult
}

// BestResult pairs the best event by points with the best event by rank.
type BestResult struct {
	ByPoints *EventResult
	ByRank   *EventResult
}

// AthleteStats is derived from an athlete's series results and never read
// from upstream data directly.
type AthleteStats struct {
	BestResult          *BestResult
	OldestResult        *EventResult
	BestSeriesPlace     *SeriesResult
	BestProPlace        *SeriesResult
	BestChallengerPlace *SeriesResult
	BestProEvent        *EventResult
	BestChallengerEvent *EventResult
	TotalEvents         int
	TotalSeries         int // distinct series years
}

// RankingsData is the consolidated per-athlete record. SeriesResults holds
// every parsed series, excluded ones included.
type RankingsData struct {
	Athlete       Athlete
	Stats         *AthleteStats
	SeriesResults []SeriesResult
}

// EventSummary is an upcoming event as listed by the events cache.
type EventSummary struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}
