// Package parser turns raw ranking records into typed domain results.
//
// Parsing fails soft: a malformed event result is dropped with a warning so
// partial upstream data never aborts a whole report.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{ //nolint:gochecknoglobals // read-only table
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parser converts raw ranking entries into SeriesResult and EventResult values.
type Parser struct {
	logger logger.Logger
	now    func() time.Time
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Named("parser")
	}
	return p
}

// ExtractYear returns the first four-digit number in name, or fallback when
// there is none.
func ExtractYear(name string, fallback int) int {
	m := yearPattern.FindString(name)
	if m == "" {
		return fallback
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return fallback
	}
	return y
}

// ExtractYear infers the season of a series from its name, defaulting to
// the current calendar year.
func (p *Parser) ExtractYear(seriesName string) int {
	return ExtractYear(seriesName, p.now().Year())
}

// ParseDate parses upstream timestamps and plain dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseEventResult converts one raw result. It returns false when the
// record is malformed; the warning is logged here.
func (p *Parser) ParseEventResult(ctx context.Context, raw model.RawResult) (model.EventResult, bool) {
	res, err := parseEventResult(raw)
	if err != nil {
		p.logger.Warn(ctx, "dropping event result", logger.Error(err))
		metrics.RecordParseWarning("event")
		return model.EventResult{}, false
	}
	return res, true
}

func parseEventResult(raw model.RawResult) (model.EventResult, error) {
	if raw.EventDivision == nil || raw.EventDivision.Event == nil {
		return model.EventResult{}, fmt.Errorf("%w: missing eventDivision.event", ErrMalformedRecord)
	}
	ev := raw.EventDivision.Event
	if ev.Name == nil || strings.TrimSpace(*ev.Name) == "" {
		return model.EventResult{}, fmt.Errorf("%w: missing event name", ErrMalformedRecord)
	}
	if ev.Date == nil {
		return model.EventResult{}, fmt.Errorf("%w: event %q has no date", ErrMalformedRecord, *ev.Name)
	}
	date, err := ParseDate(*ev.Date)
	if err != nil {
		return model.EventResult{}, fmt.Errorf("%w: event %q: %w", ErrMalformedRecord, *ev.Name, err)
	}

	res := model.EventResult{EventName: *ev.Name, Date: date}

	place, ok, err := raw.Place.Int()
	if err != nil {
		return model.EventResult{}, fmt.Errorf("%w: event %q place: %w", ErrMalformedRecord, *ev.Name, err)
	}
	// places are positive; zero is treated as unranked
	if ok && place > 0 {
		res.Place = &place
	}

	points, ok, err := raw.Points.Float()
	if err != nil {
		return model.EventResult{}, fmt.Errorf("%w: event %q points: %w", ErrMalformedRecord, *ev.Name, err)
	}
	// zero points mean none were awarded
	if ok && points != 0 {
		res.Points = &points
	}
	return res, nil
}

// ParseSeriesResult converts one ranking entry of a series division.
// Malformed nested results are dropped; a series-level value that cannot be
// coerced returns an error wrapping ErrMalformedRecord.
func (p *Parser) ParseSeriesResult(ctx context.Context, seriesName, divisionName string, raw model.RawRanking) (model.SeriesResult, error) {
	place, _, err := raw.Place.Int()
	if err != nil {
		return model.SeriesResult{}, fmt.Errorf("%w: series %q place: %w", ErrMalformedRecord, seriesName, err)
	}
	points, _, err := raw.Points.Float()
	if err != nil {
		return model.SeriesResult{}, fmt.Errorf("%w: series %q points: %w", ErrMalformedRecord, seriesName, err)
	}

	results := make([]model.EventResult, 0, len(raw.Results))
	for _, r := range raw.Results {
		if ev, ok := p.ParseEventResult(ctx, r); ok {
			results = append(results, ev)
		}
	}

	return model.SeriesResult{
		SeriesName:   seriesName,
		SeriesYear:   p.ExtractYear(seriesName),
		DivisionName: divisionName,
		Place:        place,
		Points:       points,
		Results:      results,
	}, nil
}

// EmptySeriesResult is the placeholder series of an athlete without history.
func (p *Parser) EmptySeriesResult() model.SeriesResult {
	return model.SeriesResult{
		SeriesName:   model.NewAthleteSeries,
		SeriesYear:   p.now().Year(),
		DivisionName: model.NoDivision,
		Results:      []model.EventResult{},
	}
}
