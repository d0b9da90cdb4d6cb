package liveheats

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/okian/fwtrank/internal/domain/dedupe"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/parser"
	"github.com/okian/fwtrank/pkg/logger"
)

// DefaultEntryStatuses are the entry statuses that put an athlete on the roster.
var DefaultEntryStatuses = []string{"confirmed", "waitlisted"} //nolint:gochecknoglobals // shared default

// Entry is one athlete entered in an event division.
type Entry struct {
	Athlete *model.RawAthlete `json:"athlete"`
	Status  string            `json:"status"`
	Bib     model.Number      `json:"bib"`
}

// EventDivision is one division of an event with its entries.
type EventDivision struct {
	Division struct {
		Name string `json:"name"`
	} `json:"division"`
	Entries []Entry `json:"entries"`
	Status  string  `json:"status"`
}

// EventDetails is an event with its divisions.
type EventDetails struct {
	Name           string          `json:"name"`
	Date           string          `json:"date"`
	Status         string          `json:"status"`
	EventDivisions []EventDivision `json:"eventDivisions"`
}

// Roster returns the athlete ids entered with one of statuses, in entry
// order and without duplicates, plus an id to bib mapping that holds every
// rostered id. Athletes without a bib map to "".
func (e *EventDetails) Roster(statuses []string) ([]string, map[string]string) {
	if len(statuses) == 0 {
		statuses = DefaultEntryStatuses
	}
	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}

	var ids []string
	bibs := make(map[string]string)
	if e == nil {
		return ids, bibs
	}
	for _, div := range e.EventDivisions {
		for _, entry := range div.Entries {
			if _, ok := allowed[entry.Status]; !ok || entry.Athlete == nil || entry.Athlete.ID == "" {
				continue
			}
			id := entry.Athlete.ID
			bib, seen := bibs[id]
			if !seen {
				ids = append(ids, id)
			}
			if bib == "" {
				bibs[id] = entry.Bib.String()
			}
		}
	}
	return ids, bibs
}

// Identities returns the athlete block of every id Roster would return for
// statuses. The first entry of an athlete wins unless it carries no name.
func (e *EventDetails) Identities(statuses []string) map[string]*model.RawAthlete {
	if len(statuses) == 0 {
		statuses = DefaultEntryStatuses
	}
	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}

	out := make(map[string]*model.RawAthlete)
	if e == nil {
		return out
	}
	for _, div := range e.EventDivisions {
		for _, entry := range div.Entries {
			if _, ok := allowed[entry.Status]; !ok || entry.Athlete == nil || entry.Athlete.ID == "" {
				continue
			}
			if prev, ok := out[entry.Athlete.ID]; ok && prev.Name != nil && *prev.Name != "" {
				continue
			}
			out[entry.Athlete.ID] = entry.Athlete
		}
	}
	return out
}

// EventAthletes fetches an event with its entries.
func (c *Client) EventAthletes(ctx context.Context, eventID string) (*EventDetails, error) {
	var resp struct {
		Event *EventDetails `json:"event"`
	}
	if err := c.execute(ctx, "event_athletes", eventAthletesQuery, map[string]any{"id": eventID}, &resp); err != nil {
		return nil, err
	}
	if resp.Event == nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	ids, _ := resp.Event.Roster(nil)
	c.logger.Info(ctx, "event loaded",
		logger.String("event_id", eventID),
		logger.String("event", resp.Event.Name),
		logger.Int("athletes", len(ids)))
	return resp.Event, nil
}

// SeriesRef identifies a series.
type SeriesRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var seriesYearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// SeriesByYears lists the organisation's series whose name carries a year
// in [from, to].
func (c *Client) SeriesByYears(ctx context.Context, organisation string, from, to int) ([]SeriesRef, error) {
	org, err := c.organisation(ctx, organisation)
	if err != nil {
		return nil, err
	}
	var out []SeriesRef
	for _, s := range org.Series {
		for _, m := range seriesYearPattern.FindAllString(s.Name, -1) {
			y, _ := strconv.Atoi(m)
			if y >= from && y <= to {
				out = append(out, SeriesRef{ID: s.ID, Name: s.Name})
				break
			}
		}
	}
	c.logger.Info(ctx, "series filtered by year",
		logger.Int("total", len(org.Series)),
		logger.Int("matching", len(out)),
		logger.Int("from", from),
		logger.Int("to", to))
	return out, nil
}

type seriesEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// EventsFromSeries collects the events of the given series dated at or
// after now minus grace. Events listed by several series appear once.
// A series that cannot be fetched is skipped with a warning. The result is
// ordered by date.
func (c *Client) EventsFromSeries(ctx context.Context, seriesIDs []string, now time.Time, grace time.Duration) ([]model.EventSummary, error) {
	cutoff := now.Add(-grace)
	seen := dedupe.New()
	var out []model.EventSummary

	for _, id := range seriesIDs {
		var resp struct {
			Series *struct {
				Events []seriesEvent `json:"events"`
			} `json:"series"`
		}
		if err := c.execute(ctx, "series_events", eventsBySeriesQuery, map[string]any{"id": id}, &resp); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn(ctx, "skipping series events", logger.String("series_id", id), logger.Error(err))
			continue
		}
		if resp.Series == nil {
			continue
		}
		for _, ev := range resp.Series.Events {
			date, err := parser.ParseDate(ev.Date)
			if err != nil {
				c.logger.Warn(ctx, "skipping event without usable date",
					logger.String("event_id", ev.ID), logger.Error(err))
				continue
			}
			if date.Before(cutoff) || seen.SeenAndRecord(ctx, ev.ID) {
				continue
			}
			out = append(out, model.EventSummary{ID: ev.ID, Name: ev.Name, Date: date})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	c.logger.Info(ctx, "upcoming events collected", logger.Int("events", len(out)))
	return out, nil
}

// EventWindow selects which events count as upcoming.
type EventWindow struct {
	Organisation string
	FromYear     int
	ToYear       int
	Grace        time.Duration
}

// FutureEvents lists upcoming events of the organisation's series in the
// window's year range.
func (c *Client) FutureEvents(ctx context.Context, w EventWindow) ([]model.EventSummary, error) {
	series, err := c.SeriesByYears(ctx, w.Organisation, w.FromYear, w.ToYear)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return []model.EventSummary{}, nil
	}
	ids := make([]string, 0, len(series))
	for _, s := range series {
		ids = append(ids, s.ID)
	}
	return c.EventsFromSeries(ctx, ids, c.now(), w.Grace)
}
