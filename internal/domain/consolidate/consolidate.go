// Package consolidate merges per-series ranking fetches into one record per
// athlete and attaches derived statistics.
package consolidate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/fwtrank/internal/domain/dedupe"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/parser"
	"github.com/okian/fwtrank/internal/domain/stats"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

const unknownName = "Unknown"

// Consolidator builds RankingsData from raw series rankings.
type Consolidator struct {
	parser     *parser.Parser
	aggregator *stats.Aggregator
	logger     logger.Logger
}

// New creates a Consolidator.
func New(opts ...Option) *Consolidator {
	c := &Consolidator{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("consolidate")
	}
	if c.parser == nil {
		c.parser = parser.New(parser.WithLogger(c.logger))
	}
	if c.aggregator == nil {
		c.aggregator = stats.New()
	}
	return c
}

// Process merges the fetched series into one RankingsData per athlete.
//
// Nil entries stand for failed fetches and are skipped. Every athlete id in
// bibs appears exactly once in the output; ids never met in the rankings get
// one empty "New Athlete" series and an identity taken from roster, or a
// synthetic "Athlete <bib>" name when roster has none. The result is sorted
// with SortByBib.
func (c *Consolidator) Process(ctx context.Context, series []*model.SeriesRankings, bibs map[string]string, roster map[string]*model.RawAthlete) []model.RankingsData {
	var (
		out   []model.RankingsData
		index = make(map[string]int)
		seen  = dedupe.New()
	)

	for _, s := range series {
		if s == nil {
			continue
		}
		for _, div := range s.Divisions {
			for _, r := range div.Rankings {
				if r.Athlete == nil || r.Athlete.ID == "" {
					continue
				}
				id := r.Athlete.ID

				res, err := c.parser.ParseSeriesResult(ctx, s.SeriesName, div.Name, r)
				if err != nil {
					c.logger.Warn(ctx, "skipping ranking entry",
						logger.String("series", s.SeriesName),
						logger.String("division", div.Name),
						logger.String("athlete_id", id),
						logger.Error(err))
					metrics.RecordParseWarning("series")
					continue
				}

				athlete := c.athlete(ctx, r.Athlete, bibs)
				if !seen.SeenAndRecord(ctx, id) {
					index[id] = len(out)
					out = append(out, model.RankingsData{Athlete: athlete})
				} else {
					mergeIdentity(&out[index[id]].Athlete, athlete)
				}
				out[index[id]].SeriesResults = append(out[index[id]].SeriesResults, res)
			}
		}
	}
	withResults := len(out)

	ids := make([]string, 0, len(bibs))
	for id := range bibs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id == "" || seen.SeenAndRecord(ctx, id) {
			continue
		}
		out = append(out, model.RankingsData{
			Athlete:       c.placeholder(ctx, id, bibs[id], roster[id]),
			SeriesResults: []model.SeriesResult{c.parser.EmptySeriesResult()},
		})
	}
	withoutResults := len(out) - withResults

	for i := range out {
		st := c.aggregator.Calculate(out[i].SeriesResults)
		out[i].Stats = &st
	}
	SortByBib(out)

	c.logger.Info(ctx, "rankings consolidated",
		logger.Int("series", len(series)),
		logger.Int("with_results", withResults),
		logger.Int("without_results", withoutResults))
	metrics.UpdateAthletesProcessed(withResults, withoutResults)
	return out
}

func (c *Consolidator) athlete(ctx context.Context, raw *model.RawAthlete, bibs map[string]string) model.Athlete {
	a := model.Athlete{
		ID:          raw.ID,
		Name:        unknownName,
		Nationality: nonEmpty(raw.Nationality),
		Image:       nonEmpty(raw.Image),
	}
	if raw.Name != nil && strings.TrimSpace(*raw.Name) != "" {
		a.Name = *raw.Name
	}
	if bib, ok := bibs[raw.ID]; ok && bib != "" {
		a.Bib = &bib
	}
	if dob := nonEmpty(raw.DOB); dob != nil {
		d, err := parser.ParseDate(*dob)
		if err != nil {
			c.logger.Warn(ctx, "ignoring athlete birth date",
				logger.String("athlete_id", raw.ID), logger.Error(err))
		} else {
			a.DOB = &d
		}
	}
	return a
}

// mergeIdentity fills fields of dst that are still empty from src.
func mergeIdentity(dst *model.Athlete, src model.Athlete) {
	if dst.Name == unknownName && src.Name != unknownName {
		dst.Name = src.Name
	}
	if dst.Nationality == nil {
		dst.Nationality = src.Nationality
	}
	if dst.DOB == nil {
		dst.DOB = src.DOB
	}
	if dst.Image == nil {
		dst.Image = src.Image
	}
	if dst.Bib == nil {
		dst.Bib = src.Bib
	}
}

// placeholder builds the identity of a rostered athlete without results.
func (c *Consolidator) placeholder(ctx context.Context, id, bib string, raw *model.RawAthlete) model.Athlete {
	a := model.Athlete{ID: id, Name: fmt.Sprintf("Athlete %s", id)}
	if bib != "" {
		a.Name = fmt.Sprintf("Athlete %s", bib)
		a.Bib = &bib
	}
	if raw == nil {
		return a
	}
	known := c.athlete(ctx, raw, nil)
	if known.Name != unknownName {
		a.Name = known.Name
	}
	a.Nationality = known.Nationality
	a.DOB = known.DOB
	a.Image = known.Image
	return a
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// BibKey is the sort key of a bib: its numeric value, or +Inf when the bib
// is missing or holds anything but ASCII digits.
func BibKey(bib *string) float64 {
	if bib == nil || *bib == "" {
		return math.Inf(1)
	}
	for _, r := range *bib {
		if r < '0' || r > '9' {
			return math.Inf(1)
		}
	}
	n, err := strconv.ParseFloat(*bib, 64)
	if err != nil {
		return math.Inf(1)
	}
	return n
}

// SortByBib orders athletes by bib ascending. Missing and non-numeric bibs
// go last and keep their relative order.
func SortByBib(data []model.RankingsData) {
	sort.SliceStable(data, func(i, j int) bool {
		return BibKey(data[i].Athlete.Bib) < BibKey(data[j].Athlete.Bib)
	})
}
