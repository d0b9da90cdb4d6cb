package liveheats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/pkg/logger"
	"github.com/okian/fwtrank/pkg/metrics"
)

type division struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type organisationSeries struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	RankingsDivisions []division `json:"rankingsDivisions"`
}

type organisationData struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Series []organisationSeries `json:"series"`
}

func (c *Client) organisation(ctx context.Context, shortName string) (*organisationData, error) {
	var resp struct {
		Organisation *organisationData `json:"organisationByShortName"`
	}
	if err := c.execute(ctx, "organisation_series", organisationSeriesQuery, map[string]any{"shortName": shortName}, &resp); err != nil {
		return nil, err
	}
	if resp.Organisation == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrganisationNotFound, shortName)
	}
	return resp.Organisation, nil
}

// SeriesIDs lists the organisation's series that publish rankings.
func (c *Client) SeriesIDs(ctx context.Context, organisation string) ([]string, error) {
	org, err := c.organisation(ctx, organisation)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(org.Series))
	for _, s := range org.Series {
		if len(s.RankingsDivisions) > 0 {
			ids = append(ids, s.ID)
		}
	}
	c.logger.Debug(ctx, "ranking series listed",
		logger.String("organisation", organisation),
		logger.Int("series", len(ids)))
	return ids, nil
}

// validSeriesID rejects ids the upstream is known to list as placeholders.
func validSeriesID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && !strings.EqualFold(id, "id")
}

// SeriesRankings fetches the rankings of every division of a series,
// keeping only athletes in athleteIDs. It returns nil without error when
// the id is invalid, the series is unknown, or no athlete matched.
func (c *Client) SeriesRankings(ctx context.Context, seriesID string, athleteIDs []string) (*model.SeriesRankings, error) {
	if !validSeriesID(seriesID) {
		c.logger.Debug(ctx, "skipping invalid series id", logger.String("series_id", seriesID))
		return nil, nil
	}

	var divs struct {
		Series *struct {
			Name              string     `json:"name"`
			RankingsDivisions []division `json:"rankingsDivisions"`
		} `json:"series"`
	}
	if err := c.execute(ctx, "series_divisions", divisionsQuery, map[string]any{"id": seriesID}, &divs); err != nil {
		return nil, err
	}
	if divs.Series == nil || len(divs.Series.RankingsDivisions) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(athleteIDs))
	for _, id := range athleteIDs {
		wanted[id] = struct{}{}
	}

	out := &model.SeriesRankings{SeriesID: seriesID, SeriesName: divs.Series.Name}
	for _, d := range divs.Series.RankingsDivisions {
		var resp struct {
			Series *struct {
				Rankings []json.RawMessage `json:"rankings"`
			} `json:"series"`
		}
		vars := map[string]any{"id": seriesID, "divisionId": d.ID}
		if err := c.execute(ctx, "series_rankings", seriesRankingsQuery, vars, &resp); err != nil {
			return nil, fmt.Errorf("series %s division %s: %w", seriesID, d.Name, err)
		}
		if resp.Series == nil {
			continue
		}
		var matched []model.RawRanking
		for i, raw := range resp.Series.Rankings {
			var r model.RawRanking
			if err := json.Unmarshal(raw, &r); err != nil {
				c.logger.Warn(ctx, "skipping malformed ranking entry",
					logger.String("series", out.SeriesName),
					logger.String("division", d.Name),
					logger.Int("index", i),
					logger.Error(err))
				metrics.RecordParseWarning("ranking")
				continue
			}
			if r.Athlete == nil {
				continue
			}
			if _, ok := wanted[r.Athlete.ID]; ok {
				matched = append(matched, r)
			}
		}
		if len(matched) > 0 {
			out.Divisions = append(out.Divisions, model.DivisionRankings{Name: d.Name, Rankings: matched})
			c.logger.Debug(ctx, "division matched",
				logger.String("series", out.SeriesName),
				logger.String("division", d.Name),
				logger.Int("athletes", len(matched)))
		}
	}
	if len(out.Divisions) == 0 {
		return nil, nil
	}
	return out, nil
}
