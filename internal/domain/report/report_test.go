package report_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/fwtrank/internal/domain/exclusion"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/report"
	"github.com/okian/fwtrank/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func sampleData() []model.RankingsData {
	kappl := model.EventResult{
		EventName: "Open Faces Kappl",
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Place:     ptr(2),
		Points:    ptr(800.0),
	}
	seeding := model.EventResult{
		EventName: "Seeding Event",
		Date:      time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		Place:     ptr(1),
		Points:    ptr(50.0),
	}
	series := []model.SeriesResult{
		{SeriesName: "Freeride Qualifier 2024", SeriesYear: 2024, DivisionName: "Ski Men", Place: 3, Points: 2000, Results: []model.EventResult{kappl}},
		{SeriesName: "Seeding List 2024", SeriesYear: 2024, DivisionName: "Ski Men", Place: 1, Points: 50, Results: []model.EventResult{seeding}},
	}
	st := stats.New().Calculate(series)
	newcomer := stats.New().Calculate(nil)
	return []model.RankingsData{
		{
			Athlete: model.Athlete{ID: "B", Name: "Athlete 30", Bib: ptr("30")},
			Stats:   &newcomer,
			SeriesResults: []model.SeriesResult{
				{SeriesName: model.NewAthleteSeries, SeriesYear: 2026, DivisionName: model.NoDivision},
			},
		},
		{
			Athlete: model.Athlete{
				ID: "A", Name: "Sam Rider", Bib: ptr("4"), Nationality: ptr("AT"),
				DOB: ptr(time.Date(1998, 7, 3, 0, 0, 0, 0, time.UTC)),
			},
			Stats:         &st,
			SeriesResults: series,
		},
	}
}

func TestBuild(t *testing.T) {
	Convey("Given consolidated rankings", t, func() {
		b := report.NewBuilder(exclusion.New())
		r := b.Build("Verbier Xtreme", sampleData())

		Convey("Then athletes are ordered by bib", func() {
			So(r.EventName, ShouldEqual, "Verbier Xtreme")
			So(len(r.Athletes), ShouldEqual, 2)
			So(r.Athletes[0].ID, ShouldEqual, "A")
			So(r.Athletes[1].ID, ShouldEqual, "B")
		})

		Convey("Then excluded series are hidden from the listing", func() {
			So(len(r.Athletes[0].SeriesResults), ShouldEqual, 1)
			So(r.Athletes[0].SeriesResults[0].SeriesName, ShouldEqual, "Freeride Qualifier 2024")
			So(r.Athletes[0].SeriesResults[0].Events[0].Date, ShouldEqual, "2024-01-10T00:00:00Z")
			So(r.SeriesNames(), ShouldResemble, []string{"Freeride Qualifier 2024", "New Athlete"})
		})

		Convey("Then stats carry the bests that exist", func() {
			s := r.Athletes[0].Stats
			So(s.TotalEvents, ShouldEqual, 1)
			So(s.BestResultByPoints.EventName, ShouldEqual, "Open Faces Kappl")
			So(s.BestResultByRank.EventName, ShouldEqual, "Seeding Event")
			So(s.OldestResult.Date, ShouldEqual, "2023-12-01T00:00:00Z")
			So(s.BestSeries.SeriesName, ShouldEqual, "Freeride Qualifier 2024")
			So(s.BestProSeries, ShouldBeNil)
			So(*r.Athletes[0].DOB, ShouldEqual, "1998-07-03T00:00:00Z")
		})

		Convey("When encoded as JSON", func() {
			raw, err := json.Marshal(r)
			So(err, ShouldBeNil)
			var doc struct {
				Athletes []struct {
					Bib   *string                    `json:"bib"`
					Stats map[string]json.RawMessage `json:"stats"`
				} `json:"athletes"`
			}
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then absent bests are omitted and totals always present", func() {
				newcomer := doc.Athletes[1].Stats
				So(newcomer, ShouldContainKey, "total_events")
				So(newcomer, ShouldContainKey, "total_series")
				So(newcomer, ShouldNotContainKey, "best_result_by_points")
				So(newcomer, ShouldNotContainKey, "oldest_result")
				So(doc.Athletes[0].Stats, ShouldContainKey, "best_series")
			})
		})
	})

	Convey("Given no athletes", t, func() {
		r := report.NewBuilder(exclusion.New()).Build("Empty Event", nil)

		Convey("Then the athlete list is empty, not null", func() {
			raw, err := json.Marshal(r)
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"event_name":"Empty Event","athletes":[]}`)
		})
	})

	Convey("Given the input order", t, func() {
		data := sampleData()
		report.NewBuilder(exclusion.New()).Build("Verbier Xtreme", data)

		Convey("Then building does not reorder the caller's slice", func() {
			So(data[0].Athlete.ID, ShouldEqual, "B")
		})
	})
}
