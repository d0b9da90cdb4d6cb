package stats_test

import (
	"testing"
	"time"

	"github.com/okian/fwtrank/internal/domain/exclusion"
	"github.com/okian/fwtrank/internal/domain/model"
	"github.com/okian/fwtrank/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ev(name string, date time.Time, place int, points float64) model.EventResult {
	return model.EventResult{EventName: name, Date: date, Place: &place, Points: &points}
}

func series(name string, year, place int, results ...model.EventResult) model.SeriesResult {
	return model.SeriesResult{
		SeriesName:   name,
		SeriesYear:   year,
		DivisionName: "Ski Men",
		Place:        place,
		Results:      results,
	}
}

func TestCalculateEmpty(t *testing.T) {
	Convey("Given an athlete without series", t, func() {
		got := stats.New().Calculate(nil)

		Convey("Then every best is nil and the totals are zero", func() {
			So(got.BestResult, ShouldBeNil)
			So(got.OldestResult, ShouldBeNil)
			So(got.BestSeriesPlace, ShouldBeNil)
			So(got.TotalEvents, ShouldEqual, 0)
			So(got.TotalSeries, ShouldEqual, 0)
		})
	})
}

func TestCalculateBestResults(t *testing.T) {
	Convey("Given two events with different points and places", t, func() {
		a := stats.New()
		got := a.Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2023", 2023, 5,
				ev("Open Faces Kappl", day(2023, 1, 1), 3, 100)),
			series("Freeride Qualifier 2024", 2024, 2,
				ev("Open Faces Gurgl", day(2024, 1, 1), 1, 80)),
		})

		Convey("Then the highest points wins by points", func() {
			So(got.BestResult, ShouldNotBeNil)
			So(*got.BestResult.ByPoints.Points, ShouldEqual, 100.0)
		})

		Convey("Then the lowest place wins by rank even with fewer points", func() {
			So(*got.BestResult.ByRank.Place, ShouldEqual, 1)
			So(got.BestResult.ByRank.EventName, ShouldEqual, "Open Faces Gurgl")
		})

		Convey("Then the earliest result is the oldest", func() {
			So(got.OldestResult.Date.Equal(day(2023, 1, 1)), ShouldBeTrue)
		})

		Convey("Then the lowest series place is the best series", func() {
			So(got.BestSeriesPlace.SeriesName, ShouldEqual, "Freeride Qualifier 2024")
			So(got.TotalSeries, ShouldEqual, 2)
			So(got.TotalEvents, ShouldEqual, 2)
		})
	})

	Convey("Given two events sharing the lowest place", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2024", 2024, 1,
				ev("Open Faces Silvretta", day(2024, 1, 10), 2, 500),
				ev("Open Faces Obertauern", day(2024, 3, 10), 2, 400),
				ev("Open Faces Fieberbrunn", day(2024, 2, 10), 4, 300)),
		})

		Convey("Then the more recent one wins by rank", func() {
			So(got.BestResult.ByRank.EventName, ShouldEqual, "Open Faces Obertauern")
		})
	})

	Convey("Given equal points", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2024", 2024, 1,
				ev("First", day(2024, 1, 10), 2, 500),
				ev("Second", day(2024, 3, 10), 3, 500)),
		})

		Convey("Then the first occurrence wins by points", func() {
			So(got.BestResult.ByPoints.EventName, ShouldEqual, "First")
		})
	})

	Convey("Given events missing place or points", t, func() {
		points := 900.0
		got := stats.New().Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2024", 2024, 0,
				model.EventResult{EventName: "No place", Date: day(2020, 1, 1), Points: &points},
				ev("Complete", day(2024, 1, 1), 7, 10)),
		})

		Convey("Then they are left out of best and oldest", func() {
			So(got.BestResult.ByPoints.EventName, ShouldEqual, "Complete")
			So(got.OldestResult.EventName, ShouldEqual, "Complete")
		})

		Convey("Then a zero series place is not a best series", func() {
			So(got.BestSeriesPlace, ShouldBeNil)
		})
	})

	Convey("Given series with no valid event at all", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{series("Freeride Qualifier 2024", 2024, 3)})

		Convey("Then the best result pair is present but empty", func() {
			So(got.BestResult, ShouldNotBeNil)
			So(got.BestResult.ByPoints, ShouldBeNil)
			So(got.BestResult.ByRank, ShouldBeNil)
			So(got.OldestResult, ShouldBeNil)
		})
	})
}

func TestCalculateUnnamedSeries(t *testing.T) {
	Convey("Given an unnamed series with the best and oldest event", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("", 2020, 1,
				ev("Open Faces Obergurgl", day(2020, 1, 1), 1, 900)),
			series("Freeride Qualifier 2024", 2024, 4,
				ev("Open Faces Gurgl", day(2024, 1, 1), 2, 300)),
		})

		Convey("Then its events are left out of the best and oldest results", func() {
			So(got.BestResult.ByPoints.EventName, ShouldEqual, "Open Faces Gurgl")
			So(got.BestResult.ByRank.EventName, ShouldEqual, "Open Faces Gurgl")
			So(got.OldestResult.EventName, ShouldEqual, "Open Faces Gurgl")
			So(got.TotalEvents, ShouldEqual, 1)
		})
	})
}

func TestCalculateExclusion(t *testing.T) {
	Convey("Given an athlete with only a seeding list series", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Seeding List 2025", 2025, 1,
				ev("Open Faces Andorra", day(2025, 1, 5), 1, 750)),
		})

		Convey("Then totals and series bests ignore it", func() {
			So(got.TotalSeries, ShouldEqual, 0)
			So(got.TotalEvents, ShouldEqual, 0)
			So(got.BestSeriesPlace, ShouldBeNil)
		})

		Convey("Then best results still draw from its events", func() {
			So(got.BestResult.ByPoints, ShouldNotBeNil)
			So(*got.BestResult.ByPoints.Points, ShouldEqual, 750.0)
		})
	})

	Convey("Given national ranking series in singular and plural", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Swiss National Rankings 2024", 2024, 1, ev("A", day(2024, 1, 1), 1, 1)),
			series("national ranking FRA 2023", 2023, 1, ev("B", day(2023, 1, 1), 1, 1)),
		})

		Convey("Then both are excluded", func() {
			So(got.TotalSeries, ShouldEqual, 0)
			So(got.BestSeriesPlace, ShouldBeNil)
		})
	})

	Convey("Given a custom exclusion filter", t, func() {
		a := stats.New(stats.WithExclusion(exclusion.New("Junior")))
		got := a.Calculate([]model.SeriesResult{
			series("Junior Tour 2024", 2024, 1, ev("A", day(2024, 1, 1), 1, 1)),
			series("Seeding List 2024", 2024, 2, ev("B", day(2024, 1, 1), 1, 1)),
		})

		Convey("Then only its terms apply", func() {
			So(got.TotalSeries, ShouldEqual, 1)
			So(got.BestSeriesPlace.SeriesName, ShouldEqual, "Seeding List 2024")
		})
	})

	Convey("Given the synthetic new athlete series", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{{
			SeriesName:   model.NewAthleteSeries,
			SeriesYear:   2026,
			DivisionName: model.NoDivision,
		}})

		Convey("Then it does not count as a season", func() {
			So(got.TotalSeries, ShouldEqual, 0)
			So(got.TotalEvents, ShouldEqual, 0)
		})
	})
}

func TestCalculateTotals(t *testing.T) {
	Convey("Given the same event in two series of the same year", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2024 Region 1", 2024, 3, ev("Open Faces Kappl", day(2024, 1, 1), 2, 10)),
			series("Freeride Qualifier 2024 Region 2", 2024, 4, ev("Open Faces Kappl", day(2024, 1, 1), 2, 10)),
		})

		Convey("Then it counts once", func() {
			So(got.TotalEvents, ShouldEqual, 1)
			So(got.TotalSeries, ShouldEqual, 1)
		})
	})

	Convey("Given the same event name in series of different years", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("Freeride Qualifier 2023", 2023, 3, ev("Open Faces Kappl", day(2023, 1, 1), 2, 10)),
			series("Freeride Qualifier 2024", 2024, 4, ev("Open Faces Kappl", day(2024, 1, 1), 2, 10)),
		})

		Convey("Then it counts twice", func() {
			So(got.TotalEvents, ShouldEqual, 2)
			So(got.TotalSeries, ShouldEqual, 2)
		})
	})
}

func TestCalculateTiers(t *testing.T) {
	Convey("Given pro and challenger series", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("FWT Pro Tour 2024", 2024, 6,
				ev("Freeride World Tour Verbier", day(2024, 3, 30), 4, 1200),
				ev("Pro Fieberbrunn", day(2024, 3, 10), 2, 1500),
				ev("Xtreme Verbier", day(2024, 3, 31), 1, 2500)),
			series("FWT Pro Tour 2023", 2023, 3,
				ev("Pro Kicking Horse", day(2023, 2, 1), 5, 1500)),
			series("Challenger 2024 Region 1", 2024, 2,
				ev("Challenger Ordino", day(2024, 1, 20), 1, 900),
				ev("Open Faces Kappl", day(2024, 1, 5), 1, 1000)),
			series("Challenger 2023 Region 1", 2023, 1,
				ev("Challenger Baqueira", day(2023, 1, 20), 3, 500)),
		})

		Convey("Then the lowest place per tier is kept", func() {
			So(got.BestProPlace.SeriesName, ShouldEqual, "FWT Pro Tour 2023")
			So(got.BestChallengerPlace.SeriesName, ShouldEqual, "Challenger 2023 Region 1")
			So(got.BestSeriesPlace.SeriesName, ShouldEqual, "Challenger 2023 Region 1")
		})

		Convey("Then only qualifying event names count for the tier event", func() {
			So(got.BestProEvent.EventName, ShouldEqual, "Pro Fieberbrunn")
			So(got.BestChallengerEvent.EventName, ShouldEqual, "Challenger Ordino")
		})

		Convey("Then the overall best by points is not tier restricted", func() {
			So(got.BestResult.ByPoints.EventName, ShouldEqual, "Xtreme Verbier")
		})
	})

	Convey("Given a pro series without qualifying events", t, func() {
		got := stats.New().Calculate([]model.SeriesResult{
			series("FWT Pro Tour 2024", 2024, 0, ev("Xtreme Verbier", day(2024, 3, 31), 1, 2500)),
		})

		Convey("Then the tier bests stay empty", func() {
			So(got.BestProPlace, ShouldBeNil)
			So(got.BestProEvent, ShouldBeNil)
			So(got.BestChallengerEvent, ShouldBeNil)
		})
	})
}
