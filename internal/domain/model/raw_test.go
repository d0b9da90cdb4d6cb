package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/fwtrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	Convey("Given JSON scalars decoded into Number", t, func() {
		var v struct {
			A model.Number `json:"a"`
			B model.Number `json:"b"`
			C model.Number `json:"c"`
			D model.Number `json:"d"`
			E model.Number `json:"e"`
		}
		err := json.Unmarshal([]byte(`{"a": 3, "b": "12.5", "c": null, "d": "", "e": "abc"}`), &v)
		So(err, ShouldBeNil)

		Convey("Then numbers and numeric strings are present", func() {
			i, ok, err := v.A.Int()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 3)

			f, ok, err := v.B.Float()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(f, ShouldEqual, 12.5)
		})

		Convey("Then null and empty strings are absent", func() {
			So(v.C.Present(), ShouldBeFalse)
			So(v.D.Present(), ShouldBeFalse)
			_, ok, err := v.C.Int()
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
		})

		Convey("Then garbage is an error", func() {
			_, _, err := v.E.Float()
			So(err, ShouldNotBeNil)
			_, _, err = v.B.Int()
			So(err, ShouldNotBeNil)
		})

		Convey("Then a missing key is absent", func() {
			var w struct {
				X model.Number `json:"x"`
			}
			So(json.Unmarshal([]byte(`{}`), &w), ShouldBeNil)
			So(w.X.Present(), ShouldBeFalse)
		})
	})

	Convey("Given integral floats", t, func() {
		i, ok, err := model.NumberOf("4.0").Int()
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, 4)
	})
}

func TestRawRankingResults(t *testing.T) {
	Convey("Given a ranking entry with a broken nested result", t, func() {
		var r model.RawRanking
		err := json.Unmarshal([]byte(`{"athlete": {"id": "a1"}, "place": 2, "results": [
			{"place": 1, "points": 500, "eventDivision": {"event": {"name": "Ordino Pro", "date": "2024-01-20"}}},
			{"place": 2, "eventDivision": {"event": {"name": 7, "date": "2024-02-01"}}}
		]}`), &r)

		Convey("Then the entry decodes and the broken result is left empty", func() {
			So(err, ShouldBeNil)
			So(r.Athlete.ID, ShouldEqual, "a1")
			So(len(r.Results), ShouldEqual, 2)
			So(r.Results[0].EventDivision, ShouldNotBeNil)
			So(r.Results[1].EventDivision, ShouldBeNil)
		})
	})

	Convey("Given a ranking entry without results", t, func() {
		var r model.RawRanking
		So(json.Unmarshal([]byte(`{"athlete": {"id": "a1"}, "place": 1}`), &r), ShouldBeNil)
		So(r.Results, ShouldBeNil)
	})
}

func TestSeriesRankingsAthleteIDs(t *testing.T) {
	Convey("Given series rankings over two divisions", t, func() {
		s := &model.SeriesRankings{
			SeriesName: "FWT 2025",
			Divisions: []model.DivisionRankings{
				{Name: "Ski Men", Rankings: []model.RawRanking{
					{Athlete: &model.RawAthlete{ID: "a1"}},
					{Athlete: nil},
					{Athlete: &model.RawAthlete{ID: "a2"}},
				}},
				{Name: "Ski Men U18", Rankings: []model.RawRanking{
					{Athlete: &model.RawAthlete{ID: "a1"}},
					{Athlete: &model.RawAthlete{ID: ""}},
				}},
			},
		}

		Convey("Then ids are distinct and in first-seen order", func() {
			So(s.AthleteIDs(), ShouldResemble, []string{"a1", "a2"})
		})

		Convey("Then a nil receiver has no ids", func() {
			var none *model.SeriesRankings
			So(none.AthleteIDs(), ShouldBeEmpty)
		})
	})
}
