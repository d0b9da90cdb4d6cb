package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing into a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When a named logger writes a message with fields", func() {
			Named("parser").Warn(context.Background(), "dropped record",
				String("series", "FWT 2025"),
				Int("count", 2),
			)

			Convey("Then the line carries the fields and component", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "dropped record")
				So(line["series"], ShouldEqual, "FWT 2025")
				So(line["count"], ShouldEqual, float64(2))
				So(line["component"], ShouldEqual, "parser")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above the message level", func() {
			So(SetLevelString("error"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(strings.TrimSpace(buf.String()), ShouldBeEmpty)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "ERROR"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNewNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := NewNop()
		So(l, ShouldNotBeNil)
		l.Error(context.Background(), "ignored", Error(nil))
		So(l.Named("x"), ShouldNotBeNil)
	})
}
