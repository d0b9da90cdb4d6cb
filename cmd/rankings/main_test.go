package main

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given the rankings CLI", t, func() {
		var stdout, stderr bytes.Buffer
		ctx := context.Background()

		Convey("When -help is passed", func() {
			code := run(ctx, []string{"-help"}, &stdout, &stderr)

			Convey("Then usage is printed", func() {
				So(code, ShouldEqual, 0)
				So(stdout.String(), ShouldContainSubstring, "-event")
			})
		})

		Convey("When -event is missing", func() {
			code := run(ctx, nil, &stdout, &stderr)

			Convey("Then it fails with a usage error", func() {
				So(code, ShouldEqual, 2)
				So(stderr.String(), ShouldContainSubstring, "missing -event")
			})
		})

		Convey("When an unknown flag is passed", func() {
			code := run(ctx, []string{"-pdf"}, &stdout, &stderr)

			Convey("Then it fails with a usage error", func() {
				So(code, ShouldEqual, 2)
			})
		})
	})
}
