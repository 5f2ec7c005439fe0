package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given logger initialization", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When an unknown format is requested", func() {
			err := Init(WithFormat("xml"))

			Convey("Then Init fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When an unknown level is requested", func() {
			err := Init(WithLevel("loud"))

			Convey("Then Init fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithWriter(&buf), WithLevel("info")), ShouldBeNil)

		Convey("When a line is logged with fields and a run ID", func() {
			ctx := WithRunID(context.Background(), "run-1")
			Named("season").With(Int("week", 3)).Info(ctx, "projected",
				String("receiver", "Amon-Ra St. Brown"),
				Float64("points", 7.25),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries every attribute", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "projected")
				So(rec["component"], ShouldEqual, "season")
				So(rec["week"], ShouldEqual, 3.0)
				So(rec["receiver"], ShouldEqual, "Amon-Ra St. Brown")
				So(rec["points"], ShouldEqual, 7.25)
				So(rec["run_id"], ShouldEqual, "run-1")
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When a line is below the level", func() {
			Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)

		Convey("When the level is raised to error", func() {
			So(SetLevelString("ERROR"), ShouldBeNil)
			Get().Warn(context.Background(), "quiet")
			Get().Error(context.Background(), "loud")

			Convey("Then only errors are written", func() {
				out := buf.String()
				So(strings.Contains(out, "quiet"), ShouldBeFalse)
				So(out, ShouldContainSubstring, "loud")
			})
		})

		Convey("When the level string is accepted in any form", func() {
			for _, l := range []string{"debug", " info ", "warning", "warn", ""} {
				So(SetLevelString(l), ShouldBeNil)
			}
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Reset(func() {
			_ = SetLevelString("info")
		})
	})
}

func TestRunID(t *testing.T) {
	Convey("Given contexts with and without a run ID", t, func() {
		So(RunID(context.Background()), ShouldEqual, "")
		So(RunID(WithRunID(context.Background(), "abc")), ShouldEqual, "abc")
	})
}
