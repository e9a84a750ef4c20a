package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestCLI(t *testing.T) {
	convey.Convey("Given a temporary workspace", t, func() {
		dir := t.TempDir()
		raw := filepath.Join(dir, "raw.csv")
		feats := filepath.Join(dir, "features.csv")
		data := filepath.Join(dir, "data")

		convey.Convey("When generating, building features and preparing", func() {
			_, err := run("", "generate", "--out", raw, "--seasons", "2", "--rounds", "4", "--teams", "3", "--seed", "3")
			convey.So(err, convey.ShouldBeNil)
			_, err = run("", "features", "--in", raw, "--out", feats)
			convey.So(err, convey.ShouldBeNil)
			_, err = run("", "prepare", "--in", feats, "--out-dir", data, "--train-rows", "24", "--validation-rows", "36")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the feature table has a row per result", func() {
				b, err := os.ReadFile(feats)
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.Count(strings.TrimSpace(string(b)), "\n"), convey.ShouldEqual, 48)
			})

			convey.Convey("Then the dataset files exist", func() {
				for _, name := range []string{"X_train.csv", "y_test.csv", "circuits.txt"} {
					_, err := os.Stat(filepath.Join(data, name))
					convey.So(err, convey.ShouldBeNil)
				}
			})

			convey.Convey("When building an upcoming race", func() {
				quali := filepath.Join(dir, "q.csv")
				convey.So(os.WriteFile(quali, []byte("driver_id,grid_position\n1,1\n2,2\n"), 0o600), convey.ShouldBeNil)

				out, err := run("", "upcoming", "--history", raw, "--qualifying", quali,
					"--race", "2024_1", "--circuit", "Bahrain Grand Prix",
					"--vocab", filepath.Join(data, "circuits.txt"), "--out", "-")

				convey.Convey("Then the rows go to stdout", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(out, convey.ShouldStartWith, "driver_id,driver_code,race_id,")
					convey.So(strings.Count(strings.TrimSpace(out), "\n"), convey.ShouldEqual, 2)
				})
			})
		})

		convey.Convey("When the upcoming race id is malformed", func() {
			_, err := run("", "upcoming", "--history", raw, "--qualifying", raw,
				"--race", "final", "--circuit", "x", "--vocab", raw)

			convey.Convey("Then it should fail before reading anything", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "--race")
			})
		})
	})

	convey.Convey("Given scored predictions on stdin", t, func() {
		scored := "driver_id,race_id,podium_probability,is_podium\n1,2024_1,0.9,1\n2,2024_1,0.3,1\n3,2024_1,0.2,0\n4,2024_1,0.1,1\n"

		convey.Convey("When evaluating", func() {
			out, err := run(scored, "evaluate")

			convey.Convey("Then the report is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "roc_auc:")
				convey.So(out, convey.ShouldContainSubstring, "podium_hit_rate:  0.6667 (2/3)")
			})
		})

		convey.Convey("When selecting with a raised threshold", func() {
			out, err := run(scored, "select", "--threshold", "0.95", "--size", "2")

			convey.Convey("Then the top two fall back into the selection", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				convey.So(len(lines), convey.ShouldEqual, 3)
				convey.So(lines[1], convey.ShouldStartWith, "1,1,")
			})
		})
	})

	convey.Convey("Given an invalid log level", t, func() {
		convey.Convey("Then commands still run at info", func() {
			_, err := run("driver_id,race_id,podium_probability\n1,2024_1,0.8\n", "select", "--log-level", "loud")
			convey.So(err, convey.ShouldBeNil)
		})
	})
}
