package table_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/okian/podium/internal/adapters/table"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
	"github.com/smartystreets/goconvey/convey"
)

const rawCSV = `Driver_ID,Driver,Constructor,Finish_Position,Status,Constructor_ID,Grid_Position,Qualifying_Time,Fastest_Lap_Time,Pit_Stop_Duration,Season,Circuit_Name,Race_ID
1,VER,Red Bull Racing,1.0,Finished,red_bull,1.0,0 days 00:01:29.708000,0 days 00:01:33.996000,22.1,2024,Bahrain Grand Prix,2024_1
11,PER,Red Bull Racing,2.0,Finished,red_bull,5.0,0 days 00:01:30.221000,,23.4,2024,Bahrain Grand Prix,2024_1
16,LEC,Ferrari,,Accident,ferrari,2.0,NaT,garbage,,2024,Bahrain Grand Prix,2024_1
`

func TestReadResults(t *testing.T) {
	convey.Convey("Given a raw table with the acquisition headers", t, func() {
		res, err := table.ReadResults(strings.NewReader(rawCSV))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every row is parsed", func() {
			convey.So(len(res.Rows), convey.ShouldEqual, 3)
			r := res.Rows[0]
			convey.So(r.DriverID, convey.ShouldEqual, 1)
			convey.So(r.DriverCode, convey.ShouldEqual, "VER")
			convey.So(r.ConstructorID, convey.ShouldEqual, "red_bull")
			convey.So(r.ConstructorName, convey.ShouldEqual, "Red Bull Racing")
			convey.So(r.Season, convey.ShouldEqual, 2024)
			convey.So(r.Round, convey.ShouldEqual, 1)
			convey.So(r.FinishPosition, convey.ShouldEqual, 1)
			convey.So(r.GridPosition, convey.ShouldEqual, 1)
			convey.So(r.CircuitName, convey.ShouldEqual, "Bahrain Grand Prix")
		})

		convey.Convey("Then a blank finish is unclassified", func() {
			convey.So(res.Rows[2].FinishPosition, convey.ShouldEqual, 0)
			convey.So(res.Rows[2].Status, convey.ShouldEqual, "Accident")
		})

		convey.Convey("Then durations are left as text for the normalizer", func() {
			convey.So(res.Raw.FastestLap[0], convey.ShouldEqual, "0 days 00:01:33.996000")
			convey.So(res.Raw.Qualifying[1], convey.ShouldEqual, "0 days 00:01:30.221000")
			convey.So(math.IsNaN(res.Rows[0].FastestLapSeconds), convey.ShouldBeTrue)
		})

		convey.Convey("Then unknown columns pass through", func() {
			convey.So(res.ExtraColumns, convey.ShouldResemble, []string{"Pit_Stop_Duration"})
			convey.So(res.Rows[1].Extra, convey.ShouldResemble, []string{"23.4"})
		})

		convey.Convey("When the features are written", func() {
			out, report, err := features.Build(res.Rows, res.Raw, features.DefaultWindows())
			convey.So(err, convey.ShouldBeNil)
			convey.So(report.Failures[model.ColFastestLap], convey.ShouldEqual, 1)

			var buf bytes.Buffer
			convey.So(table.WriteFeatures(&buf, out, res.ExtraColumns), convey.ShouldBeNil)

			convey.Convey("Then the header lists results, passthrough, then features", func() {
				header := strings.Split(strings.SplitN(buf.String(), "\n", 2)[0], ",")
				convey.So(header, convey.ShouldResemble, table.FeatureHeader(res.ExtraColumns))
				convey.So(len(strings.Split(strings.TrimSpace(buf.String()), "\n")), convey.ShouldEqual, 4)
			})

			convey.Convey("Then reading it back restores the records", func() {
				back, extra, err := table.ReadFeatures(&buf)
				convey.So(err, convey.ShouldBeNil)
				convey.So(extra, convey.ShouldResemble, res.ExtraColumns)
				convey.So(len(back), convey.ShouldEqual, 3)
				convey.So(back[0].FastestLapSeconds, convey.ShouldAlmostEqual, 93.996, 1e-9)
				convey.So(back[1].QualifyingGapToPole, convey.ShouldAlmostEqual, out[1].QualifyingGapToPole, 1e-9)
				convey.So(math.IsNaN(back[2].QualifyingGapToPole), convey.ShouldBeTrue)
				convey.So(back[2].RecentDNFCountL5, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a table without a round column", t, func() {
		in := "driver_id,constructor_id,season,race_id,grid_position,finish_position,status\n44,mercedes,2023,2023_12,3,2,Finished\n"
		res, err := table.ReadResults(strings.NewReader(in))

		convey.Convey("Then the round comes from the race id", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Rows[0].Round, convey.ShouldEqual, 12)
			convey.So(res.Raw.FastestLap, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a table with team names but no constructor id", t, func() {
		in := "driver_id,constructor,season,round,grid,position,status\n1,Ferrari,2024,1,1,1,Finished\n2,McLaren,2024,1,2,2,Finished\n3,Ferrari,2024,1,3,3,Finished\n"
		res, err := table.ReadResults(strings.NewReader(in))

		convey.Convey("Then ids are numbered in order of appearance", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Rows[0].ConstructorID, convey.ShouldEqual, "1")
			convey.So(res.Rows[1].ConstructorID, convey.ShouldEqual, "2")
			convey.So(res.Rows[2].ConstructorID, convey.ShouldEqual, "1")
		})
	})

	convey.Convey("Given structurally broken tables", t, func() {
		cases := []struct {
			name   string
			in     string
			column string
		}{
			{"no season", "driver_id,constructor_id,round,grid_position,finish_position,status\n1,a,1,1,1,Finished\n", model.ColSeason},
			{"no round or race id", "driver_id,constructor_id,season,grid_position,finish_position,status\n1,a,2024,1,1,Finished\n", model.ColRound},
			{"no constructor", "driver_id,season,round,grid_position,finish_position,status\n1,2024,1,1,1,Finished\n", model.ColConstructorID},
			{"header only without status", "driver_id,constructor_id,season,round,grid_position,finish_position\n", model.ColStatus},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" names the missing column", func() {
				_, err := table.ReadResults(strings.NewReader(tc.in))
				convey.So(errors.Is(err, table.ErrMissingColumn), convey.ShouldBeTrue)

				var ce *table.ColumnError
				convey.So(errors.As(err, &ce), convey.ShouldBeTrue)
				convey.So(ce.Column, convey.ShouldEqual, tc.column)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.column)
			})
		}
	})

	convey.Convey("Given a row with an unreadable season", t, func() {
		in := "driver_id,constructor_id,season,round,grid_position,finish_position,status\n1,a,twenty,1,1,1,Finished\n"
		_, err := table.ReadResults(strings.NewReader(in))

		convey.Convey("Then the row is rejected", func() {
			convey.So(errors.Is(err, features.ErrInvalidRow), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given empty input", t, func() {
		res, err := table.ReadResults(strings.NewReader(""))

		convey.Convey("Then the table is empty", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Rows, convey.ShouldBeEmpty)
		})

		convey.Convey("And writing it produces just a header", func() {
			var buf bytes.Buffer
			convey.So(table.WriteFeatures(&buf, nil, nil), convey.ShouldBeNil)
			convey.So(strings.TrimSpace(buf.String()), convey.ShouldEqual, strings.Join(table.FeatureHeader(nil), ","))
		})
	})
}

func TestPredictions(t *testing.T) {
	convey.Convey("Given a scored table with finish positions", t, func() {
		in := "Driver_ID,Driver,Race_ID,Win_Probability,Finish_Position\n1,VER,2024_1,0.8,1\n16,LEC,2024_1,0.3,\n4,NOR,2024_1,0.6,5\n"
		entries, err := table.ReadPredictions(strings.NewReader(in))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then outcomes come from the finish", func() {
			convey.So(len(entries), convey.ShouldEqual, 3)
			convey.So(entries[0].Actual, convey.ShouldEqual, 1)
			convey.So(entries[1].Actual, convey.ShouldEqual, 0)
			convey.So(entries[2].Actual, convey.ShouldEqual, 0)
			convey.So(entries[2].Probability, convey.ShouldEqual, 0.6)
		})

		convey.Convey("When the selection is written", func() {
			picked, err := podium.Select(entries, podium.DefaultPolicy())
			convey.So(err, convey.ShouldBeNil)

			var buf bytes.Buffer
			convey.So(table.WriteSelection(&buf, picked), convey.ShouldBeNil)

			convey.Convey("Then picks are ranked", func() {
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				convey.So(lines, convey.ShouldResemble, []string{
					"rank,driver_id,driver_code,race_id,podium_probability",
					"1,1,VER,2024_1,0.8",
					"2,4,NOR,2024_1,0.6",
				})
			})
		})
	})

	convey.Convey("Given predictions without outcomes", t, func() {
		entries, err := table.ReadPredictions(strings.NewReader("driver_id,race_id,podium_probability\n1,2025_20,0.4\n"))

		convey.Convey("Then the outcome is unknown", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(entries[0].Actual, convey.ShouldEqual, podium.Unknown)
		})
	})

	convey.Convey("Given a probability that is not a number", t, func() {
		_, err := table.ReadPredictions(strings.NewReader("driver_id,race_id,podium_probability\n1,2025_20,high\n"))

		convey.Convey("Then reading fails", func() {
			convey.So(errors.Is(err, table.ErrInvalidValue), convey.ShouldBeTrue)
		})
	})
}

func TestQualifyingAndMatrix(t *testing.T) {
	convey.Convey("Given a qualifying sheet", t, func() {
		in := "Driver_ID,Grid_Position,Qualifying_Time,Race_ID,Circuit_Name\n4,1,75.586,2025_20,Mexico City Grand Prix\n16,2,,2025_20,Mexico City Grand Prix\n"
		qs, err := table.ReadQualifying(strings.NewReader(in))

		convey.Convey("Then qualifiers keep sheet order and raw times", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(qs), convey.ShouldEqual, 2)
			convey.So(qs[0].DriverID, convey.ShouldEqual, 4)
			convey.So(qs[0].Qualifying, convey.ShouldEqual, "75.586")
			convey.So(qs[1].GridPosition, convey.ShouldEqual, 2)
		})
	})

	convey.Convey("Given a matrix with a lead column", t, func() {
		var buf bytes.Buffer
		err := table.WriteMatrix(&buf, []string{"a", "b"}, [][]float64{{1, math.NaN()}, {0.5, 2}},
			table.Column{Name: "driver_id", Values: []string{"1", "4"}})

		convey.Convey("Then missing cells are blank", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.TrimSpace(buf.String()), convey.ShouldEqual, "driver_id,a,b\n1,1,\n4,0.5,2")
		})
	})

	convey.Convey("Given a ragged matrix", t, func() {
		var buf bytes.Buffer
		err := table.WriteMatrix(&buf, []string{"a", "b"}, [][]float64{{1}})

		convey.Convey("Then writing fails", func() {
			convey.So(errors.Is(err, table.ErrMalformed), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a vocabulary round trip", t, func() {
		var buf bytes.Buffer
		convey.So(table.WriteVocabulary(&buf, "circuit_name", []string{"Bahrain Grand Prix", "Monaco Grand Prix"}), convey.ShouldBeNil)
		got, err := table.ReadVocabulary(&buf)

		convey.Convey("Then the categories come back in order", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, []string{"Bahrain Grand Prix", "Monaco Grand Prix"})
		})
	})
}

func TestWriteRawResults(t *testing.T) {
	convey.Convey("Given a parsed raw table", t, func() {
		res, err := table.ReadResults(strings.NewReader(rawCSV))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When it is written back with its duration text", func() {
			var buf bytes.Buffer
			convey.So(table.WriteRawResults(&buf, res), convey.ShouldBeNil)
			back, err := table.ReadResults(&buf)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the text survives unparsed", func() {
				convey.So(back.Raw.FastestLap, convey.ShouldResemble, res.Raw.FastestLap)
				convey.So(back.Raw.Qualifying[0], convey.ShouldEqual, "0 days 00:01:29.708000")
				convey.So(back.ExtraColumns, convey.ShouldResemble, res.ExtraColumns)
				convey.So(back.Rows[1].Extra, convey.ShouldResemble, []string{"23.4"})
			})
		})
	})
}

func TestPassthroughText(t *testing.T) {
	convey.Convey("Given extra cells that look like missing markers", t, func() {
		in := "Driver_ID,Constructor_ID,Grid_Position,Finish_Position,Status,Season,Race_ID,Note\n" +
			"1,red_bull,1,1,Finished,2024,2024_1,NA\n" +
			"11,red_bull,2,2,Finished,2024,2024_1,<nil>\n"
		res, err := table.ReadResults(strings.NewReader(in))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then they are read verbatim", func() {
			convey.So(res.Rows[0].Extra, convey.ShouldResemble, []string{"NA"})
			convey.So(res.Rows[1].Extra, convey.ShouldResemble, []string{"<nil>"})
		})

		convey.Convey("Then they are written back unchanged", func() {
			var buf bytes.Buffer
			convey.So(table.WriteResults(&buf, res.Rows, res.ExtraColumns), convey.ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			convey.So(lines[1], convey.ShouldEndWith, ",NA")
			convey.So(lines[2], convey.ShouldEndWith, ",<nil>")
		})
	})
}
