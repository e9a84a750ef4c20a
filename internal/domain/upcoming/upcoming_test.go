package upcoming_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/podium/internal/domain/encoding"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/split"
	"github.com/okian/podium/internal/domain/upcoming"
	"github.com/smartystreets/goconvey/convey"
)

// sequential runs the feature stages without the metrics-instrumented pipeline.
type sequential struct{}

func (sequential) Features(_ context.Context, rows []model.Result, raw features.RawDurations) ([]model.FeatureRecord, error) {
	out, _, err := features.Build(rows, raw, features.DefaultWindows())
	return out, err
}

func past(driver int, code, team string, round, finish int) model.Result {
	return model.Result{
		DriverID:          driver,
		DriverCode:        code,
		ConstructorID:     team,
		Season:            2025,
		Round:             round,
		CircuitName:       "Monza",
		GridPosition:      finish,
		FinishPosition:    finish,
		Status:            model.FinishedStatus,
		FastestLapSeconds: math.NaN(),
		QualifyingSeconds: math.NaN(),
	}
}

func column(in *upcoming.Input, name string) int {
	for i, c := range in.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func TestBuild(t *testing.T) {
	history := []model.Result{
		past(1, "VER", "red_bull", 1, 1),
		past(1, "VER", "red_bull", 2, 3),
		past(4, "NOR", "mclaren", 1, 2),
		past(4, "NOR", "mclaren", 2, 4),
	}
	enc := encoding.Fit([]string{"Monza", "Spa"})
	race := upcoming.Race{Key: model.RaceKey{Season: 2025, Round: 3}, Circuit: "Spa"}

	convey.Convey("Given history and a qualifying sheet with a rookie", t, func() {
		sheet := []upcoming.Qualifier{
			{DriverID: 4, GridPosition: 1, Qualifying: "1:40.000"},
			{DriverID: 1, GridPosition: 2, Qualifying: "1:40.500"},
			{DriverID: 99, ConstructorID: "sauber", GridPosition: 3, Qualifying: ""},
		}

		in, err := upcoming.Build(context.Background(), sequential{}, history, sheet, race, enc)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then rows follow the sheet", func() {
			convey.So(len(in.Records), convey.ShouldEqual, 3)
			convey.So(in.Records[0].DriverID, convey.ShouldEqual, 4)
			convey.So(in.Records[0].RaceID, convey.ShouldEqual, "2025_3")
			convey.So(in.Columns, convey.ShouldResemble, split.Columns(enc))
		})

		convey.Convey("Then constructor and code come from the latest history row", func() {
			convey.So(in.Records[1].ConstructorID, convey.ShouldEqual, "red_bull")
			convey.So(in.Records[1].DriverCode, convey.ShouldEqual, "VER")
		})

		convey.Convey("Then features only see prior races", func() {
			avg := column(in, model.ColAvgFinishPositionL5)
			convey.So(in.X[0][avg], convey.ShouldEqual, 3)
			convey.So(in.X[1][avg], convey.ShouldEqual, 2)
		})

		convey.Convey("Then the rookie's gaps are filled with the median", func() {
			avg := column(in, model.ColAvgFinishPositionL5)
			gap := column(in, model.ColQualifyingGapToPole)
			convey.So(in.X[2][avg], convey.ShouldEqual, 2.5)
			convey.So(in.X[0][gap], convey.ShouldEqual, 0)
			convey.So(in.X[2][gap], convey.ShouldEqual, 0.25)
			convey.So(in.Imputed[model.ColAvgFinishPositionL5], convey.ShouldEqual, 1)
		})

		convey.Convey("Then the circuit is one-hot encoded", func() {
			convey.So(in.UnknownCircuit, convey.ShouldBeFalse)
			convey.So(in.X[0][column(in, "circuit_name_Spa")], convey.ShouldEqual, 1)
			convey.So(in.X[0][column(in, "circuit_name_Monza")], convey.ShouldEqual, 0)
		})

		convey.Convey("Then the history is left untouched", func() {
			convey.So(history[0].RaceID, convey.ShouldEqual, "")
		})
	})

	convey.Convey("Given a circuit the model never saw", t, func() {
		other := upcoming.Race{Key: race.Key, Circuit: "Suzuka"}
		in, err := upcoming.Build(context.Background(), sequential{}, history,
			[]upcoming.Qualifier{{DriverID: 1, GridPosition: 1}}, other, enc)

		convey.Convey("Then the circuit columns are all zero and flagged", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(in.UnknownCircuit, convey.ShouldBeTrue)
			convey.So(in.X[0][column(in, "circuit_name_Spa")], convey.ShouldEqual, 0)
			convey.So(in.X[0][column(in, "circuit_name_Monza")], convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given a rookie with no team on the sheet or in history", t, func() {
		timed := make([]model.Result, len(history))
		copy(timed, history)
		for i := range timed {
			timed[i].FastestLapSeconds = 90 + float64(i)
		}
		sheet := []upcoming.Qualifier{
			{DriverID: 1, GridPosition: 1, Qualifying: "1:40.000"},
			{DriverID: 99, GridPosition: 2, Qualifying: "1:40.200"},
		}

		in, err := upcoming.Build(context.Background(), sequential{}, timed, sheet, race, enc)

		convey.Convey("Then the row is still emitted under a placeholder team", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(in.Records), convey.ShouldEqual, 2)
			convey.So(in.Records[1].DriverID, convey.ShouldEqual, 99)
			convey.So(in.Records[1].ConstructorID, convey.ShouldEqual, "unknown-99")
			convey.So(in.UnknownConstructors, convey.ShouldResemble, []int{99})
		})

		convey.Convey("Then its team features are imputed from the other qualifiers", func() {
			rel := column(in, model.ColOverallReliabilityRateL22)
			pace := column(in, model.ColTeamAvgPaceDeltaL22)
			convey.So(math.IsNaN(in.Records[1].OverallReliabilityRateL22), convey.ShouldBeTrue)
			convey.So(in.X[1][rel], convey.ShouldEqual, 1)
			convey.So(in.X[1][pace], convey.ShouldEqual, in.X[0][pace])
			convey.So(in.Imputed[model.ColOverallReliabilityRateL22], convey.ShouldEqual, 1)
			convey.So(in.Imputed[model.ColTeamAvgPaceDeltaL22], convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given bad qualifying sheets", t, func() {
		cases := []struct {
			name  string
			sheet []upcoming.Qualifier
			kind  error
		}{
			{"an empty sheet", nil, upcoming.ErrNoQualifiers},
			{"a driver twice", []upcoming.Qualifier{{DriverID: 1}, {DriverID: 1}}, upcoming.ErrDuplicateQualifier},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				_, err := upcoming.Build(context.Background(), sequential{}, history, tc.sheet, race, enc)
				convey.So(errors.Is(err, tc.kind), convey.ShouldBeTrue)
			})
		}
	})
}
