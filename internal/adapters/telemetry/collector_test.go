package telemetry_test

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/telemetry"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

type fakeProvider struct {
	mu          sync.Mutex
	events      []telemetry.Event
	race        map[int][]telemetry.RaceEntry
	quali       map[int][]telemetry.QualifyingEntry
	raceFails   map[int]int
	raceCalls   map[int]int
	alwaysFails map[int]bool
}

func (f *fakeProvider) Schedule(_ context.Context, season int) ([]telemetry.Event, error) {
	var out []telemetry.Event
	for _, ev := range f.events {
		if ev.Key.Season == season {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeProvider) RaceResults(_ context.Context, ev telemetry.Event) ([]telemetry.RaceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raceCalls[ev.Key.Round]++
	if f.alwaysFails[ev.Key.Round] {
		return nil, errors.New("timeout")
	}
	if f.raceFails[ev.Key.Round] > 0 {
		f.raceFails[ev.Key.Round]--
		return nil, errors.New("503")
	}
	return f.race[ev.Key.Round], nil
}

func (f *fakeProvider) QualifyingResults(_ context.Context, ev telemetry.Event) ([]telemetry.QualifyingEntry, error) {
	return f.quali[ev.Key.Round], nil
}

func newFake() *fakeProvider {
	ev := func(round int, name string) telemetry.Event {
		return telemetry.Event{Key: model.RaceKey{Season: 2024, Round: round}, Name: name}
	}
	return &fakeProvider{
		events: []telemetry.Event{ev(1, "Bahrain Grand Prix"), ev(2, "Saudi Arabian Grand Prix"), ev(3, "Australian Grand Prix")},
		race: map[int][]telemetry.RaceEntry{
			1: {
				{DriverNumber: 1, DriverCode: "VER", ConstructorName: "Red Bull", Grid: 1, Position: 1, Status: "Finished", FastestLap: "1:32.608"},
				{DriverNumber: 16, DriverCode: "LEC", ConstructorName: "Ferrari", Grid: 4, Status: "Brakes"},
			},
			2: {
				{DriverNumber: 1, DriverCode: "VER", ConstructorName: "Red Bull", Grid: 1, Position: 1, Status: "Finished"},
			},
		},
		quali: map[int][]telemetry.QualifyingEntry{
			1: {
				{DriverNumber: 1, Position: 1, Q1: "1:30.031", Q2: "1:29.374", Q3: "1:29.179"},
				{DriverNumber: 16, Position: 2, Q1: "1:30.100", Q2: "", Q3: ""},
			},
		},
		raceFails:   map[int]int{},
		raceCalls:   map[int]int{},
		alwaysFails: map[int]bool{},
	}
}

func TestCollector(t *testing.T) {
	convey.Convey("Given a provider with two finished races and one future race", t, func() {
		fake := newFake()
		fake.raceFails[2] = 2
		c := telemetry.NewCollector(fake, telemetry.WithMaxRetries(3), telemetry.WithRetryDelay(0))

		rows, err := c.Collect(context.Background(), 2024, 2024)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then transient failures are retried", func() {
			convey.So(fake.raceCalls[2], convey.ShouldEqual, 3)
			convey.So(len(rows), convey.ShouldEqual, 3)
		})

		convey.Convey("Then race and qualifying are merged", func() {
			ver := rows[0]
			convey.So(ver.RaceID, convey.ShouldEqual, "2024_1")
			convey.So(ver.CircuitName, convey.ShouldEqual, "Bahrain Grand Prix")
			convey.So(ver.QualifyingSeconds, convey.ShouldAlmostEqual, 89.179, 1e-9)
			convey.So(ver.FastestLapSeconds, convey.ShouldAlmostEqual, 92.608, 1e-9)
		})

		convey.Convey("Then the grid comes from qualifying", func() {
			convey.So(rows[1].GridPosition, convey.ShouldEqual, 2)
			convey.So(rows[1].FinishPosition, convey.ShouldEqual, 0)
			convey.So(math.IsNaN(rows[1].FastestLapSeconds), convey.ShouldBeTrue)
		})

		convey.Convey("Then the grid falls back to the race without qualifying", func() {
			convey.So(rows[2].GridPosition, convey.ShouldEqual, 1)
			convey.So(math.IsNaN(rows[2].QualifyingSeconds), convey.ShouldBeTrue)
		})

		convey.Convey("Then missing constructor ids are numbered by name", func() {
			convey.So(rows[0].ConstructorID, convey.ShouldEqual, "1")
			convey.So(rows[1].ConstructorID, convey.ShouldEqual, "2")
			convey.So(rows[2].ConstructorID, convey.ShouldEqual, "1")
		})
	})

	convey.Convey("Given several workers loading race weekends", t, func() {
		fake := newFake()
		fake.raceFails[1] = 1
		c := telemetry.NewCollector(fake, telemetry.WithWorkers(3), telemetry.WithRetryDelay(0))

		rows, err := c.Collect(context.Background(), 2024, 2024)

		convey.Convey("Then rows keep calendar order", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(rows), convey.ShouldEqual, 3)
			convey.So(rows[0].RaceID, convey.ShouldEqual, "2024_1")
			convey.So(rows[1].RaceID, convey.ShouldEqual, "2024_1")
			convey.So(rows[2].RaceID, convey.ShouldEqual, "2024_2")
			convey.So(fake.raceCalls[1], convey.ShouldEqual, 2)
			convey.So(fake.raceCalls[3], convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a race that never loads", t, func() {
		fake := newFake()
		fake.alwaysFails[1] = true
		c := telemetry.NewCollector(fake, telemetry.WithMaxRetries(2), telemetry.WithRetryDelay(0))

		rows, err := c.Collect(context.Background(), 2024, 2024)

		convey.Convey("Then it is skipped after the retries", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(fake.raceCalls[1], convey.ShouldEqual, 2)
			convey.So(len(rows), convey.ShouldEqual, 1)
			convey.So(rows[0].RaceID, convey.ShouldEqual, "2024_2")
		})
	})

	convey.Convey("Given a cancelled context during the retry pause", t, func() {
		fake := newFake()
		fake.alwaysFails[1] = true
		c := telemetry.NewCollector(fake, telemetry.WithMaxRetries(3), telemetry.WithRetryDelay(time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Collect(ctx, 2024, 2024)

		convey.Convey("Then collection stops", func() {
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a reversed season range", t, func() {
		_, err := telemetry.NewCollector(newFake()).Collect(context.Background(), 2025, 2022)

		convey.Convey("Then it is rejected", func() {
			convey.So(errors.Is(err, telemetry.ErrInvalidSeasons), convey.ShouldBeTrue)
		})
	})
}
