// Package synth generates plausible race seasons for fixtures and demos.
//
// Output is deterministic for a given Config: drivers are paired into
// constructors, car pace drifts between seasons, grid and finish orders
// follow pace plus noise, and some drivers retire. Durations are emitted as
// timedelta text with occasional blanks so they pass through the normalizer
// like acquired data.
package synth

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// Noise scales, in seconds.
const (
	skillSpread      = 0.4
	carSpread        = 0.6
	carDrift         = 0.25
	qualifyingNoise  = 0.15
	raceNoise        = 0.5
	lapNoise         = 0.3
	gridPenalty      = 0.05
	qualifyingOffset = -3.5
	lapOffset        = 1.5
	baseLapMin       = 78.0
	baseLapSpread    = 17
)

//nolint:gochecknoglobals // fixed name pools
var (
	circuits = []string{
		"Bahrain Grand Prix", "Saudi Arabian Grand Prix", "Australian Grand Prix",
		"Japanese Grand Prix", "Chinese Grand Prix", "Miami Grand Prix",
		"Emilia Romagna Grand Prix", "Monaco Grand Prix", "Canadian Grand Prix",
		"Spanish Grand Prix", "Austrian Grand Prix", "British Grand Prix",
		"Hungarian Grand Prix", "Belgian Grand Prix", "Dutch Grand Prix",
		"Italian Grand Prix", "Azerbaijan Grand Prix", "Singapore Grand Prix",
		"United States Grand Prix", "Mexico City Grand Prix", "Sao Paulo Grand Prix",
		"Las Vegas Grand Prix", "Qatar Grand Prix", "Abu Dhabi Grand Prix",
	}
	teamNames = []string{
		"Red Bull Racing", "Ferrari", "Mercedes", "McLaren", "Aston Martin",
		"Alpine", "Williams", "RB", "Kick Sauber", "Haas F1 Team",
	}
	driverCodes = []string{
		"VER", "PER", "LEC", "SAI", "HAM", "RUS", "NOR", "PIA", "ALO", "STR",
		"GAS", "OCO", "ALB", "SAR", "TSU", "RIC", "BOT", "ZHO", "MAG", "HUL",
	}
	retirements = []string{
		"Accident", "Collision", "Engine", "Gearbox", "Hydraulics",
		"Power Unit", "Brakes", "Retired",
	}
)

// Output is a generated result table with durations still as text.
type Output struct {
	Rows []model.Result
	Raw  features.RawDurations
}

type driver struct {
	id    int
	code  string
	team  int
	skill float64
}

type entrant struct {
	driver     *driver
	pace       float64
	qualifying float64
	grid       int
	score      float64
	retired    bool
}

// Generate builds cfg.Seasons seasons of cfg.Rounds races each.
func Generate(ctx context.Context, cfg Config) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // fixtures, not secrets

	drivers := make([]*driver, 2*cfg.Teams)
	for i := range drivers {
		drivers[i] = &driver{
			id:    i + 1,
			code:  driverCode(i),
			team:  i / 2,
			skill: rng.NormFloat64() * skillSpread,
		}
	}
	car := make([]float64, cfg.Teams)
	for t := range car {
		car[t] = rng.NormFloat64() * carSpread
	}

	n := cfg.Seasons * cfg.Rounds * len(drivers)
	out := &Output{
		Rows: make([]model.Result, 0, n),
		Raw: features.RawDurations{
			FastestLap: make([]string, 0, n),
			Qualifying: make([]string, 0, n),
		},
	}

	for s := 0; s < cfg.Seasons; s++ {
		if s > 0 {
			for t := range car {
				car[t] += rng.NormFloat64() * carDrift
			}
		}
		for r := 1; r <= cfg.Rounds; r++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generating season %d: %w", cfg.StartSeason+s, err)
			}
			key := model.RaceKey{Season: cfg.StartSeason + s, Round: r}
			race(rng, cfg, key, drivers, car, out)
		}
	}

	logger.Get().Info(ctx, "generated synthetic seasons",
		logger.Int("seasons", cfg.Seasons),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("rows", len(out.Rows)))
	return out, nil
}

// race appends one race: classified finishers in order, then retirements.
func race(rng *rand.Rand, cfg Config, key model.RaceKey, drivers []*driver, car []float64, out *Output) {
	circuit := (key.Round - 1) % len(circuits)
	base := baseLapMin + float64(circuit*7%baseLapSpread)

	field := make([]*entrant, len(drivers))
	for i, d := range drivers {
		pace := car[d.team] + d.skill
		field[i] = &entrant{
			driver:     d,
			pace:       pace,
			qualifying: base + qualifyingOffset + pace + rng.NormFloat64()*qualifyingNoise,
			retired:    rng.Float64() < cfg.DNFRate,
		}
	}

	sort.SliceStable(field, func(i, j int) bool { return field[i].qualifying < field[j].qualifying })
	for i, e := range field {
		e.grid = i + 1
		e.score = e.pace + rng.NormFloat64()*raceNoise + float64(e.grid)*gridPenalty
	}
	sort.SliceStable(field, func(i, j int) bool {
		if field[i].retired != field[j].retired {
			return !field[i].retired
		}
		return field[i].score < field[j].score
	})

	for i, e := range field {
		row := model.Result{
			DriverID:          e.driver.id,
			DriverCode:        e.driver.code,
			ConstructorID:     strconv.Itoa(e.driver.team + 1),
			ConstructorName:   teamName(e.driver.team),
			Season:            key.Season,
			Round:             key.Round,
			RaceID:            key.ID(),
			CircuitName:       circuits[circuit],
			GridPosition:      e.grid,
			Status:            model.FinishedStatus,
			FastestLapSeconds: math.NaN(),
			QualifyingSeconds: math.NaN(),
		}
		lap := base + lapOffset + e.pace + rng.NormFloat64()*lapNoise
		if e.retired {
			row.Status = retirements[rng.IntN(len(retirements))]
			if rng.IntN(2) == 0 {
				lap = math.NaN()
			}
		} else {
			row.FinishPosition = i + 1
		}

		out.Rows = append(out.Rows, row)
		out.Raw.FastestLap = append(out.Raw.FastestLap, clock(rng, cfg.BlankRate, lap))
		out.Raw.Qualifying = append(out.Raw.Qualifying, clock(rng, cfg.BlankRate, e.qualifying))
	}
}

// clock renders v, sometimes as a blank or NaT cell.
func clock(rng *rand.Rand, blankRate, v float64) string {
	if rng.Float64() < blankRate {
		if rng.IntN(2) == 0 {
			return ""
		}
		return "NaT"
	}
	return duration.Clock(v)
}

func driverCode(i int) string {
	if i < len(driverCodes) {
		return driverCodes[i]
	}
	return fmt.Sprintf("D%02d", i+1)
}

func teamName(t int) string {
	if t < len(teamNames) {
		return teamNames[t]
	}
	return "Team " + strconv.Itoa(t+1)
}
