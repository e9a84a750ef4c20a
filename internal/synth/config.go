package synth

import "fmt"

// Config controls the shape of the generated seasons.
type Config struct {
	StartSeason int
	Seasons     int
	Rounds      int
	// Teams is the number of constructors; each fields two drivers.
	Teams int
	Seed  uint64
	// DNFRate is the per-driver chance of retiring from a race.
	DNFRate float64
	// BlankRate is the chance that a duration cell is left empty or NaT.
	BlankRate float64
}

// DefaultConfig returns two ten-round seasons of a ten-team grid.
func DefaultConfig() Config {
	return Config{
		StartSeason: 2022,
		Seasons:     2,
		Rounds:      10,
		Teams:       10,
		Seed:        1,
		DNFRate:     0.08,
		BlankRate:   0.03,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.StartSeason < 1:
		return fmt.Errorf("%w: start season must be positive", ErrInvalidConfig)
	case c.Seasons < 1 || c.Rounds < 1:
		return fmt.Errorf("%w: seasons and rounds must be at least 1", ErrInvalidConfig)
	case c.Teams < 1:
		return fmt.Errorf("%w: teams must be at least 1", ErrInvalidConfig)
	case c.DNFRate < 0 || c.DNFRate >= 1:
		return fmt.Errorf("%w: dnf rate must be within [0, 1)", ErrInvalidConfig)
	case c.BlankRate < 0 || c.BlankRate >= 1:
		return fmt.Errorf("%w: blank rate must be within [0, 1)", ErrInvalidConfig)
	}
	return nil
}
