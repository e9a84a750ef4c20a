package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/upcoming"
	"github.com/okian/podium/pkg/logger"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	upcomingHistory    string
	upcomingQualifying string
	upcomingRace       string
	upcomingCircuit    string
	upcomingVocab      string
	upcomingOut        string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Build model input rows for a race that has not run yet",
	Long: `Upcoming appends one placeholder row per qualifier to the raw results
history, runs the feature pipeline and writes the placeholders' features
with the circuit encoded against a prepared vocabulary. Missing values are
filled with the median across qualifiers.

Examples:
  podium upcoming --history raw.csv --qualifying q.csv --race 2025_20 \
    --circuit "Sao Paulo Grand Prix" --vocab data/circuits.txt --out new_data.csv`,
	RunE: runUpcoming,
}

func init() {
	rootCmd.AddCommand(upcomingCmd)

	upcomingCmd.Flags().StringVar(&upcomingHistory, "history", "", "raw results CSV of past races")
	upcomingCmd.Flags().StringVar(&upcomingQualifying, "qualifying", "", "qualifying sheet CSV")
	upcomingCmd.Flags().StringVar(&upcomingRace, "race", "", "race id of the upcoming race (season_round)")
	upcomingCmd.Flags().StringVar(&upcomingCircuit, "circuit", "", "circuit name of the upcoming race")
	upcomingCmd.Flags().StringVar(&upcomingVocab, "vocab", "", "circuit vocabulary written by prepare")
	upcomingCmd.Flags().StringVar(&upcomingOut, "out", "", "model input CSV (stdout when empty)")

	for _, name := range []string{"history", "qualifying", "race", "circuit", "vocab"} {
		_ = upcomingCmd.MarkFlagRequired(name)
	}
}

func runUpcoming(cmd *cobra.Command, _ []string) (err error) {
	key, err := model.ParseRaceID(upcomingRace)
	if err != nil {
		return fmt.Errorf("--race: %w", err)
	}

	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	files := make(map[string]*os.File, 3)
	for flag, path := range map[string]string{"history": upcomingHistory, "qualifying": upcomingQualifying, "vocab": upcomingVocab} {
		f, err := os.Open(path) //nolint:gosec // path comes from the operator
		if err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
		defer func() { _ = f.Close() }()
		files[flag] = f
	}

	out, err := createOutput(cmd, upcomingOut)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	in, err := svc.Upcoming(ctx, service.UpcomingRequest{
		History:    files["history"],
		Qualifying: files["qualifying"],
		Vocabulary: files["vocab"],
		Race:       upcoming.Race{Key: key, Circuit: upcomingCircuit},
	}, out)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "wrote upcoming race input",
		logger.String("race", key.ID()),
		logger.Int("drivers", len(in.Records)),
		logger.Bool("unknownCircuit", in.UnknownCircuit))
	return nil
}
