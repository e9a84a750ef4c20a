package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/podium/pkg/logger"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	featuresIn  string
	featuresOut string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the feature table from a raw results table",
	Long: `Features reads raw race results, parses lap and qualifying times,
computes rolling driver, team and race features and writes one feature
row per input row, in input order.

Examples:
  podium features --in raw.csv --out features.csv
  cat raw.csv | podium features > features.csv`,
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVar(&featuresIn, "in", "", "raw results CSV (stdin when empty)")
	featuresCmd.Flags().StringVar(&featuresOut, "out", "", "feature table CSV (stdout when empty)")
}

func runFeatures(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	in, err := openInput(cmd, featuresIn)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := createOutput(cmd, featuresOut)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	n, err := svc.BuildFeatures(ctx, in, out)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "wrote feature table", logger.Int("rows", n), logger.String("out", featuresOut))
	return nil
}
