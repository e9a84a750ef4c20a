package main

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	prepareIn         string
	prepareOutDir     string
	prepareTrain      int
	prepareValidation int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Split a feature table into train, validation and test sets",
	Long: `Prepare sorts a feature table by (season, round), cuts it at the
train_rows and validation_rows boundaries and writes X/y matrices for each
part. Circuits are one-hot encoded with a vocabulary fit on the train part
only; the vocabulary is written to circuits.txt for the upcoming command.

Examples:
  podium prepare --in features.csv --out-dir data/
  podium prepare --in features.csv --out-dir data/ --train-rows 800 --validation-rows 1000`,
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringVar(&prepareIn, "in", "", "feature table CSV (stdin when empty)")
	prepareCmd.Flags().StringVar(&prepareOutDir, "out-dir", "data", "directory for the dataset files")
	prepareCmd.Flags().IntVar(&prepareTrain, "train-rows", 0, "train boundary; overrides train_rows")
	prepareCmd.Flags().IntVar(&prepareValidation, "validation-rows", 0, "validation boundary; overrides validation_rows")
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("train-rows") {
		cfg.TrainRows = prepareTrain
	}
	if cmd.Flags().Changed("validation-rows") {
		cfg.ValidationRows = prepareValidation
	}

	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	in, err := openInput(cmd, prepareIn)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	_, err = svc.Prepare(ctx, in, prepareOutDir)
	return err
}
