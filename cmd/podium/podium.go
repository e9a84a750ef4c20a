package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	selectIn        string
	selectOut       string
	selectThreshold float64
	selectSize      int
	evaluateIn      string
)

//nolint:gochecknoglobals // Cobra commands are typically global
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick the predicted podium from scored rows",
	Long: `Select reads rows with driver_id, race_id and podium_probability and
writes every driver at or above the threshold, most likely first. When
nobody clears the threshold the top --size drivers are written instead.

Examples:
  podium select --in predictions.csv
  podium select --in predictions.csv --threshold 0.35 --size 3`,
	RunE: runSelect,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score labelled predictions",
	Long: `Evaluate reads scored rows with a known outcome (is_podium or
finish_position) and prints ROC AUC, podium hit rate and the confusion
counts at the podium threshold.

Examples:
  podium evaluate --in test_predictions.csv`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(evaluateCmd)

	selectCmd.Flags().StringVar(&selectIn, "in", "", "predictions CSV (stdin when empty)")
	selectCmd.Flags().StringVar(&selectOut, "out", "", "selection CSV (stdout when empty)")
	selectCmd.Flags().Float64Var(&selectThreshold, "threshold", 0, "selection threshold; overrides podium_threshold")
	selectCmd.Flags().IntVar(&selectSize, "size", 0, "fallback podium size; overrides podium_size")

	evaluateCmd.Flags().StringVar(&evaluateIn, "in", "", "scored predictions CSV (stdin when empty)")
}

func runSelect(cmd *cobra.Command, _ []string) (err error) {
	if cmd.Flags().Changed("threshold") {
		cfg.PodiumThreshold = selectThreshold
	}
	if cmd.Flags().Changed("size") {
		cfg.PodiumSize = selectSize
	}

	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	in, err := openInput(cmd, selectIn)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := createOutput(cmd, selectOut)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	_, err = svc.Select(ctx, in, out)
	return err
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	in, err := openInput(cmd, evaluateIn)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	r, err := svc.Evaluate(ctx, in)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "entries:          %d\n", r.Entries)
	fmt.Fprintf(w, "races:            %d\n", r.Races)
	fmt.Fprintf(w, "roc_auc:          %.4f\n", r.ROCAUC)
	fmt.Fprintf(w, "podium_hit_rate:  %.4f (%d/%d)\n", r.PodiumHitRate, r.PodiumHits, r.Podiums)
	fmt.Fprintf(w, "precision:        %.4f\n", r.Precision())
	fmt.Fprintf(w, "recall:           %.4f\n", r.Recall())
	fmt.Fprintf(w, "confusion:        tp=%d fp=%d tn=%d fn=%d\n",
		r.TruePositives, r.FalsePositives, r.TrueNegatives, r.FalseNegatives)
	return nil
}
