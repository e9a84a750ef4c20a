package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/podium/internal/synth"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	generateOut string
	generateCfg = synth.DefaultConfig()
)

//nolint:gochecknoglobals // Cobra commands are typically global
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write synthetic seasons as a raw results table",
	Long: `Generate writes deterministic, plausible seasons: drivers paired into
constructors, grids and finishes that follow car and driver pace, some
retirements and some blank times. The same seed always yields the same table.

Examples:
  podium generate --out raw.csv --seasons 2 --rounds 10
  podium generate --seed 7 --teams 5 | podium features`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateOut, "out", "", "raw results CSV (stdout when empty)")
	generateCmd.Flags().IntVar(&generateCfg.StartSeason, "start", generateCfg.StartSeason, "first season")
	generateCmd.Flags().IntVar(&generateCfg.Seasons, "seasons", generateCfg.Seasons, "number of seasons")
	generateCmd.Flags().IntVar(&generateCfg.Rounds, "rounds", generateCfg.Rounds, "races per season")
	generateCmd.Flags().IntVar(&generateCfg.Teams, "teams", generateCfg.Teams, "constructors, two drivers each")
	generateCmd.Flags().Uint64Var(&generateCfg.Seed, "seed", generateCfg.Seed, "random seed")
	generateCmd.Flags().Float64Var(&generateCfg.DNFRate, "dnf-rate", generateCfg.DNFRate, "per-driver retirement chance")
	generateCmd.Flags().Float64Var(&generateCfg.BlankRate, "blank-rate", generateCfg.BlankRate, "chance of a blank time cell")
}

func runGenerate(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	svc, err := startService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	out, err := createOutput(cmd, generateOut)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	_, err = svc.Generate(ctx, generateCfg, out)
	return err
}
