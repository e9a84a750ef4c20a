package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "Race-result feature engineering and podium prediction tooling",
	Long: `podium turns historical race results into leakage-free rolling features:
driver form, team pace, reliability and qualifying gap to pole. Every
feature for a race is computed only from races that came before it.

Tables are CSV. Commands read from --in (stdin when empty) and write to
--out (stdout when empty); logs go to stderr.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); PODIUM_CONFIG when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides log_level")
}

// setup loads configuration and initializes logging for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cmd.Context(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := logger.Init(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
	); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// startService validates cfg after flag overrides and starts a service.
func startService(ctx context.Context, opts ...service.Option) (*service.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc := service.New(append([]service.Option{
		service.WithConfig(cfg),
		service.WithLogger(logger.Get()),
	}, opts...)...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// openInput opens path, or stdin when path is empty or "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// createOutput creates path, or returns stdout when path is empty or "-".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// closeOutput closes out and keeps the first error.
func closeOutput(out io.Closer, err *error) {
	if cerr := out.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close output: %w", cerr)
	}
}
