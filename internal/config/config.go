// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Load errors wrap this package's sentinel kinds.
package config

import (
	"fmt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address used by `serve`.
	Addr string `koanf:"addr"`

	// ShortWindow and LongWindow are the trailing window sizes (races).
	ShortWindow int `koanf:"short_window"`
	LongWindow  int `koanf:"long_window"`

	// TrainRows and ValidationRows are the chronological split boundaries:
	// rows [0, TrainRows) train, [TrainRows, ValidationRows) validate, the rest test.
	TrainRows      int `koanf:"train_rows"`
	ValidationRows int `koanf:"validation_rows"`

	// PodiumThreshold is the probability at or above which a driver is selected.
	PodiumThreshold float64 `koanf:"podium_threshold"`

	// PodiumSize is the fallback top-N when nobody clears the threshold.
	PodiumSize int `koanf:"podium_size"`

	// Telemetry provider settings for `fetch`.
	TelemetryBaseURL      string `koanf:"telemetry_base_url"`
	TelemetryMaxRetries   int    `koanf:"telemetry_max_retries"`
	TelemetryRetryDelayMS int    `koanf:"telemetry_retry_delay_ms"`
	TelemetryTimeoutMS    int    `koanf:"telemetry_timeout_ms"`
	TelemetryWorkers      int    `koanf:"telemetry_workers"`
	StartSeason           int    `koanf:"start_season"`
	EndSeason             int    `koanf:"end_season"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		ShortWindow:           5,
		LongWindow:            22,
		TrainRows:             1200,
		ValidationRows:        1550,
		PodiumThreshold:       0.5,
		PodiumSize:            3,
		TelemetryBaseURL:      "https://api.jolpi.ca/ergast/f1",
		TelemetryMaxRetries:   3,
		TelemetryRetryDelayMS: 2000,
		TelemetryTimeoutMS:    15000,
		TelemetryWorkers:      4,
		StartSeason:           2022,
		EndSeason:             2025,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ShortWindow < 1 || c.LongWindow < 1:
		return fmt.Errorf("%w: window sizes must be at least 1", ErrInvalidConfig)
	case c.TrainRows < 0 || c.ValidationRows < c.TrainRows:
		return fmt.Errorf("%w: train_rows must be >= 0 and <= validation_rows", ErrInvalidConfig)
	case c.PodiumThreshold < 0 || c.PodiumThreshold > 1:
		return fmt.Errorf("%w: podium_threshold must be within [0, 1]", ErrInvalidConfig)
	case c.PodiumSize < 1:
		return fmt.Errorf("%w: podium_size must be at least 1", ErrInvalidConfig)
	case c.TelemetryMaxRetries < 1:
		return fmt.Errorf("%w: telemetry_max_retries must be at least 1", ErrInvalidConfig)
	case c.TelemetryWorkers < 1:
		return fmt.Errorf("%w: telemetry_workers must be at least 1", ErrInvalidConfig)
	case c.EndSeason < c.StartSeason:
		return fmt.Errorf("%w: end_season must not precede start_season", ErrInvalidConfig)
	}
	return nil
}
