package service

import (
	"github.com/okian/podium/internal/adapters/telemetry"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProvider sets the telemetry provider used by Fetch. Without one,
// Start builds an Ergast client from the configuration.
func WithProvider(p telemetry.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}
