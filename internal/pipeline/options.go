package pipeline

import (
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithWindows sets the trailing window sizes.
func WithWindows(w features.Windows) Option {
	return func(p *Pipeline) {
		p.windows = w
	}
}

// WithLogger sets the logger used for run and stage logs.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStage adds a stage to the graph next to the built-in ones.
func WithStage(s Stage) Option {
	return func(p *Pipeline) {
		p.extra = append(p.extra, s)
	}
}
