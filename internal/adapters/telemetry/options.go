package telemetry

import (
	"net/http"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithMaxRetries sets how many times a session is attempted.
func WithMaxRetries(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Collector) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithWorkers sets how many race weekends are loaded concurrently.
func WithWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the collector logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.log = l
		}
	}
}

// ErgastOption applies a configuration option to the ErgastProvider.
type ErgastOption func(*ErgastProvider)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(hc *http.Client) ErgastOption {
	return func(p *ErgastProvider) {
		if hc != nil {
			p.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) ErgastOption {
	return func(p *ErgastProvider) {
		if d > 0 {
			p.client = &http.Client{Timeout: d}
		}
	}
}
