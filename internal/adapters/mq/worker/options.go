package worker

import (
	"github.com/okian/yaculator/pkg/logger"
)

// Option applies a configuration option to a Pool.
type Option func(*Pool)

// WithName sets the pool name used in logs.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithStopOnError makes workers skip remaining tasks after the first
// failure. Skipped tasks are drained but not run.
func WithStopOnError(stop bool) Option {
	return func(p *Pool) {
		p.stopOnError = stop
	}
}
