package spool

import (
	"log/slog"
	"time"

	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/job"
	"github.com/xraph/spool/middleware"
)

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig replaces the engine's entire configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		e.config = cfg
		return nil
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		e.config.Workers = n
		return nil
	}
}

// WithQueueCapacity bounds the job queue at n items, making Submit
// block while the queue is full. Zero leaves it unbounded.
func WithQueueCapacity(n int) Option {
	return func(e *Engine) error {
		e.config.QueueCapacity = n
		return nil
	}
}

// WithRateLimit paces producers at the given sustained jobs per second
// with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(e *Engine) error {
		e.config.RateLimit = rps
		e.config.RateBurst = burst
		return nil
	}
}

// WithShutdownTimeout sets how long Close waits for workers to finish.
func WithShutdownTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		e.config.ShutdownTimeout = d
		return nil
	}
}

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

// WithHandler sets the pool-wide handler for payload jobs. Jobs that
// carry their own Action do not need one.
func WithHandler(h job.Handler) Option {
	return func(e *Engine) error {
		e.handler = h
		return nil
	}
}

// WithMiddleware appends middleware to the execution chain. The Recover
// middleware is always installed outermost; the given middleware run
// inside it in the order supplied.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) error {
		e.mws = append(e.mws, mws...)
		return nil
	}
}

// WithExtensions registers lifecycle extensions.
func WithExtensions(exts ...ext.Extension) Option {
	return func(e *Engine) error {
		e.pendingExts = append(e.pendingExts, exts...)
		return nil
	}
}
