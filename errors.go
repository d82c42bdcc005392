package spool

import "errors"

var (
	// ErrClosed is returned by Submit after the engine's queue has been
	// closed. The producer must stop submitting; already-buffered jobs
	// are still processed.
	ErrClosed = errors.New("spool: engine closed")

	// ErrNotStarted is returned by operations that require a running
	// worker pool.
	ErrNotStarted = errors.New("spool: engine not started")

	// ErrNilJob is returned by Submit for a nil job.
	ErrNilJob = errors.New("spool: nil job")

	// ErrNoWorkers is returned by New when the configured worker count
	// is not positive.
	ErrNoWorkers = errors.New("spool: worker count must be positive")
)
