// Package ext defines the extension system for Spool.
// Extensions are notified of lifecycle events (job enqueued, completed,
// failed, etc.) and can react to them — logging, metrics, result
// collection, etc.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/xraph/spool/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// JobEnqueued is called after a job is successfully enqueued.
type JobEnqueued interface {
	OnJobEnqueued(ctx context.Context, j *job.Job) error
}

// JobStarted is called when a worker begins executing a job.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobCompleted is called after a job finishes successfully.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobFailed is called when a job's handler returns an error or panics.
// The failure belongs to that job alone; the worker that ran it keeps
// processing.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// ResultProduced is called with every result, successful or failed,
// after the producing worker hands it off. Implement it to attach a
// result sink.
type ResultProduced interface {
	OnResultProduced(ctx context.Context, r job.Result) error
}

// Shutdown is called when the engine is shutting down gracefully,
// after all workers have been joined.
type Shutdown interface {
	OnShutdown(ctx context.Context)
}
