// Package job defines the unit of work processed by Spool and the
// outcome record produced for it.
package job

import (
	"context"
	"time"

	"github.com/xraph/spool/id"
)

// Action is an optional self-contained unit of work carried by a Job.
// Jobs with an Action are executed directly; jobs without one are passed
// to the pool's handler, which interprets the payload.
type Action func(ctx context.Context) (any, error)

// Handler processes one job and returns its computed value.
// The pool invokes the handler with no locks held, so a slow or failing
// handler never blocks its peer workers.
type Handler func(ctx context.Context, j *Job) (any, error)

// Job represents one unit of work submitted for processing.
// A Job is immutable once enqueued: it is owned by the queue until
// dequeued, then exclusively by the worker that dequeued it.
type Job struct {
	ID         id.JobID  `json:"id"`
	Name       string    `json:"name"`
	Payload    []byte    `json:"payload,omitempty"`
	Action     Action    `json:"-"`
	Timeout    time.Duration `json:"timeout,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// New creates a job carrying an opaque payload for the pool handler.
func New(name string, payload []byte) *Job {
	return &Job{
		ID:         id.NewJobID(),
		Name:       name,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewAction creates a self-contained job that executes fn when dequeued.
func NewAction(name string, fn Action) *Job {
	return &Job{
		ID:         id.NewJobID(),
		Name:       name,
		Action:     fn,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Result is the outcome of processing one Job. Exactly one Result is
// produced per consumed Job, by the worker that consumed it.
type Result struct {
	JobID    id.JobID      `json:"job_id"`
	Name     string        `json:"name"`
	Value    any           `json:"value,omitempty"`
	Err      error         `json:"-"`
	WorkerID id.WorkerID   `json:"worker_id"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Failed reports whether the job's handler returned or panicked with an error.
func (r Result) Failed() bool { return r.Err != nil }
