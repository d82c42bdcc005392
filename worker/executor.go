// Package worker provides the job execution engine — an Executor that
// invokes the handler through middleware, and a Pool that manages the
// fixed set of worker goroutines competing for jobs on one shared
// receiver.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/id"
	"github.com/xraph/spool/job"
	"github.com/xraph/spool/middleware"
)

// Executor runs a single job through the middleware chain and the
// handler, capturing the outcome — value or error — into a Result.
// Failures never escape: a handler error or panic (via the Recover
// middleware, or the Executor's own last-resort recover) becomes an
// error Result for that job alone.
type Executor struct {
	handler    job.Handler
	extensions *ext.Registry
	mw         middleware.Middleware
	logger     *slog.Logger
}

// NewExecutor creates an Executor. The handler processes payload jobs;
// jobs carrying their own Action bypass it. Middleware wrap both.
func NewExecutor(
	handler job.Handler,
	extensions *ext.Registry,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	return &Executor{
		handler:    handler,
		extensions: extensions,
		mw:         middleware.Chain(mws...),
		logger:     logger,
	}
}

// Execute runs one job and returns its Result. Exactly one Result is
// produced per call. The caller must not hold any lock: the job was
// dequeued before this call, and execution happens entirely outside
// the receiver lock.
func (e *Executor) Execute(ctx context.Context, workerID id.WorkerID, j *job.Job) job.Result {
	e.extensions.EmitJobStarted(ctx, j)

	// The terminal handler: the job's own action if it carries one,
	// otherwise the pool-wide handler.
	terminal := func(ctx context.Context) (any, error) {
		switch {
		case j.Action != nil:
			return j.Action(ctx)
		case e.handler != nil:
			return e.handler(ctx, j)
		default:
			return nil, fmt.Errorf("worker: job %q has no action and pool has no handler", j.Name)
		}
	}

	start := time.Now()
	val, err := e.safeRun(ctx, j, terminal)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Debug("job execution failed",
			slog.String("job_id", j.ID.String()),
			slog.String("job_name", j.Name),
			slog.String("error", err.Error()),
		)
		e.extensions.EmitJobFailed(ctx, j, err)
	} else {
		e.extensions.EmitJobCompleted(ctx, j, elapsed)
	}

	return job.Result{
		JobID:    j.ID,
		Name:     j.Name,
		Value:    val,
		Err:      err,
		WorkerID: workerID,
		Elapsed:  elapsed,
	}
}

// safeRun invokes the middleware chain with a last-resort panic guard,
// so a pool configured without the Recover middleware still keeps its
// workers alive through a panicking handler.
func (e *Executor) safeRun(
	ctx context.Context, j *job.Job, terminal middleware.Handler,
) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = nil
			err = fmt.Errorf("panic in job %s: %v", j.Name, r)
		}
	}()
	return e.mw(ctx, j, terminal)
}
