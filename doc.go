// Package spool provides an in-process concurrent task dispatch core
// for Go: producers submit jobs to a closeable FIFO queue, a fixed pool
// of workers competes for them, results are aggregated safely, and
// shutdown drains the backlog and joins every worker without losing
// work.
//
// Spool is designed as a library, not a service. Import it, configure a
// handler, submit jobs, and close.
//
// # Quick Start
//
//	e, err := spool.New(
//	    spool.WithWorkers(8),
//	    spool.WithHandler(func(ctx context.Context, j *job.Job) (any, error) {
//	        return process(j.Payload)
//	    }),
//	)
//	if err != nil { ... }
//
//	e.Start(ctx)
//	e.Submit(job.New("resize", payload))
//	summary, err := e.CloseAndJoin(ctx)
//
// # Architecture
//
// Jobs flow producer → queue → worker pool → result sink. The queue is
// the only hand-off point: a job is owned by the queue until dequeued,
// then exclusively by the worker that dequeued it, so nothing but the
// queue's receiving end and the shared counter ever needs a lock.
//
// For bounded, known-size datasets the fanout package offers a
// queue-free alternative: one goroutine per chunk, results folded by a
// reduction.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package spool
