package spool

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/xraph/spool/counter"
	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/job"
	"github.com/xraph/spool/middleware"
	"github.com/xraph/spool/queue"
	"github.com/xraph/spool/worker"
)

// Engine is the central dispatch coordinator: it owns the job queue,
// the worker pool, the shared counter, and the result sink.
//
// Create one with New and functional options, Start it, Submit jobs,
// and finish with CloseAndJoin.
type Engine struct {
	config      Config
	logger      *slog.Logger
	handler     job.Handler
	mws         []middleware.Middleware
	pendingExts []ext.Extension

	extensions *ext.Registry
	counter    *counter.Counter
	pool       *worker.Pool

	jobsTx    *queue.Sender[*job.Job]
	jobsRx    *queue.Receiver[*job.Job]
	resultsTx *queue.Sender[job.Result]
	resultsRx *queue.Receiver[job.Result]

	mu       sync.Mutex
	started  bool
	closed   bool
	finished bool
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config:  DefaultConfig(),
		logger:  slog.Default(),
		counter: counter.New(0),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.config.Workers <= 0 {
		return nil, ErrNoWorkers
	}

	e.extensions = ext.NewRegistry(e.logger)
	for _, x := range e.pendingExts {
		e.extensions.Register(x)
	}
	e.pendingExts = nil

	var qopts []queue.Option
	if e.config.QueueCapacity > 0 {
		qopts = append(qopts, queue.WithCapacity(e.config.QueueCapacity))
	}
	if e.config.RateLimit > 0 {
		qopts = append(qopts, queue.WithRateLimit(e.config.RateLimit, e.config.RateBurst))
	}
	e.jobsTx, e.jobsRx = queue.New[*job.Job](qopts...)
	e.resultsTx, e.resultsRx = queue.New[job.Result]()

	// Recover stays outermost so a panicking handler can never take a
	// worker down, whatever else is in the chain.
	chain := append([]middleware.Middleware{middleware.Recover(e.logger)}, e.mws...)
	executor := worker.NewExecutor(e.handler, e.extensions, e.logger, chain...)

	e.pool = worker.NewPool(e.jobsRx, executor, e.extensions, e.logger,
		worker.WithConcurrency(e.config.Workers),
		worker.WithCounter(e.counter),
		worker.WithSink(func(_ context.Context, r job.Result) {
			// The result queue is unbounded, so workers never block here.
			_ = e.resultsTx.Send(r)
		}),
	)

	return e, nil
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config { return e.config }

// Counter returns the engine's shared counter. Workers increment it
// once per processed job; the hosting program may add its own deltas
// concurrently.
func (e *Engine) Counter() *counter.Counter { return e.counter }

// Extensions returns the engine's extension registry.
func (e *Engine) Extensions() *ext.Registry { return e.extensions }

// Start launches the worker pool. It returns immediately; workers run
// until the queue is closed and drained. Starting twice is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.started {
		return nil
	}
	e.started = true

	e.logger.Info("engine starting",
		slog.Int("workers", e.config.Workers),
		slog.Int("queue_capacity", e.config.QueueCapacity),
	)
	return e.pool.Start(ctx)
}

// Submit enqueues one job. It blocks while a bounded queue is full and
// returns ErrClosed once the engine has been closed.
func (e *Engine) Submit(j *job.Job) error {
	if j == nil {
		return ErrNilJob
	}

	if err := e.jobsTx.Send(j); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return ErrClosed
		}
		return err
	}

	e.extensions.EmitJobEnqueued(context.Background(), j)
	return nil
}

// Sender returns an independent producer handle for the engine's queue.
// The engine stays open until CloseAndJoin regardless of how many
// handles exist, but each handle should be closed when its producer is
// done.
func (e *Engine) Sender() *queue.Sender[*job.Job] {
	return e.jobsTx.Clone()
}

// Results returns the receiver for the engine's result queue. Drain it
// with Recv until the second return value is false, which happens after
// CloseAndJoin once every result has been delivered. Results not
// consumed are retained until then; the queue is unbounded.
func (e *Engine) Results() *queue.Receiver[job.Result] {
	return e.resultsRx
}

// CloseAndJoin closes the job queue, waits for workers to drain the
// backlog and terminate, closes the result queue, and returns the
// aggregate summary. No buffered job is discarded; every worker is
// joined. If ctx expires before the workers finish, the partial summary
// is returned with worker.ErrJoinTimeout.
//
// Calling CloseAndJoin again after a successful join returns the same
// summary.
func (e *Engine) CloseAndJoin(ctx context.Context) (worker.Summary, error) {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return worker.Summary{}, ErrNotStarted
	}
	alreadyClosed := e.closed
	e.closed = true
	e.mu.Unlock()

	if !alreadyClosed {
		e.logger.Info("engine closing", slog.Int("backlog", e.jobsRx.Len()))
		// Hard close: Submit fails from here on, buffered jobs are
		// still delivered.
		e.jobsRx.Close()
	}

	summary, err := e.pool.Join(ctx)
	if err != nil {
		return summary, err
	}

	e.mu.Lock()
	first := !e.finished
	e.finished = true
	e.mu.Unlock()

	if first {
		e.resultsTx.Close()
		e.extensions.EmitShutdown(ctx)
		e.logger.Info("engine closed",
			slog.Int64("jobs_processed", summary.JobsProcessed),
			slog.Int64("counter_value", summary.CounterValue),
		)
	}
	return summary, nil
}

// Close is CloseAndJoin bounded by the configured ShutdownTimeout.
func (e *Engine) Close() (worker.Summary, error) {
	ctx := context.Background()
	if e.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ShutdownTimeout)
		defer cancel()
	}
	return e.CloseAndJoin(ctx)
}
