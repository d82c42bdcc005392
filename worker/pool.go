package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/xraph/spool/counter"
	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/id"
	"github.com/xraph/spool/job"
	"github.com/xraph/spool/queue"
)

// ErrJoinTimeout is returned by Join when the context expires before
// every worker has terminated.
var ErrJoinTimeout = errors.New("worker: join timed out with workers still running")

// Sink receives every Result as its worker hands it off. The sink is
// called from worker goroutines and must be safe for concurrent use.
type Sink func(ctx context.Context, r job.Result)

// Summary is the aggregate statistics returned by Join after all
// workers have terminated.
type Summary struct {
	// JobsProcessed is the total number of jobs consumed by the pool.
	JobsProcessed int64
	// CounterValue is the final value of the pool's shared counter.
	CounterValue int64
}

// Pool manages a fixed set of worker goroutines that compete for jobs
// on one shared receiver. Each worker loops: dequeue one job (atomic
// under the receiver's lock, which is released before processing), run
// it through the Executor, publish the Result, repeat. A worker
// terminates permanently the first time the receiver reports closed.
type Pool struct {
	recv        *queue.Receiver[*job.Job]
	executor    *Executor
	extensions  *ext.Registry
	concurrency int
	logger      *slog.Logger
	sink        Sink
	counter     *counter.Counter

	processed atomic.Int64
	wg        sync.WaitGroup
	mu        sync.Mutex
	started   bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithConcurrency sets the number of worker goroutines. Values below
// one are ignored in favor of the default.
func WithConcurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithSink sets the result sink invoked by workers after each job.
func WithSink(s Sink) Option {
	return func(p *Pool) { p.sink = s }
}

// WithCounter sets the shared counter the pool increments once per
// processed job. The counter may be read and mutated concurrently by
// the hosting program.
func WithCounter(c *counter.Counter) Option {
	return func(p *Pool) { p.counter = c }
}

// NewPool creates a worker pool reading from recv.
func NewPool(
	recv *queue.Receiver[*job.Job],
	executor *Executor,
	extensions *ext.Registry,
	logger *slog.Logger,
	opts ...Option,
) *Pool {
	p := &Pool{
		recv:        recv,
		executor:    executor,
		extensions:  extensions,
		concurrency: 4,
		logger:      logger,
		counter:     counter.New(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Counter returns the pool's shared counter.
func (p *Pool) Counter() *counter.Counter { return p.counter }

// Start launches the worker goroutines. It returns immediately; workers
// run until the queue is closed and drained. Starting twice is a no-op.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	p.started = true

	p.logger.Info("worker pool starting",
		slog.Int("concurrency", p.concurrency),
	)

	for range p.concurrency {
		workerID := id.NewWorkerID()
		p.wg.Add(1)
		go p.workerLoop(ctx, workerID)
	}

	return nil
}

// workerLoop is run by each worker goroutine. The dequeue is atomic
// under the receiver's internal lock; the lock is never held while the
// job is processed, so a slow or failing handler cannot block peers.
func (p *Pool) workerLoop(ctx context.Context, workerID id.WorkerID) {
	defer p.wg.Done()

	p.logger.Debug("worker started", slog.String("worker_id", workerID.String()))

	for {
		j, ok := p.recv.Recv()
		if !ok {
			// Queue closed and drained: this worker is done for good.
			p.logger.Debug("worker exiting", slog.String("worker_id", workerID.String()))
			return
		}

		res := p.executor.Execute(ctx, workerID, j)

		p.processed.Add(1)
		p.counter.Inc()
		p.extensions.EmitResultProduced(ctx, res)
		if p.sink != nil {
			p.sink(ctx, res)
		}
	}
}

// Join blocks until every worker goroutine has terminated and returns
// the pool's aggregate statistics. The queue must be closed for Join to
// return; otherwise workers block in Recv indefinitely. If ctx expires
// first, Join returns the partial summary and ErrJoinTimeout.
func (p *Pool) Join(ctx context.Context) (Summary, error) {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	summary := func() Summary {
		return Summary{
			JobsProcessed: p.processed.Load(),
			CounterValue:  p.counter.Value(),
		}
	}

	if !started {
		return summary(), nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool joined",
			slog.Int64("jobs_processed", p.processed.Load()),
		)
		return summary(), nil
	case <-ctx.Done():
		return summary(), fmt.Errorf("%w: %v", ErrJoinTimeout, ctx.Err())
	}
}
