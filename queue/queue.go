package queue

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// ErrClosed is returned by Send after the queue has been closed.
var ErrClosed = errors.New("queue: send on closed queue")

// Option configures a queue at construction time.
type Option func(*config)

type config struct {
	capacity  int
	rateLimit float64
	rateBurst int
}

// WithCapacity bounds the queue at n items. While full, Send blocks
// until a worker dequeues or the queue is closed. Zero or negative n
// leaves the queue unbounded.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// WithRateLimit paces senders at the given sustained items per second
// with the given burst. The burst defaults to 1 if rps is set but burst
// is not. Zero rps disables rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.rateLimit = rps
		c.rateBurst = burst
	}
}

// queue is the shared state behind Sender and Receiver handles.
type queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items    []T
	capacity int
	closed   bool
	senders  int

	limiter *rate.Limiter
}

// Sender is a producer handle. Handles may be cloned so that multiple
// producers feed one queue; each handle's own sends preserve issuing
// order, and the queue observes a single global arrival order.
type Sender[T any] struct {
	q      *queue[T]
	mu     sync.Mutex
	closed bool
}

// Receiver is the single shared consumption point for a queue. Its
// dequeue is atomic under the queue lock, so any number of workers may
// call Recv concurrently and each item is delivered exactly once.
type Receiver[T any] struct {
	q *queue[T]
}

// New creates a queue and returns its initial Sender and the shared
// Receiver.
func New[T any](opts ...Option) (*Sender[T], *Receiver[T]) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &queue[T]{
		capacity: cfg.capacity,
		senders:  1,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)

	if cfg.rateLimit > 0 {
		burst := cfg.rateBurst
		if burst <= 0 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
	}

	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Send enqueues one item at the tail. It blocks while a bounded queue
// is full and returns ErrClosed if the queue has been closed, either
// before the call or while blocked waiting for space.
func (s *Sender[T]) Send(item T) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	q := s.q
	if q.limiter != nil {
		if err := q.limiter.Wait(context.Background()); err != nil {
			return err
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.capacity > 0 && len(q.items) >= q.capacity {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// Clone creates an additional producer handle. The queue stays open
// until every handle has been closed. Cloning an already-closed handle
// yields a closed handle.
func (s *Sender[T]) Clone() *Sender[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &Sender[T]{q: s.q, closed: true}
	}

	q := s.q
	q.mu.Lock()
	q.senders++
	q.mu.Unlock()

	return &Sender[T]{q: q}
}

// Close drops this producer handle. When the last handle is dropped the
// queue closes: buffered items remain deliverable, and receivers observe
// the closed signal once the backlog is drained. Close is idempotent.
func (s *Sender[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()

	q.senders--
	if q.senders <= 0 && !q.closed {
		q.closed = true
		q.notEmpty.Broadcast()
		q.notFull.Broadcast()
	}
}

// Recv dequeues the item at the head, blocking until one is available
// or the queue is closed and drained. The second return value is false
// only for the terminal closed signal; once it is false every further
// call returns immediately with false.
func (r *Receiver[T]) Recv() (T, bool) {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return item, true
}

// TryRecv is a non-blocking Recv. The second return value reports
// whether an item was dequeued; the third reports whether the queue is
// closed and drained.
func (r *Receiver[T]) TryRecv() (T, bool, bool) {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false, q.closed
	}

	item := q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return item, true, false
}

// Close closes the queue explicitly, regardless of outstanding sender
// handles. Subsequent sends fail with ErrClosed; buffered items remain
// deliverable. Close is idempotent.
func (r *Receiver[T]) Close() {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Len returns the number of buffered items.
func (r *Receiver[T]) Len() int {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether the queue has been closed. Buffered items may
// still be deliverable after Closed returns true.
func (r *Receiver[T]) Closed() bool {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
