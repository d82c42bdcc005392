// Package queue provides the closeable FIFO job queue connecting
// producers to the worker pool.
//
// A queue has multiple producer handles (Sender, cloneable) and one
// shared consumption point (Receiver). The queue stays open while at
// least one Sender handle is open; closing the last Sender, or calling
// Receiver.Close, closes it. Closing never discards buffered items:
// receivers drain the backlog first and only then observe the terminal
// closed signal.
//
// By default the queue is unbounded. WithCapacity bounds it, making
// Send block (backpressure) while the buffer is full. WithRateLimit
// attaches a token-bucket limiter that paces all senders.
package queue
