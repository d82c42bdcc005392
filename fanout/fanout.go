// Package fanout provides one-shot parallel reduction over an in-memory
// dataset: fan-out launches one goroutine per chunk, fan-in folds the
// partial results into a single value.
//
// Use fanout for bounded, known-size work where one goroutine per chunk
// is acceptable. Use a worker pool when the work is unbounded or
// streaming, or when concurrency must be capped independently of the
// number of jobs.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Dispatch partitions items into consecutive chunks of at most
// chunkSize, launches one goroutine per chunk immediately, waits for
// every partial result, and folds them with reduce starting from
// identity.
//
// The final aggregate is deterministic and independent of completion
// order only if reduce is associative and commutative. That precondition
// is the caller's responsibility; it is not enforced.
//
// Each goroutine works on its own sub-slice and shares no mutable state
// with its siblings. If any compute call fails, Dispatch still waits for
// all chunks, then returns identity and the joined errors.
func Dispatch[T, R any](
	ctx context.Context,
	items []T,
	chunkSize int,
	compute func(ctx context.Context, chunk []T) (R, error),
	reduce func(R, R) R,
	identity R,
) (R, error) {
	if chunkSize <= 0 {
		return identity, fmt.Errorf("fanout: chunk size must be positive, got %d", chunkSize)
	}
	if len(items) == 0 {
		return identity, nil
	}

	chunks := (len(items) + chunkSize - 1) / chunkSize
	partials := make([]R, chunks)
	errs := make([]error, chunks)

	var wg sync.WaitGroup
	for i := range chunks {
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(items))

		wg.Add(1)
		go func() {
			defer wg.Done()
			partials[i], errs[i] = compute(ctx, items[lo:hi])
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return identity, err
	}

	acc := identity
	for _, p := range partials {
		acc = reduce(acc, p)
	}
	return acc, nil
}
