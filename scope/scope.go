// Package scope provides a structured concurrency region: tasks spawned
// inside the region are guaranteed to finish before Run returns.
//
// Because the region outlives every task it spawns, tasks may safely
// read data owned by the caller's frame for the region's duration — an
// alternative to handing each goroutine its own copy when the data only
// needs to be read.
package scope

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Scope tracks the tasks spawned within one region.
type Scope struct {
	ctx context.Context
	wg  sync.WaitGroup
	sem chan struct{}

	mu   sync.Mutex
	errs []error
}

// Option configures a Scope.
type Option func(*Scope)

// WithLimit caps the number of tasks executing concurrently within the
// scope. Tasks beyond the limit wait for a slot.
func WithLimit(n int) Option {
	return func(s *Scope) {
		if n > 0 {
			s.sem = make(chan struct{}, n)
		}
	}
}

// Run creates a Scope, executes fn, and blocks until every task spawned
// via Go has completed. It returns the tasks' errors joined, or nil if
// all succeeded. A panicking task is captured as an error with its stack
// trace rather than crashing the process.
func Run(ctx context.Context, fn func(s *Scope), opts ...Option) error {
	s := &Scope{ctx: ctx}
	for _, opt := range opts {
		opt(s)
	}

	fn(s)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// Go spawns one task in the scope. The task receives the scope's
// context and its error, if any, is reported by Run.
func (s *Scope) Go(task func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			s.sem <- struct{}{}
			defer func() { <-s.sem }()
		}

		defer func() {
			if r := recover(); r != nil {
				s.report(fmt.Errorf("scope: task panicked: %v\n%s", r, debug.Stack()))
			}
		}()

		if err := task(s.ctx); err != nil {
			s.report(err)
		}
	}()
}

func (s *Scope) report(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}
