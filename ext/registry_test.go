package ext_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/id"
	"github.com/xraph/spool/job"
)

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnJobEnqueued(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnJobEnqueued")
	return nil
}

func (e *allHooksExt) OnJobStarted(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnJobStarted")
	return nil
}

func (e *allHooksExt) OnJobCompleted(_ context.Context, _ *job.Job, _ time.Duration) error {
	e.calls = append(e.calls, "OnJobCompleted")
	return nil
}

func (e *allHooksExt) OnJobFailed(_ context.Context, _ *job.Job, _ error) error {
	e.calls = append(e.calls, "OnJobFailed")
	return nil
}

func (e *allHooksExt) OnResultProduced(_ context.Context, _ job.Result) error {
	e.calls = append(e.calls, "OnResultProduced")
	return nil
}

func (e *allHooksExt) OnShutdown(_ context.Context) {
	e.calls = append(e.calls, "OnShutdown")
}

// startedOnlyExt opts in to a single hook.
type startedOnlyExt struct {
	started int
}

func (e *startedOnlyExt) Name() string { return "started-only" }

func (e *startedOnlyExt) OnJobStarted(_ context.Context, _ *job.Job) error {
	e.started++
	return nil
}

// failingExt returns an error from its hook; the registry must log and
// continue.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnJobCompleted(_ context.Context, _ *job.Job, _ time.Duration) error {
	return errors.New("hook exploded")
}

func newRegistry() *ext.Registry {
	return ext.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestJob() *job.Job {
	return &job.Job{ID: id.NewJobID(), Name: "test"}
}

func TestRegistry_EmitsAllHooks(t *testing.T) {
	r := newRegistry()
	e := &allHooksExt{}
	r.Register(e)

	ctx := context.Background()
	j := newTestJob()

	r.EmitJobEnqueued(ctx, j)
	r.EmitJobStarted(ctx, j)
	r.EmitJobCompleted(ctx, j, time.Millisecond)
	r.EmitJobFailed(ctx, j, errors.New("boom"))
	r.EmitResultProduced(ctx, job.Result{JobID: j.ID})
	r.EmitShutdown(ctx)

	want := []string{
		"OnJobEnqueued", "OnJobStarted", "OnJobCompleted",
		"OnJobFailed", "OnResultProduced", "OnShutdown",
	}
	if len(e.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", e.calls, want)
	}
	for i := range want {
		if e.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, e.calls[i], want[i])
		}
	}
}

func TestRegistry_PartialExtension(t *testing.T) {
	r := newRegistry()
	e := &startedOnlyExt{}
	r.Register(e)

	ctx := context.Background()
	j := newTestJob()

	// Only the implemented hook fires; the rest are no-ops.
	r.EmitJobEnqueued(ctx, j)
	r.EmitJobStarted(ctx, j)
	r.EmitJobCompleted(ctx, j, 0)
	r.EmitShutdown(ctx)

	if e.started != 1 {
		t.Fatalf("started = %d, want 1", e.started)
	}
}

func TestRegistry_HookErrorDoesNotStopOthers(t *testing.T) {
	r := newRegistry()
	failing := &failingExt{}
	counting := &allHooksExt{}
	r.Register(failing)
	r.Register(counting)

	r.EmitJobCompleted(context.Background(), newTestJob(), 0)

	if len(counting.calls) != 1 || counting.calls[0] != "OnJobCompleted" {
		t.Fatalf("second extension not notified after first failed: %v", counting.calls)
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := newRegistry()
	if len(r.Extensions()) != 0 {
		t.Fatal("fresh registry has extensions")
	}
	r.Register(&allHooksExt{})
	r.Register(&startedOnlyExt{})
	if got := len(r.Extensions()); got != 2 {
		t.Fatalf("extensions = %d, want 2", got)
	}
}
