package job_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/spool/id"
	"github.com/xraph/spool/job"
)

func TestNew(t *testing.T) {
	j := job.New("resize", []byte(`{"w":100}`))

	if j.ID.Prefix() != id.PrefixJob {
		t.Errorf("ID prefix = %q, want %q", j.ID.Prefix(), id.PrefixJob)
	}
	if j.Name != "resize" {
		t.Errorf("Name = %q, want %q", j.Name, "resize")
	}
	if j.EnqueuedAt.IsZero() {
		t.Error("EnqueuedAt not set")
	}
	if j.Action != nil {
		t.Error("payload job should have no Action")
	}
}

func TestNewAction(t *testing.T) {
	j := job.NewAction("compute", func(_ context.Context) (any, error) {
		return 42, nil
	})

	if j.Action == nil {
		t.Fatal("Action not set")
	}
	v, err := j.Action(context.Background())
	if err != nil {
		t.Fatalf("action error: %v", err)
	}
	if v != 42 {
		t.Errorf("action value = %v, want 42", v)
	}
}

func TestResult_Failed(t *testing.T) {
	ok := job.Result{JobID: id.NewJobID(), Value: "done"}
	if ok.Failed() {
		t.Error("result with nil Err reported failed")
	}

	bad := job.Result{JobID: id.NewJobID(), Err: errors.New("boom")}
	if !bad.Failed() {
		t.Error("result with Err did not report failed")
	}
}

func TestTyped(t *testing.T) {
	type resizeParams struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	handler := job.Typed(func(_ context.Context, p resizeParams) (any, error) {
		return p.Width * p.Height, nil
	})

	j, err := job.NewTyped("resize", resizeParams{Width: 4, Height: 5})
	if err != nil {
		t.Fatalf("NewTyped error: %v", err)
	}

	v, err := handler(context.Background(), j)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if v != 20 {
		t.Errorf("handler value = %v, want 20", v)
	}
}

func TestTyped_EmptyPayload(t *testing.T) {
	handler := job.Typed(func(_ context.Context, p struct{ N int }) (any, error) {
		return p.N, nil
	})

	v, err := handler(context.Background(), job.New("noop", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if v != 0 {
		t.Errorf("handler value = %v, want zero value", v)
	}
}

func TestTyped_BadPayload(t *testing.T) {
	handler := job.Typed(func(_ context.Context, p struct{ N int }) (any, error) {
		return p.N, nil
	})

	_, err := handler(context.Background(), job.New("bad", []byte("{not json")))
	if err == nil {
		t.Fatal("expected unmarshal error")
	}
}
