package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed wraps a typed processing function into a Handler. The payload is
// JSON-unmarshaled into T before the typed function is called.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Typed[T any](fn func(ctx context.Context, payload T) (any, error)) Handler {
	return func(ctx context.Context, j *Job) (any, error) {
		var t T
		if len(j.Payload) > 0 {
			if err := json.Unmarshal(j.Payload, &t); err != nil {
				return nil, fmt.Errorf("unmarshal payload for job %q: %w", j.Name, err)
			}
		}
		return fn(ctx, t)
	}
}

// NewTyped creates a job whose payload is the JSON encoding of v.
// Pair with Typed on the handler side for end-to-end typed payloads.
func NewTyped[T any](name string, v T) (*Job, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for job %q: %w", name, err)
	}
	return New(name, payload), nil
}
