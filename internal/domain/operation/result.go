package operation

import (
	"time"

	"github.com/whhaicheng/docbench/internal/domain/overhead"
)

// Result is the immutable outcome of executing one Operation. Successful
// results SHOULD carry a Breakdown; its absence is a degraded-telemetry
// indicator, never a correctness bug - spec.md §3.
type Result struct {
	OperationID string
	Kind        Kind
	Success     bool

	Start *time.Time
	End   *time.Time

	Duration time.Duration

	Payload any
	Err     error

	Breakdown *overhead.Breakdown

	Metadata map[string]any
}

// Success constructs a successful Result.
func Success(id string, kind Kind, duration time.Duration, breakdown *overhead.Breakdown) Result {
	return Result{
		OperationID: id,
		Kind:        kind,
		Success:     true,
		Duration:    duration,
		Breakdown:   breakdown,
		Metadata:    map[string]any{},
	}
}

// Failure constructs a failed Result. Per spec.md §4.3 and SPEC_FULL.md
// §9.1's Open Question decision, a failed result never carries a Breakdown - the
// source system omits partial timings for failed operations, and this
// port follows that precedent rather than guessing at a richer contract.
func Failure(id string, kind Kind, duration time.Duration, err error) Result {
	return Result{
		OperationID: id,
		Kind:        kind,
		Success:     false,
		Duration:    duration,
		Err:         err,
		Metadata:    map[string]any{},
	}
}

// WithTimestamps returns a copy of r with the wall-clock start/end
// instants set.
func (r Result) WithTimestamps(start, end time.Time) Result {
	r.Start = &start
	r.End = &end
	return r
}

// WithMetadata returns a copy of r with key set in its metadata map.
func (r Result) WithMetadata(key string, value any) Result {
	cp := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		cp[k] = v
	}
	cp[key] = value
	r.Metadata = cp
	return r
}
