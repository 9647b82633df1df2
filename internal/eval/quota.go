package eval

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/syntax"
)

const (
	// DefaultMaxDepth is the deepest chain of nested function calls an
	// evaluation may build.
	DefaultMaxDepth = 256

	// DefaultMaxSteps is the number of function calls an evaluation may
	// make in total.
	DefaultMaxSteps = 100_000
)

// Quota bounds the function calls of an evaluation.
//
// Route catches cyclic imports. Quota catches runaway calls:
//   - Depth: unbounded recursion (f calling f forever)
//   - Steps: call trees that terminate too late (f calling f twice per level)
//
// One quota is shared by an evaluation and every module it imports. Steps
// are counted atomically because memoized imports may be computed on behalf
// of another goroutine.
type Quota struct {
	maxDepth int
	maxSteps int64
	steps    atomic.Int64
}

// NewQuota creates a quota with the given limits.
func NewQuota(maxDepth int, maxSteps int64) *Quota {
	return &Quota{maxDepth: maxDepth, maxSteps: maxSteps}
}

// DefaultQuota creates a quota with DefaultMaxDepth and DefaultMaxSteps.
func DefaultQuota() *Quota {
	return NewQuota(DefaultMaxDepth, DefaultMaxSteps)
}

// Steps returns the number of calls counted so far.
func (q *Quota) Steps() int64 { return q.steps.Load() }

// check counts one call entered at depth.
func (q *Quota) check(depth int) error {
	steps := q.steps.Add(1)
	if depth > q.maxDepth {
		return &LimitExceededError{Limit: "call depth", Count: int64(depth), Max: int64(q.maxDepth)}
	}
	if steps > q.maxSteps {
		return &LimitExceededError{Limit: "call steps", Count: steps, Max: q.maxSteps}
	}
	return nil
}

// LimitExceededError is returned when an evaluation exceeds its quota.
// The evaluation stops; values traced before it survive.
type LimitExceededError struct {
	Limit string // which limit: "call depth" or "call steps"
	Count int64
	Max   int64
}

// Error implements the error interface.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("maximum %s exceeded: %d > %d", e.Limit, e.Count, e.Max)
}

// IsLimitExceededError returns true if the error is a LimitExceededError.
// Uses errors.As to handle wrapped errors.
func IsLimitExceededError(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}

type frameKey struct{}

// frame is the call state carried by a context.
type frame struct {
	quota *Quota
	depth int
}

// WithQuota returns a context whose evaluations and function calls draw on
// q. Without one, every evaluation starts a DefaultQuota.
func WithQuota(ctx context.Context, q *Quota) context.Context {
	return context.WithValue(ctx, frameKey{}, frame{quota: q})
}

// withDefaultQuota makes sure ctx carries a quota.
func withDefaultQuota(ctx context.Context) context.Context {
	if f, ok := ctx.Value(frameKey{}).(frame); ok && f.quota != nil {
		return ctx
	}
	return WithQuota(ctx, DefaultQuota())
}

// enter accounts for a call made at span and returns the context the
// callee runs in.
func enter(ctx context.Context, span syntax.Span) (context.Context, error) {
	f, ok := ctx.Value(frameKey{}).(frame)
	if !ok || f.quota == nil {
		f = frame{quota: DefaultQuota()}
	}
	f.depth++
	if err := f.quota.check(f.depth); err != nil {
		return nil, diag.Wrap(diag.CodeLimit, span, err).
			WithHint("check for a function that calls itself without stopping")
	}
	return context.WithValue(ctx, frameKey{}, f), nil
}
