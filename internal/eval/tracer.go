package eval

import (
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

// Tracer observes values produced during evaluation. A nil *Tracer is
// inactive.
type Tracer struct {
	target *syntax.Span
	values []model.Value
}

// NewTracer creates a tracer that records values produced at target, or
// every value if target is nil.
func NewTracer(target *syntax.Span) *Tracer {
	if target != nil {
		span := *target
		target = &span
	}
	return &Tracer{target: target}
}

// Trace offers a value produced at span.
func (t *Tracer) Trace(span syntax.Span, v model.Value) {
	if t == nil {
		return
	}
	if t.target != nil && *t.target != span {
		return
	}
	t.values = append(t.values, v)
}

// Inspects reports whether evaluating source id may produce values the
// tracer records.
func (t *Tracer) Inspects(id syntax.SourceID) bool {
	if t == nil {
		return false
	}
	return t.target == nil || t.target.Source == id
}

// Finish drains the recorded values in production order.
func (t *Tracer) Finish() []model.Value {
	if t == nil {
		return nil
	}
	out := t.values
	t.values = nil
	return out
}
