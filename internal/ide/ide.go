// Package ide answers tooling queries about sources that may be incomplete
// or invalid: which values an expression may take and which module an
// import path refers to. Every query is best effort. Failures degrade to
// empty results and are never returned to the caller.
package ide

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/roach88/marq/internal/eval"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
	"github.com/roach88/marq/internal/telemetry"
	"github.com/roach88/marq/internal/world"
)

// Option configures a query.
type Option func(*options)

type options struct {
	metrics *telemetry.Metrics
}

// WithMetrics records probe and import counters in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AnalyzeExpr returns the values node may evaluate to, in the order they
// were produced. The result is never nil.
//
// Literals are answered from their lexeme. Field accesses project the field
// on every value of their target and drop the ones that lack it. The field
// name of an access is answered for the whole access. Any other expression
// is answered by evaluating its source with a tracer on the node's span;
// evaluation errors are ignored so values produced before them survive.
func AnalyzeExpr(ctx context.Context, w world.World, node *syntax.LinkedNode, opts ...Option) []model.Value {
	o := newOptions(opts)
	return analyzeExpr(ctx, w, node, o.metrics)
}

func analyzeExpr(ctx context.Context, w world.World, node *syntax.LinkedNode, metrics *telemetry.Metrics) []model.Value {
	if node == nil || !node.Node().IsExpr() {
		return []model.Value{}
	}

	n := node.Node()
	if v, ok := eval.Literal(n); ok {
		metrics.ProbeRun(telemetry.ProbeLiteral, 1)
		return []model.Value{v}
	}

	if n.Kind == syntax.KindFieldAccess {
		targets := analyzeExpr(ctx, w, node.Children()[0], metrics)
		out := project(targets, n.FieldName())
		metrics.ProbeRun(telemetry.ProbeField, len(out))
		return out
	}

	if parent := node.Parent(); parent != nil && parent.Kind() == syntax.KindFieldAccess && node.Index() > 0 {
		out := analyzeExpr(ctx, w, parent, metrics)
		metrics.ProbeRun(telemetry.ProbeDelegated, len(out))
		return out
	}

	out := probe(ctx, w, node.Span())
	metrics.ProbeRun(telemetry.ProbeEval, len(out))
	return out
}

// project accesses field on every target, keeping the ones that have it.
func project(targets []model.Value, field string) []model.Value {
	out := []model.Value{}
	for _, target := range targets {
		if v, err := model.Field(target, field); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// probe evaluates the source containing span and collects the values
// produced there.
func probe(ctx context.Context, w world.World, span syntax.Span) []model.Value {
	src := w.Source(span.Source)
	if src == nil {
		return []model.Value{}
	}

	tracer := eval.NewTracer(&span)
	if _, err := eval.Eval(ctx, w, eval.Route{}, tracer, src); err != nil {
		slog.Debug("probe evaluation failed",
			"source", src.Path(),
			"span", span,
			"error", err,
		)
	}
	values := tracer.Finish()
	if values == nil {
		return []model.Value{}
	}
	return values
}

// AnalyzeImport returns the module that importing path from source would
// bind, or nil if the path does not resolve or the module fails to
// evaluate. A nil source imports from the world root.
func AnalyzeImport(ctx context.Context, w world.World, source *syntax.Source, path string, opts ...Option) *model.Module {
	o := newOptions(opts)

	resolved := world.ImportPath(w.Root(), importer(w, source), path)
	id, err := w.Resolve(resolved)
	if err != nil {
		slog.Debug("import does not resolve", "path", path, "resolved", resolved, "error", err)
		o.metrics.ImportResolved(telemetry.ImportMissing)
		return nil
	}
	src := w.Source(id)
	if src == nil {
		o.metrics.ImportResolved(telemetry.ImportMissing)
		return nil
	}

	mod, err := world.Memoized(w, src, func() (*model.Module, error) {
		return eval.Eval(ctx, w, eval.Route{}, nil, src)
	})
	if err != nil {
		slog.Debug("import failed to evaluate", "path", resolved, "error", err)
		o.metrics.ImportResolved(telemetry.ImportFailed)
		return nil
	}
	o.metrics.ImportResolved(telemetry.ImportResolved)
	return mod
}

// importer returns the path relative imports of source resolve from. Without
// a source they resolve against the world root.
func importer(w world.World, source *syntax.Source) string {
	if source == nil {
		return filepath.Join(w.Root(), "_")
	}
	return source.Path()
}

// ExprAt returns the innermost expression at offset in source. A cursor
// just past an expression also selects it. Returns nil if there is none.
func ExprAt(source *syntax.Source, offset int) *syntax.LinkedNode {
	root := source.Linked()
	for _, at := range []int{offset, offset - 1} {
		for n := root.LeafAt(at); n != nil; n = n.Parent() {
			if n.Node().IsExpr() {
				return n
			}
		}
	}
	return nil
}
