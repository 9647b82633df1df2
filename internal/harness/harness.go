package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/eval"
	"github.com/roach88/marq/internal/ide"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/realize"
	"github.com/roach88/marq/internal/store"
	"github.com/roach88/marq/internal/syntax"
	"github.com/roach88/marq/internal/telemetry"
	"github.com/roach88/marq/internal/world"
)

// Option configures a run.
type Option func(*Harness)

// WithMetrics records realization and probe metrics in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

// Harness executes one scenario against its world.
type Harness struct {
	world   world.World
	metrics *telemetry.Metrics
	entry   string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory bundle for isolation.
//
// Execution flow:
// 1. Write the scenario files into an in-memory bundle
// 2. Evaluate and realize the entry file
// 3. Compare the outcome with the expect clause
// 4. Run probes and import checks
// 5. Evaluate assertions against the rendered document
//
// A returned error means the scenario could not be executed at all;
// mismatches are reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	for _, name := range scenario.sortedFiles() {
		if err := st.WriteSource(ctx, sourcePath(name), scenario.Files[name]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	w, err := world.FromBundle(ctx, st)
	if err != nil {
		return nil, err
	}

	h := &Harness{world: w, entry: scenario.EntryFile()}
	for _, opt := range opts {
		opt(h)
	}

	slog.Debug("running scenario", "scenario", scenario.Name, "files", len(scenario.Files))

	entry, err := h.source(h.entry)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	doc, runErr := h.realize(ctx, entry)
	if runErr != nil {
		result.Error = runErr.Error()
	} else {
		result.doc = doc
		result.Blocks = doc.Blocks
	}
	checkExpect(scenario.Expect, doc, runErr, result)

	for _, probe := range scenario.Probes {
		if err := h.probe(ctx, probe, result); err != nil {
			return nil, err
		}
	}
	for _, imp := range scenario.Imports {
		if err := h.checkImport(ctx, imp, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// sourcePath maps a scenario file name to its bundle path.
func sourcePath(name string) string {
	return "/" + strings.TrimPrefix(name, "/")
}

func (h *Harness) source(name string) (*syntax.Source, error) {
	id, err := h.world.Resolve(sourcePath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	src := h.world.Source(id)
	if src == nil {
		return nil, fmt.Errorf("failed to load %s", name)
	}
	return src, nil
}

func (h *Harness) realize(ctx context.Context, entry *syntax.Source) (*realize.Document, error) {
	mod, err := eval.Eval(ctx, h.world, eval.Route{}, nil, entry)
	if err != nil {
		return nil, err
	}
	return realize.Realize(ctx, mod.Content, realize.WithMetrics(h.metrics))
}

// checkExpect compares the run outcome with the expect clause.
func checkExpect(expect *ExpectClause, doc *realize.Document, runErr error, result *Result) {
	if expect != nil && expect.Error != "" {
		switch {
		case runErr == nil:
			result.AddError(fmt.Sprintf("expected %s error, run succeeded", expect.Error))
		case !diag.Is(runErr, diag.Code(expect.Error)):
			result.AddError(fmt.Sprintf("expected %s error, got: %v", expect.Error, runErr))
		}
		return
	}

	if runErr != nil {
		result.AddError(fmt.Sprintf("run failed: %v", runErr))
		return
	}
	if expect != nil && expect.Blocks != nil {
		if diff := cmp.Diff(expect.Blocks, doc.Blocks); diff != "" {
			result.AddError(fmt.Sprintf("document mismatch (-want +got):\n%s", diff))
		}
	}
}

func (h *Harness) probe(ctx context.Context, probe Probe, result *Result) error {
	file := probe.File
	if file == "" {
		file = h.entry
	}
	src, err := h.source(file)
	if err != nil {
		return err
	}

	got := ProbeResult{File: file, At: probe.At, Values: []string{}}
	node, ok := locate(src, probe.At)
	if !ok {
		result.AddError(fmt.Sprintf("probe %q: not found in %s", probe.At, file))
		result.Probes = append(result.Probes, got)
		return nil
	}

	for _, v := range ide.AnalyzeExpr(ctx, h.world, node, ide.WithMetrics(h.metrics)) {
		got.Values = append(got.Values, model.Repr(v))
	}
	result.Probes = append(result.Probes, got)

	if !cmp.Equal(nonNil(probe.Values), got.Values) {
		result.AddError(fmt.Sprintf("probe %q: expected %v, got %v", probe.At, probe.Values, got.Values))
	}
	return nil
}

// locate finds the node spelled text at its first occurrence in src.
func locate(src *syntax.Source, text string) (*syntax.LinkedNode, bool) {
	offset := strings.Index(src.Text(), text)
	if offset < 0 {
		return nil, false
	}
	span := syntax.Span{Source: src.ID(), Start: offset, End: offset + len(text)}
	if node := src.Linked().Find(span); node != nil {
		return node, true
	}
	node := ide.ExprAt(src, offset)
	return node, node != nil
}

func (h *Harness) checkImport(ctx context.Context, imp ImportCheck, result *Result) error {
	from := imp.From
	if from == "" {
		from = h.entry
	}
	src, err := h.source(from)
	if err != nil {
		return err
	}

	got := ImportResult{From: from, Path: imp.Path}
	mod := ide.AnalyzeImport(ctx, h.world, src, imp.Path, ide.WithMetrics(h.metrics))
	if mod != nil {
		got.Found = true
		got.Bindings = mod.Scope.Names()
	}
	result.Imports = append(result.Imports, got)

	switch {
	case imp.None && got.Found:
		result.AddError(fmt.Sprintf("import %q from %s: expected no module, got one", imp.Path, from))
	case !imp.None && !got.Found:
		result.AddError(fmt.Sprintf("import %q from %s: no module", imp.Path, from))
	case !imp.None && imp.Bindings != nil && !cmp.Equal(imp.Bindings, got.Bindings):
		result.AddError(fmt.Sprintf("import %q from %s: expected bindings %v, got %v", imp.Path, from, imp.Bindings, got.Bindings))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
