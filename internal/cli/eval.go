package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/eval"
	"github.com/roach88/marq/internal/realize"
	"github.com/roach88/marq/internal/syntax"
	"github.com/roach88/marq/internal/world"
)

// EvalResult is the outcome of evaluating and realizing a file.
type EvalResult struct {
	File     string          `json:"file"`
	Bindings []string        `json:"bindings"`
	Blocks   []realize.Block `json:"blocks"`

	doc *realize.Document
}

// Location is where a diagnostic points.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// evalFailure carries the response code of a failed evaluation.
type evalFailure struct {
	code    string
	err     error
	details *Location
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a file and print its document",
		Long: `Evaluate a marq file, apply its show rules and print the realized document.

Without a file, the entry named in marq.cue (default main.mq) is evaluated.
In JSON format the module's bindings are reported along with the blocks.

Exit codes:
  0 - Evaluation succeeded
  1 - Evaluation or realization failed
  2 - Command error (missing file, bad manifest, etc.)

Examples:
  marq eval
  marq eval chapters/intro.mq
  marq eval --bundle site.db /main.mq --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) > 0 {
				file = args[0]
			}
			return runEval(cmd.Context(), rootOpts, file, cmd)
		},
	}
	return cmd
}

func runEval(ctx context.Context, opts *RootOptions, file string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := openSession(ctx, opts, formatter, startDir(file))
	if err != nil {
		return err
	}
	src, err := s.source(formatter, file)
	if err != nil {
		return err
	}

	result, failure := evaluate(ctx, s, src)
	if err := s.close(formatter); err != nil {
		return err
	}
	if failure != nil {
		return failure.report(formatter)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	_, err = fmt.Fprint(formatter.Writer, result.doc.Render())
	return err
}

// evaluate evaluates and realizes src in the session's world.
func evaluate(ctx context.Context, s *session, src *syntax.Source) (*EvalResult, *evalFailure) {
	start := time.Now()
	mod, err := eval.Eval(ctx, s.world, eval.Route{}, nil, src)
	s.metrics.ObserveEval(time.Since(start))
	if err != nil {
		return nil, &evalFailure{code: ErrCodeEval, err: err, details: locate(s.world, err)}
	}

	doc, err := realize.Realize(ctx, mod.Content, realize.WithMetrics(s.metrics))
	if err != nil {
		return nil, &evalFailure{code: ErrCodeRealize, err: err, details: locate(s.world, err)}
	}

	slog.Info("evaluated",
		"source", src.Path(),
		"blocks", len(doc.Blocks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &EvalResult{
		File:     src.Path(),
		Bindings: mod.Scope.Names(),
		Blocks:   doc.Blocks,
		doc:      doc,
	}, nil
}

func (e *evalFailure) report(f *OutputFormatter) error {
	var details any
	if e.details != nil {
		details = e.details
	}
	return f.Fail(ExitFailure, e.code, e.err.Error(), details)
}

// locate resolves the span of a diagnostic to a file position.
func locate(w world.World, err error) *Location {
	span, ok := diag.SpanOf(err)
	if !ok || span.IsDetached() {
		return nil
	}
	src := w.Source(span.Source)
	if src == nil {
		return nil
	}
	line, col := src.LineCol(span.Start)
	return &Location{File: src.Path(), Line: line, Col: col}
}
