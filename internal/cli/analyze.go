package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/marq/internal/ide"
	"github.com/roach88/marq/internal/model"
)

// ExprResult lists the values an expression may take.
type ExprResult struct {
	File   string   `json:"file"`
	Line   int      `json:"line"`
	Col    int      `json:"col"`
	Expr   string   `json:"expr"`
	Values []string `json:"values"`
}

// ImportResult describes the module an import path resolves to.
type ImportResult struct {
	File     string    `json:"file"`
	Path     string    `json:"path"`
	Module   string    `json:"module"`
	Bindings []Binding `json:"bindings"`
}

// Binding is a module binding with its value in repr form.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewAnalyzeCommand creates the analyze command group.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Inspect expressions and imports the way editors do",
	}
	cmd.AddCommand(newAnalyzeExprCommand(rootOpts))
	cmd.AddCommand(newAnalyzeImportCommand(rootOpts))
	return cmd
}

func newAnalyzeExprCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expr <file> <line:col>",
		Short: "Print the values the expression at a position may take",
		Long: `Print the values the expression under the cursor may take.

Literals are reported directly. Other expressions are resolved by
evaluating the file and recording every value the expression produces,
in production order. Evaluation errors are not reported: the values
produced before the error are.

Example:
  marq analyze expr main.mq 3:12`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeExpr(cmd.Context(), rootOpts, args[0], args[1], cmd)
		},
	}
}

func runAnalyzeExpr(ctx context.Context, opts *RootOptions, file, pos string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	line, col, err := parsePosition(pos)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodePosition, err.Error(), nil)
	}

	s, err := openSession(ctx, opts, formatter, startDir(file))
	if err != nil {
		return err
	}
	src, err := s.source(formatter, file)
	if err != nil {
		return err
	}

	offset, ok := src.Offset(line, col)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodePosition, fmt.Sprintf("position %s is outside %s", pos, src.Path()), nil)
	}
	node := ide.ExprAt(src, offset)
	if node == nil {
		return formatter.Fail(ExitFailure, ErrCodeNoExpr, fmt.Sprintf("no expression at %s:%s", src.Path(), pos), nil)
	}

	result := ExprResult{
		File:   src.Path(),
		Line:   line,
		Col:    col,
		Expr:   src.Range(node.Span()),
		Values: []string{},
	}
	for _, v := range ide.AnalyzeExpr(ctx, s.world, node, ide.WithMetrics(s.metrics)) {
		result.Values = append(result.Values, model.Repr(v))
	}
	if err := s.close(formatter); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	w := formatter.Writer
	if len(result.Values) == 0 {
		fmt.Fprintf(w, "%s: no values\n", result.Expr)
		return nil
	}
	for _, v := range result.Values {
		fmt.Fprintln(w, v)
	}
	return nil
}

// parsePosition parses a one-based "line:col" cursor position.
func parsePosition(pos string) (int, int, error) {
	lineStr, colStr, ok := strings.Cut(pos, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q: want line:col", pos)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in %q", pos)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid column in %q", pos)
	}
	return line, col, nil
}

func newAnalyzeImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> <path>",
		Short: "Print the bindings of the module an import path yields",
		Long: `Resolve an import path as if it were written in file and print the
bindings of the module it yields. Paths starting with "/" are taken from
the project root.

Example:
  marq analyze import chapters/intro.mq ../lib/names.mq`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeImport(cmd.Context(), rootOpts, args[0], args[1], cmd)
		},
	}
}

func runAnalyzeImport(ctx context.Context, opts *RootOptions, file, path string, cmd *cobra.Command) error {
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

	mod := ide.AnalyzeImport(ctx, s.world, src, path, ide.WithMetrics(s.metrics))
	if err := s.close(formatter); err != nil {
		return err
	}
	if mod == nil {
		return formatter.Fail(ExitFailure, ErrCodeNoModule, fmt.Sprintf("no module for %q from %s", path, src.Path()), nil)
	}

	result := ImportResult{File: src.Path(), Path: path, Module: mod.Name, Bindings: []Binding{}}
	for _, name := range mod.Scope.Names() {
		v, _ := mod.Scope.Get(name)
		result.Bindings = append(result.Bindings, Binding{Name: name, Value: model.Repr(v)})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "module %s\n", result.Module)
	for _, b := range result.Bindings {
		fmt.Fprintf(w, "  %s = %s\n", b.Name, b.Value)
	}
	return nil
}
