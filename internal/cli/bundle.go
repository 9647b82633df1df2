package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/marq/internal/store"
)

// BundleOptions holds flags for the bundle command.
type BundleOptions struct {
	*RootOptions
	Output string
}

// BundleResult describes a written bundle.
type BundleResult struct {
	Output   string `json:"output"`
	Files    int    `json:"files"`
	BundleID string `json:"bundle_id"`
}

// NewBundleCommand creates the bundle command.
func NewBundleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BundleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bundle <dir>",
		Short: "Pack a project's sources into a SQLite bundle",
		Long: `Pack every .mq file below dir into a SQLite bundle. The directory
becomes the bundle root, so "/"-anchored imports resolve inside it.

Other commands read from a bundle with --bundle. Re-bundling into an
existing file updates changed sources and keeps the bundle id.

Example:
  marq bundle ./site -o site.db
  marq eval --bundle site.db /main.mq`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "path to the bundle database (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runBundle(ctx context.Context, opts *BundleOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	info, err := os.Stat(dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("directory not found: %s", dir), nil)
	}
	if !info.IsDir() {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("not a directory: %s", dir), nil)
	}

	st, err := store.Open(opts.Output)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBundle, err.Error(), nil)
	}
	defer st.Close()

	count, err := st.ImportDir(ctx, dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScanError, err.Error(), nil)
	}
	id, err := st.BundleID(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBundle, err.Error(), nil)
	}

	slog.Info("bundle written", "dir", dir, "output", opts.Output, "files", count, "bundle_id", id)

	result := BundleResult{Output: opts.Output, Files: count, BundleID: id}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Bundled %d source(s) into %s\n", result.Files, result.Output)
	formatter.VerboseLog("Bundle id: %s", result.BundleID)
	return nil
}
