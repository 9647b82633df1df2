package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/marq/internal/project"
	"github.com/roach88/marq/internal/store"
	"github.com/roach88/marq/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-evaluate a file whenever project sources change",
		Long: `Evaluate a file like eval, then watch the project root and evaluate it
again whenever a .mq file or the manifest changes. Bursts of changes are
debounced into one run. Failed runs are reported and watching continues.

Stop with Ctrl-C.

Example:
  marq watch
  marq watch chapters/intro.mq --interval 250ms`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) > 0 {
				file = args[0]
			}
			return runWatch(cmd.Context(), opts, file, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", watch.DefaultInterval, "debounce interval")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, file string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Bundle != "" {
		return formatter.Fail(ExitCommandError, ErrCodeBundle, "watch reads sources from disk and cannot use --bundle", nil)
	}

	// Sessions are opened per run so that edited files are read again.
	rerun := func() error {
		s, err := openSession(ctx, opts.RootOptions, formatter, startDir(file))
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
		fmt.Fprintf(formatter.Writer, "--- %s\n%s", result.File, result.doc.Render())
		return nil
	}

	cfg, err := project.Discover(startDir(file))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	dir := cfg.Root
	if opts.Root != "" {
		dir = opts.Root
	}

	w, err := watch.New(watch.Config{
		Dir:        dir,
		Interval:   opts.Interval,
		Extensions: []string{store.SourceExt},
		Names:      []string{project.ManifestName},
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	defer w.Close()

	// The first run reports errors the same way later runs do.
	_ = rerun()

	err = w.Watch(ctx, func(path string) error {
		formatter.VerboseLog("Changed: %s", path)
		return rerun()
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return nil
}
