package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/marq/internal/project"
	"github.com/roach88/marq/internal/store"
	"github.com/roach88/marq/internal/syntax"
	"github.com/roach88/marq/internal/telemetry"
	"github.com/roach88/marq/internal/world"
)

// session is what a command works against: the project configuration, the
// world its sources come from and the metrics of the run.
type session struct {
	config      *project.Config
	world       world.World
	metrics     *telemetry.Metrics
	metricsFile string
	bundled     bool
}

// openSession discovers the project governing start and opens its world.
// Flags take precedence over the manifest.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter, start string) (*session, error) {
	cfg, err := project.Discover(start)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if opts.Root != "" {
		root, err := filepath.Abs(opts.Root)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		cfg.Root = root
	}

	s := &session{
		config:      cfg,
		metrics:     telemetry.New(nil),
		metricsFile: cfg.Metrics,
	}
	if opts.MetricsFile != "" {
		s.metricsFile = opts.MetricsFile
	}

	if opts.Bundle != "" {
		w, err := openBundle(ctx, opts.Bundle)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeBundle, err.Error(), nil)
		}
		s.world = w
		s.bundled = true
	} else {
		w, err := world.NewFS(cfg.Root)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		s.world = w
	}

	slog.Debug("session opened",
		"dir", cfg.Dir,
		"root", s.world.Root(),
		"bundle", opts.Bundle,
	)
	return s, nil
}

// openBundle loads an existing bundle into memory.
func openBundle(ctx context.Context, path string) (*world.Memory, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("bundle not found: %s", path)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer st.Close()
	return world.FromBundle(ctx, st)
}

// path maps a file argument to a world path. Arguments are relative to the
// working directory, or to the bundle root when reading a bundle. An empty
// argument names the project entry.
func (s *session) path(arg string) string {
	if s.bundled {
		if arg == "" {
			rel, err := filepath.Rel(s.config.Root, s.config.Entry)
			if err != nil || strings.HasPrefix(rel, "..") {
				rel = filepath.Base(s.config.Entry)
			}
			arg = rel
		}
		return filepath.Join("/", filepath.ToSlash(arg))
	}
	if arg == "" {
		return s.config.Entry
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

// source loads the source named by a file argument.
func (s *session) source(f *OutputFormatter, arg string) (*syntax.Source, error) {
	path := s.path(arg)
	id, err := s.world.Resolve(path)
	if errors.Is(err, world.ErrNotFound) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("source not found: %s", path), nil)
	}
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return s.world.Source(id), nil
}

// close writes the metrics file, if one is configured.
func (s *session) close(f *OutputFormatter) error {
	if s.metricsFile == "" {
		return nil
	}
	if err := s.metrics.WriteFile(s.metricsFile); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}
	f.VerboseLog("Wrote metrics to %s", s.metricsFile)
	return nil
}

// startDir is where project discovery begins for a file argument.
func startDir(arg string) string {
	if arg == "" {
		return "."
	}
	return filepath.Dir(arg)
}
