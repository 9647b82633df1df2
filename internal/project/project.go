// Package project loads the marq.cue project manifest.
//
// A manifest is a CUE file with a single project struct:
//
//	project: {
//		root:    "."            // anchor for "/" imports
//		entry:   "main.mq"      // file eval and watch use by default
//		metrics: "metrics.prom" // optional Prometheus textfile
//	}
//
// Every field is optional. Relative paths are resolved against the
// directory holding the manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// ManifestName is the file name of a project manifest.
const ManifestName = "marq.cue"

const schema = `
#Project: {
	root:     *"." | string
	entry:    *"main.mq" | (string & =~"\\.mq$")
	metrics?: string
}

project: #Project
`

// Config is a resolved project configuration. All paths are absolute.
type Config struct {
	Dir     string
	Root    string
	Entry   string
	Metrics string
}

type manifest struct {
	Root    string `json:"root"`
	Entry   string `json:"entry"`
	Metrics string `json:"metrics,omitempty"`
}

// ConfigError is a manifest error, positioned when CUE knows where.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration of a project without a manifest.
func Default(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	return resolve(abs, manifest{Root: ".", Entry: "main.mq"}), nil
}

// Load reads the manifest in dir.
func Load(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}

	instances := load.Instances([]string{ManifestName}, &load.Config{Dir: abs})
	if len(instances) == 0 {
		return nil, &ConfigError{Field: "manifest", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	return decode(ctx, abs, v)
}

// Parse reads a manifest from src as if it were stored in dir.
func Parse(dir, filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return decode(ctx, dir, v)
}

func decode(ctx *cue.Context, dir string, v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = v.Unify(ctx.CompileString(schema, cue.Filename("schema.cue")))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var m manifest
	if err := v.LookupPath(cue.ParsePath("project")).Decode(&m); err != nil {
		return nil, formatCUEError(err)
	}
	if m.Root == "" {
		return nil, &ConfigError{
			Field:   "root",
			Message: "root must not be empty",
			Pos:     v.LookupPath(cue.ParsePath("project.root")).Pos(),
		}
	}
	return resolve(dir, m), nil
}

func resolve(dir string, m manifest) *Config {
	abs := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	return &Config{
		Dir:     dir,
		Root:    abs(m.Root),
		Entry:   abs(m.Entry),
		Metrics: abs(m.Metrics),
	}
}

// Find walks up from start to the nearest directory holding a manifest.
func Find(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Discover loads the manifest governing start, or the default configuration
// of start if there is none.
func Discover(start string) (*Config, error) {
	if dir, ok := Find(start); ok {
		return Load(dir)
	}
	return Default(start)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	var pos token.Pos
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return &ConfigError{Field: "cue", Message: first.Error(), Pos: pos}
}

// IsConfigError reports whether err is a manifest error.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
