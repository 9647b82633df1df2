package world

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/marq/internal/memo"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

// FS is a world backed by a directory. Files are read once, on first
// resolution.
type FS struct {
	root string
	srcs sources
	memo *ModuleCache
}

// NewFS creates a world rooted at dir.
func NewFS(dir string) (*FS, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", dir, err)
	}
	return &FS{root: root, memo: memo.New[ModuleKey, *model.Module]()}, nil
}

func (w *FS) Root() string { return w.root }

// Resolve reads the file at path. Relative paths are taken from the root.
func (w *FS) Resolve(path string) (syntax.SourceID, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.root, path)
	}
	path = filepath.Clean(path)
	if id, ok := w.srcs.lookup(path); ok {
		return id, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return w.srcs.intern(path, string(data)), nil
}

func (w *FS) Source(id syntax.SourceID) *syntax.Source { return w.srcs.get(id) }

// Memo returns the module cache.
func (w *FS) Memo() *ModuleCache { return w.memo }
