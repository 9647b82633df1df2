package world

import (
	"fmt"
	"path/filepath"

	"github.com/roach88/marq/internal/memo"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

// Memory is a world backed by an in-memory file map.
type Memory struct {
	root  string
	files map[string]string
	srcs  sources
	memo  *ModuleCache
}

// NewMemory creates a world over files, keyed by path.
func NewMemory(root string, files map[string]string) *Memory {
	cleaned := make(map[string]string, len(files))
	for path, text := range files {
		cleaned[filepath.Clean(path)] = text
	}
	return &Memory{
		root:  filepath.Clean(root),
		files: cleaned,
		memo:  memo.New[ModuleKey, *model.Module](),
	}
}

func (m *Memory) Root() string { return m.root }

func (m *Memory) Resolve(path string) (syntax.SourceID, error) {
	path = filepath.Clean(path)
	if id, ok := m.srcs.lookup(path); ok {
		return id, nil
	}
	text, ok := m.files[path]
	if !ok {
		return 0, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return m.srcs.intern(path, text), nil
}

func (m *Memory) Source(id syntax.SourceID) *syntax.Source { return m.srcs.get(id) }

// Memo returns the module cache.
func (m *Memory) Memo() *ModuleCache { return m.memo }

// Len returns the number of files in the world.
func (m *Memory) Len() int { return len(m.files) }
