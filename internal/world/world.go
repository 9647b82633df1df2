// Package world provides the read-only capabilities evaluation needs: the
// project root, path resolution and source lookup by identity.
package world

import (
	"crypto/sha256"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/roach88/marq/internal/memo"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

// ErrNotFound is returned by Resolve when no source exists at a path.
var ErrNotFound = errors.New("source not found")

// World is the environment of an evaluation.
type World interface {
	// Root returns the project root used for "/"-anchored imports.
	Root() string

	// Resolve returns the identity of the source at path.
	// Fails with an error wrapping ErrNotFound if there is none.
	Resolve(path string) (syntax.SourceID, error)

	// Source returns the source with the given identity, or nil.
	Source(id syntax.SourceID) *syntax.Source
}

// ModuleKey identifies one evaluation input: a source and its exact text.
type ModuleKey struct {
	ID   syntax.SourceID
	Hash [sha256.Size]byte
}

// KeyOf returns the cache key of src.
func KeyOf(src *syntax.Source) ModuleKey {
	return ModuleKey{ID: src.ID(), Hash: sha256.Sum256([]byte(src.Text()))}
}

// ModuleCache memoizes module evaluations.
type ModuleCache = memo.Cache[ModuleKey, *model.Module]

// Tracked is implemented by worlds that carry a module cache.
type Tracked interface {
	Memo() *ModuleCache
}

// Memoized evaluates src through the world's module cache, or directly if
// the world has none.
func Memoized(w World, src *syntax.Source, compute func() (*model.Module, error)) (*model.Module, error) {
	if t, ok := w.(Tracked); ok && t.Memo() != nil {
		return t.Memo().Get(KeyOf(src), compute)
	}
	return compute()
}

// ImportPath resolves an import path written in importer. Paths starting
// with "/" are anchored at root; others are relative to the importer's
// directory. The result is lexically normalized.
func ImportPath(root, importer, path string) string {
	if strings.HasPrefix(path, "/") {
		return filepath.Join(root, path)
	}
	return filepath.Join(filepath.Dir(importer), path)
}

// sources interns parsed sources by path.
type sources struct {
	mu     sync.RWMutex
	byPath map[string]syntax.SourceID
	list   []*syntax.Source
}

func (s *sources) lookup(path string) (syntax.SourceID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[path]
	return id, ok
}

func (s *sources) intern(path, text string) syntax.SourceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPath[path]; ok {
		return id
	}
	if s.byPath == nil {
		s.byPath = make(map[string]syntax.SourceID)
	}
	id := syntax.SourceID(len(s.list))
	s.list = append(s.list, syntax.NewSource(id, path, text))
	s.byPath[path] = id
	return id
}

func (s *sources) get(id syntax.SourceID) *syntax.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.list) {
		return nil
	}
	return s.list[id]
}
