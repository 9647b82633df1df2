package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/marq/internal/store"
)

// FromBundle loads every source of a SQLite bundle into a memory world.
// The bundle's recorded root is used, "/" if none was recorded.
func FromBundle(ctx context.Context, st *store.Store) (*Memory, error) {
	srcs, err := st.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	root, err := st.Meta(ctx, store.MetaRoot)
	if errors.Is(err, store.ErrNotFound) {
		root = "/"
	} else if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	files := make(map[string]string, len(srcs))
	for _, src := range srcs {
		files[src.Path] = src.Text
	}
	return NewMemory(root, files), nil
}
