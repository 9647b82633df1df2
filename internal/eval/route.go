package eval

import (
	"slices"

	"github.com/roach88/marq/internal/syntax"
)

// Route is the chain of sources currently being evaluated, outermost first.
// The zero Route is empty.
type Route struct {
	ids []syntax.SourceID
}

// Contains reports whether id is already being evaluated.
func (r Route) Contains(id syntax.SourceID) bool {
	return slices.Contains(r.ids, id)
}

// Push returns a route extended by id. r is not modified.
func (r Route) Push(id syntax.SourceID) Route {
	ids := make([]syntax.SourceID, len(r.ids), len(r.ids)+1)
	copy(ids, r.ids)
	return Route{ids: append(ids, id)}
}

// Len returns the depth of the route.
func (r Route) Len() int { return len(r.ids) }
