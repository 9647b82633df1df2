package model

import "iter"

// EntryKind distinguishes style entries.
type EntryKind int

const (
	// EntryRecipe activates a show rule for the styled content.
	EntryRecipe EntryKind = iota

	// EntryGuard marks content produced by the recipe at Selector.
	EntryGuard

	// EntryUnguard cancels an outer guard for Selector.
	EntryUnguard
)

// StyleEntry is one style property.
type StyleEntry struct {
	Kind     EntryKind
	Recipe   *Recipe
	Selector Selector
}

// RecipeEntry activates r.
func RecipeEntry(r *Recipe) StyleEntry {
	return StyleEntry{Kind: EntryRecipe, Recipe: r}
}

// GuardEntry guards sel.
func GuardEntry(sel Selector) StyleEntry {
	return StyleEntry{Kind: EntryGuard, Selector: sel}
}

// UnguardEntry lifts the guard for sel.
func UnguardEntry(sel Selector) StyleEntry {
	return StyleEntry{Kind: EntryUnguard, Selector: sel}
}

// StyleMap is the list of entries applied at one level, in declaration order.
type StyleMap []StyleEntry

// Interruption reports whether any recipe in the map interrupts grouping.
func (m StyleMap) Interruption() (Interruption, bool) {
	for _, entry := range m {
		if entry.Kind != EntryRecipe {
			continue
		}
		if in, ok := entry.Recipe.Interruption(); ok {
			return in, true
		}
	}
	return 0, false
}

// StyleChain is the stack of active style maps. The zero chain (nil) has no
// styles. Chains are immutable and share their tails.
type StyleChain struct {
	head StyleMap
	tail *StyleChain
}

// Chain returns a chain with m pushed on top of c.
func (c *StyleChain) Chain(m StyleMap) *StyleChain {
	if len(m) == 0 {
		return c
	}
	return &StyleChain{head: m, tail: c}
}

// Entries yields every entry, innermost first.
func (c *StyleChain) Entries() iter.Seq[StyleEntry] {
	return func(yield func(StyleEntry) bool) {
		for link := c; link != nil; link = link.tail {
			for i := len(link.head) - 1; i >= 0; i-- {
				if !yield(link.head[i]) {
					return
				}
			}
		}
	}
}

// Recipes returns the active recipes, innermost first. The index of a recipe
// in the result is its Nth selector position.
func (c *StyleChain) Recipes() []*Recipe {
	var out []*Recipe
	for entry := range c.Entries() {
		if entry.Kind == EntryRecipe {
			out = append(out, entry.Recipe)
		}
	}
	return out
}

// Guarded reports whether sel is guarded. The innermost guard or unguard
// entry for sel decides.
func (c *StyleChain) Guarded(sel Selector) bool {
	for entry := range c.Entries() {
		if entry.Selector != sel {
			continue
		}
		switch entry.Kind {
		case EntryGuard:
			return true
		case EntryUnguard:
			return false
		}
	}
	return false
}

// Since returns the entries c adds on top of base, in declaration order.
// Reports false if base is not a tail of c.
func (c *StyleChain) Since(base *StyleChain) (StyleMap, bool) {
	var links []*StyleChain
	for link := c; link != base; link = link.tail {
		if link == nil {
			return nil, false
		}
		links = append(links, link)
	}
	var out StyleMap
	for i := len(links) - 1; i >= 0; i-- {
		out = append(out, links[i].head...)
	}
	return out, true
}
