// Package realize turns evaluated content into a document of plain text
// blocks.
//
// Realization walks the content tree with the active style chain. Every
// shown node is offered to the chain's recipes, innermost first. A recipe
// that applies replaces the node by its output, which carries a guard for
// the recipe's selector and is realized again. Guarded selectors are
// skipped, so a rule never fires twice on its own output. When no user
// recipe applies, the node's base recipe renders it.
//
// Consecutive list and enum items are grouped into one list or enum node
// before they are shown. A paragraph break, any other block, or styles
// holding a list or enum rule end the group.
package realize
