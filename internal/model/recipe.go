package model

import (
	"context"
	"fmt"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/syntax"
)

// Interruption classifies how an active recipe disturbs structural grouping.
type Interruption int

const (
	// InterruptionList means list and enum grouping must be flushed.
	InterruptionList Interruption = iota + 1
)

func (i Interruption) String() string {
	if i == InterruptionList {
		return "list"
	}
	return "unknown"
}

// Target is the candidate a pattern is matched against.
type Target interface {
	target()
}

// NodeTarget targets a shown node.
type NodeTarget struct {
	Node *Show
}

func (NodeTarget) target() {}

// Pattern decides which targets a recipe applies to.
type Pattern interface {
	Matches(t Target) bool
	String() string
}

// NodePattern matches nodes of one kind.
type NodePattern struct {
	ID NodeID
}

// Matches reports whether t is a node of kind p.ID.
func (p NodePattern) Matches(t Target) bool {
	nt, ok := t.(NodeTarget)
	if !ok || nt.Node == nil || nt.Node.Node == nil {
		return false
	}
	return nt.Node.Node.ID() == p.ID
}

func (p NodePattern) String() string { return p.ID.String() }

type selectorKind int

const (
	selectorNth selectorKind = iota
	selectorBase
)

// Selector identifies one recipe occurrence in a style chain. Selectors are
// comparable and serve as guard keys.
type Selector struct {
	kind selectorKind
	n    int
	id   NodeID
}

// Nth selects the n-th recipe of the chain, counted from the innermost.
func Nth(n int) Selector {
	return Selector{kind: selectorNth, n: n}
}

// Base selects the built-in rendering of node kind id.
func Base(id NodeID) Selector {
	return Selector{kind: selectorBase, id: id}
}

func (s Selector) String() string {
	if s.kind == selectorBase {
		return fmt.Sprintf("base(%s)", s.id)
	}
	return fmt.Sprintf("nth(%d)", s.n)
}

// Outcome is the result of applying a recipe.
type Outcome int

const (
	// OutcomeNotApplicable means the pattern did not match.
	OutcomeNotApplicable Outcome = iota

	// OutcomeProduced means the recipe returned content.
	OutcomeProduced

	// OutcomeProducedNothing means the recipe matched and returned empty
	// content.
	OutcomeProducedNothing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProduced:
		return "produced"
	case OutcomeProducedNothing:
		return "produced-nothing"
	}
	return "not-applicable"
}

// Recipe is a show rule: a pattern, the function that transforms matching
// nodes and the location of the rule. Recipes are immutable and shared by
// every chain position that references them.
type Recipe struct {
	pattern Pattern
	fn      *Func
	span    syntax.Span
}

// NewRecipe builds a show rule. Functions that declare more than one
// parameter are rejected.
func NewRecipe(pattern Pattern, fn *Func, span syntax.Span) (*Recipe, error) {
	if pattern == nil {
		return nil, diag.Errorf(diag.CodeRecipe, span, "show rule needs a pattern")
	}
	if fn == nil {
		return nil, diag.Errorf(diag.CodeRecipe, span, "show rule needs a function")
	}
	if argc, ok := fn.Argc(); ok && argc > 1 {
		return nil, diag.Errorf(diag.CodeRecipe, span,
			"show rule function must take zero or one argument, found %d", argc).
			WithHint("the function receives the matched node as its only argument")
	}
	return &Recipe{pattern: pattern, fn: fn, span: span}, nil
}

// Pattern returns the recipe's pattern.
func (r *Recipe) Pattern() Pattern { return r.pattern }

// Func returns the transforming function.
func (r *Recipe) Func() *Func { return r.fn }

// Span returns the location of the show rule.
func (r *Recipe) Span() syntax.Span { return r.span }

// Applicable reports whether the recipe matches t. Never panics.
func (r *Recipe) Applicable(t Target) bool {
	if r == nil || r.pattern == nil || t == nil {
		return false
	}
	return r.pattern.Matches(t)
}

// Apply runs the recipe on t as the occurrence sel.
//
// A target the pattern does not match yields OutcomeNotApplicable and no
// error. Otherwise the matched node is unguarded for sel, passed to the
// function (unless it declares no parameters), and the result is cast to
// content and wrapped in a Guard(sel) style. Errors carry the recipe span
// unless they already have one. The outcome is meaningless when err is set.
func (r *Recipe) Apply(ctx context.Context, sel Selector, t Target) (Content, Outcome, error) {
	if !r.Applicable(t) {
		return nil, OutcomeNotApplicable, nil
	}

	args := NewArgs(r.span)
	if argc, ok := r.fn.Argc(); !ok || argc > 0 {
		arg, ok := r.argument(sel, t)
		if !ok {
			return nil, OutcomeNotApplicable, nil
		}
		args.Push(r.span, "", arg)
	}

	v, err := r.fn.Call(ctx, args)
	if err != nil {
		return nil, OutcomeNotApplicable, diag.At(r.span, err)
	}
	body, err := CastContent(v)
	if err != nil {
		return nil, OutcomeNotApplicable, diag.At(r.span, err)
	}

	out := NewStyled(body, GuardEntry(sel))
	if IsEmpty(body) {
		return out, OutcomeProducedNothing, nil
	}
	return out, OutcomeProduced, nil
}

// argument builds the value a recipe function receives for t.
func (r *Recipe) argument(sel Selector, t Target) (Value, bool) {
	switch t := t.(type) {
	case NodeTarget:
		node := t.Node.Node.Unguard(sel)
		return &Show{Node: node, Fields: node.Encode()}, true
	}
	return nil, false
}

// Interruption reports whether the recipe interrupts list grouping. It
// depends on the pattern only.
func (r *Recipe) Interruption() (Interruption, bool) {
	if r == nil {
		return 0, false
	}
	if p, ok := r.pattern.(NodePattern); ok && (p.ID == ListID || p.ID == EnumID) {
		return InterruptionList, true
	}
	return 0, false
}
