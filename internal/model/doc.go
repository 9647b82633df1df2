// Package model holds the runtime values exchanged by the evaluator and the
// tooling, the content tree consumed by realization, and the show-rule
// machinery: recipes, patterns, selectors, guards and style chains.
//
// Values form a sealed union. Content is itself a value, so a recipe function
// can receive a node and return new content through the same protocol as any
// other function.
//
// A recipe that produced content wraps it in a Guard(selector) style. Any
// resolution loop walking a style chain must skip a recipe whose selector is
// guarded at the node under consideration. The matched node's children get
// an Unguard(selector) entry so nested nodes of the same kind are still shown.
package model
