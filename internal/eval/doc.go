// Package eval is a tree-walking evaluator for marq sources.
//
// Eval turns a source into a module: its top-level bindings plus the content
// its statements produced. A show rule wraps everything after it in the file
// in a Styled content carrying the rule's recipe. Every evaluated expression
// is offered to the optional Tracer together with its span, which is how
// tooling observes values without changing control flow. Evaluation stops at
// the first error; values traced before it stay recorded.
package eval
