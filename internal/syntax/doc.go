// Package syntax provides the source model and parser for marq files.
//
// A Source owns its text, a parsed syntax tree and a line index. Every Node
// carries a Span (source id plus byte range) so that tooling can map between
// cursor positions and expressions, and so that the evaluator can report
// errors and trace values at exact locations.
//
// The parser never fails. Malformed statements become KindError nodes and
// parsing resumes at the next line, which keeps earlier statements usable for
// partial evaluation.
//
// This package imports nothing internal. All other internal packages build
// on it.
package syntax
