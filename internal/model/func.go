package model

import (
	"context"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/syntax"
)

// NativeFunc is the implementation behind a Func.
type NativeFunc func(ctx context.Context, args *Args) (Value, error)

// Func is a callable value: a closure or a library function.
type Func struct {
	name   string
	argc   int // -1 if the function takes any number of arguments
	native NativeFunc
}

// NewFunc creates a function that declares argc parameters.
// Pass a negative argc for functions with a variable parameter list.
func NewFunc(name string, argc int, native NativeFunc) *Func {
	if argc < 0 {
		argc = -1
	}
	return &Func{name: name, argc: argc, native: native}
}

// Name returns the function name, empty for anonymous closures.
func (f *Func) Name() string { return f.name }

// Argc returns the number of declared parameters.
// ok is false when the function accepts a variable number of arguments.
func (f *Func) Argc() (n int, ok bool) {
	if f.argc < 0 {
		return 0, false
	}
	return f.argc, true
}

// Call invokes the function.
func (f *Func) Call(ctx context.Context, args *Args) (Value, error) {
	return f.native(ctx, args)
}

// Arg is a single call argument.
type Arg struct {
	Span  syntax.Span
	Name  string // empty for positional arguments
	Value Value
}

// Args are the arguments of a function call. Accessors consume what they
// return so Finish can report leftovers.
type Args struct {
	Span  syntax.Span
	Items []Arg
}

// NewArgs creates positional arguments located at span.
func NewArgs(span syntax.Span, values ...Value) *Args {
	args := &Args{Span: span}
	for _, v := range values {
		args.Push(span, "", v)
	}
	return args
}

// Push appends an argument. An empty name makes it positional.
func (a *Args) Push(span syntax.Span, name string, v Value) {
	a.Items = append(a.Items, Arg{Span: span, Name: name, Value: v})
}

// Len returns the number of unconsumed arguments.
func (a *Args) Len() int { return len(a.Items) }

// Eat consumes the first positional argument.
func (a *Args) Eat() (Value, bool) {
	for i, arg := range a.Items {
		if arg.Name == "" {
			a.Items = append(a.Items[:i:i], a.Items[i+1:]...)
			return arg.Value, true
		}
	}
	return nil, false
}

// Expect consumes the first positional argument or fails with a missing
// argument error.
func (a *Args) Expect(what string) (Value, error) {
	if v, ok := a.Eat(); ok {
		return v, nil
	}
	return nil, diag.Errorf(diag.CodeArgs, a.Span, "missing argument: %s", what)
}

// Named consumes the named argument. The last occurrence wins.
func (a *Args) Named(name string) (Value, bool) {
	var (
		found Value
		ok    bool
	)
	kept := a.Items[:0:0]
	for _, arg := range a.Items {
		if arg.Name == name {
			found, ok = arg.Value, true
			continue
		}
		kept = append(kept, arg)
	}
	a.Items = kept
	return found, ok
}

// All consumes every remaining positional argument.
func (a *Args) All() []Value {
	var out []Value
	kept := a.Items[:0:0]
	for _, arg := range a.Items {
		if arg.Name == "" {
			out = append(out, arg.Value)
			continue
		}
		kept = append(kept, arg)
	}
	a.Items = kept
	return out
}

// Finish fails if any argument was not consumed.
func (a *Args) Finish() error {
	if len(a.Items) == 0 {
		return nil
	}
	arg := a.Items[0]
	if arg.Name != "" {
		return diag.Errorf(diag.CodeArgs, arg.Span, "unexpected argument: %s", arg.Name)
	}
	return diag.Errorf(diag.CodeArgs, arg.Span, "unexpected argument")
}
