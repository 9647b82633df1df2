package model

import (
	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/syntax"
)

// CastContent converts v to content. None becomes empty content and strings
// become text; every other non-content value is a cast error.
func CastContent(v Value) (Content, error) {
	switch v := v.(type) {
	case nil, None:
		return Empty{}, nil
	case Str:
		return Text(v), nil
	case Content:
		return v, nil
	}
	return nil, castError("content", v)
}

// Display converts any value to content for embedding in markup.
func Display(v Value) Content {
	switch v := v.(type) {
	case nil, None:
		return Empty{}
	case Str:
		return Text(v)
	case Content:
		return v
	}
	return Text(Repr(v))
}

// CastInt converts v to an integer.
func CastInt(v Value) (int64, error) {
	if i, ok := v.(Int); ok {
		return int64(i), nil
	}
	return 0, castError("integer", v)
}

// CastBool converts v to a boolean.
func CastBool(v Value) (bool, error) {
	if b, ok := v.(Bool); ok {
		return bool(b), nil
	}
	return false, castError("boolean", v)
}

// CastFunc converts v to a function.
func CastFunc(v Value) (*Func, error) {
	if f, ok := v.(*Func); ok {
		return f, nil
	}
	return nil, castError("function", v)
}

func castError(expected string, found Value) error {
	return diag.Errorf(diag.CodeCast, syntax.Detached(), "expected %s, found %s", expected, TypeName(found))
}
