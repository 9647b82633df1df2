package model

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/syntax"
)

// Value is a sealed interface over runtime values.
// Only the types in this package implement it.
type Value interface {
	value()
}

// None is the absence of a value.
type None struct{}

// Auto is the "pick something sensible" value.
type Auto struct{}

// Bool is a boolean value.
type Bool bool

// Int is a 64-bit integer value.
type Int int64

// Float is a floating point value.
type Float float64

// Numeric is a number with a unit: a length, ratio or fraction.
type Numeric struct {
	Value float64
	Unit  syntax.Unit
}

// Str is a string value.
type Str string

// Array is an ordered list of values.
type Array []Value

func (None) value()    {}
func (Auto) value()    {}
func (Bool) value()    {}
func (Int) value()     {}
func (Float) value()   {}
func (Numeric) value() {}
func (Str) value()     {}
func (Array) value()   {}
func (*Dict) value()   {}
func (*Func) value()   {}
func (*Module) value() {}

// TypeName returns the user-facing name of the value's type.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil, None:
		return "none"
	case Auto:
		return "auto"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "float"
	case Numeric:
		switch v.Unit {
		case syntax.UnitPercent:
			return "ratio"
		case syntax.UnitFr:
			return "fraction"
		default:
			return "length"
		}
	case Str:
		return "string"
	case Array:
		return "array"
	case *Dict:
		return "dictionary"
	case Content:
		return "content"
	case *Func:
		return "function"
	case *Module:
		return "module"
	}
	return "unknown"
}

// Repr returns the source-like representation of a value.
func Repr(v Value) string {
	switch v := v.(type) {
	case nil, None:
		return "none"
	case Auto:
		return "auto"
	case Bool:
		return strconv.FormatBool(bool(v))
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return formatFloat(float64(v))
	case Numeric:
		return strconv.FormatFloat(v.Value, 'g', -1, 64) + string(v.Unit)
	case Str:
		return strconv.Quote(string(v))
	case Array:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Repr(item)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Dict:
		if v.Len() == 0 {
			return "(:)"
		}
		parts := make([]string, 0, v.Len())
		for _, k := range v.Keys() {
			item, _ := v.Get(k)
			parts = append(parts, k+": "+Repr(item))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Func:
		if v.name == "" {
			return "(..) => .."
		}
		return v.name
	case *Module:
		return "<module " + v.Name + ">"
	case Content:
		return "[" + PlainText(v) + "]"
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Equal reports whether two values are equal.
// Integers and floats compare by numeric value.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Int:
		if bf, ok := b.(Float); ok {
			return float64(a) == float64(bf)
		}
	case Float:
		if bi, ok := b.(Int); ok {
			return float64(a) == float64(bi)
		}
	case Array:
		bb, ok := b.(Array)
		if !ok || len(a) != len(bb) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bb[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bd, ok := b.(*Dict)
		if !ok || a.Len() != bd.Len() {
			return false
		}
		for _, k := range a.Keys() {
			av, _ := a.Get(k)
			bv, found := bd.Get(k)
			if !found || !Equal(av, bv) {
				return false
			}
		}
		return true
	case *Func, *Module:
		return a == b
	case Content:
		bc, ok := b.(Content)
		return ok && reflect.DeepEqual(a, bc)
	}
	return a == b
}

// Field projects the named field out of v.
// Dictionaries, modules and shown nodes have fields.
func Field(v Value, name string) (Value, error) {
	switch v := v.(type) {
	case *Dict:
		if item, ok := v.Get(name); ok {
			return item, nil
		}
		return nil, diag.Errorf(diag.CodeUnknown, syntax.Detached(), "dictionary does not contain key %q", name)
	case *Module:
		if item, ok := v.Scope.Get(name); ok {
			return item, nil
		}
		return nil, diag.Errorf(diag.CodeUnknown, syntax.Detached(), "module %s does not contain %q", v.Name, name)
	case *Show:
		if item, ok := v.Field(name); ok {
			return item, nil
		}
		return nil, diag.Errorf(diag.CodeUnknown, syntax.Detached(), "%s does not have field %q", v.Node.ID(), name)
	}
	return nil, diag.Errorf(diag.CodeType, syntax.Detached(), "cannot access fields on type %s", TypeName(v))
}
