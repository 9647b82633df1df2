package eval

import (
	"math"
	"strings"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

func unary(op string, v model.Value) (model.Value, error) {
	switch op {
	case "-":
		switch v := v.(type) {
		case model.Int:
			if v == math.MinInt64 {
				return nil, tooLarge()
			}
			return -v, nil
		case model.Float:
			return -v, nil
		case model.Numeric:
			return model.Numeric{Value: -v.Value, Unit: v.Unit}, nil
		}
	case "not":
		if b, ok := v.(model.Bool); ok {
			return !b, nil
		}
	}
	return nil, typeError("cannot apply '%s' to %s", op, model.TypeName(v))
}

func binary(op string, l, r model.Value) (model.Value, error) {
	switch op {
	case "+":
		return add(l, r)
	case "-":
		return arith(op, l, r)
	case "*":
		return mul(l, r)
	case "/":
		return div(l, r)
	case "==":
		return model.Bool(model.Equal(l, r)), nil
	case "!=":
		return model.Bool(!model.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	}
	return nil, typeError("unknown operator %s", op)
}

func add(l, r model.Value) (model.Value, error) {
	switch l := l.(type) {
	case model.Str:
		switch r := r.(type) {
		case model.Str:
			if len(l)+len(r) > MaxStringLen {
				return nil, tooLarge()
			}
			return l + r, nil
		case model.Content:
			return model.Join(model.Text(l), r), nil
		}
	case model.Array:
		if r, ok := r.(model.Array); ok {
			if len(l)+len(r) > MaxArrayLen {
				return nil, tooLarge()
			}
			out := make(model.Array, 0, len(l)+len(r))
			return append(append(out, l...), r...), nil
		}
	case model.Content:
		switch r := r.(type) {
		case model.Content:
			return model.Join(l, r), nil
		case model.Str:
			return model.Join(l, model.Text(r)), nil
		}
	}
	return arith("+", l, r)
}

// arith applies + or - to numbers and to numerics of the same unit.
func arith(op string, l, r model.Value) (model.Value, error) {
	apply := func(a, b float64) float64 {
		if op == "+" {
			return a + b
		}
		return a - b
	}
	switch l := l.(type) {
	case model.Int:
		switch r := r.(type) {
		case model.Int:
			if op == "+" {
				return addInt(l, r)
			}
			return subInt(l, r)
		case model.Float:
			return model.Float(apply(float64(l), float64(r))), nil
		}
	case model.Float:
		if f, ok := toFloat(r); ok {
			return model.Float(apply(float64(l), f)), nil
		}
	case model.Numeric:
		if r, ok := r.(model.Numeric); ok && r.Unit == l.Unit {
			return model.Numeric{Value: apply(l.Value, r.Value), Unit: l.Unit}, nil
		}
	}
	verb := "add"
	if op == "-" {
		verb = "subtract"
	}
	return nil, typeError("cannot %s %s and %s", verb, model.TypeName(l), model.TypeName(r))
}

func mul(l, r model.Value) (model.Value, error) {
	switch l := l.(type) {
	case model.Int:
		switch r := r.(type) {
		case model.Int:
			return mulInt(l, r)
		case model.Float:
			return model.Float(float64(l) * float64(r)), nil
		case model.Numeric:
			return model.Numeric{Value: float64(l) * r.Value, Unit: r.Unit}, nil
		case model.Str:
			return repeat(r, l)
		}
	case model.Float:
		switch r := r.(type) {
		case model.Numeric:
			return model.Numeric{Value: float64(l) * r.Value, Unit: r.Unit}, nil
		default:
			if f, ok := toFloat(r); ok {
				return model.Float(float64(l) * f), nil
			}
		}
	case model.Numeric:
		if f, ok := toFloat(r); ok {
			return model.Numeric{Value: l.Value * f, Unit: l.Unit}, nil
		}
	case model.Str:
		if n, ok := r.(model.Int); ok {
			return repeat(l, n)
		}
	}
	return nil, typeError("cannot multiply %s with %s", model.TypeName(l), model.TypeName(r))
}

func div(l, r model.Value) (model.Value, error) {
	d, ok := toFloat(r)
	if !ok {
		return nil, typeError("cannot divide %s by %s", model.TypeName(l), model.TypeName(r))
	}
	if d == 0 {
		return nil, typeError("cannot divide by zero")
	}
	switch l := l.(type) {
	case model.Int, model.Float:
		f, _ := toFloat(l)
		return model.Float(f / d), nil
	case model.Numeric:
		return model.Numeric{Value: l.Value / d, Unit: l.Unit}, nil
	}
	return nil, typeError("cannot divide %s by %s", model.TypeName(l), model.TypeName(r))
}

func compare(op string, l, r model.Value) (model.Value, error) {
	var cmp int
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	ls, lstr := l.(model.Str)
	rs, rstr := r.(model.Str)
	switch {
	case lok && rok:
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case lstr && rstr:
		cmp = strings.Compare(string(ls), string(rs))
	default:
		ln, lnum := l.(model.Numeric)
		rn, rnum := r.(model.Numeric)
		if !lnum || !rnum || ln.Unit != rn.Unit {
			return nil, typeError("cannot compare %s with %s", model.TypeName(l), model.TypeName(r))
		}
		switch {
		case ln.Value < rn.Value:
			cmp = -1
		case ln.Value > rn.Value:
			cmp = 1
		}
	}
	switch op {
	case "<":
		return model.Bool(cmp < 0), nil
	case "<=":
		return model.Bool(cmp <= 0), nil
	case ">":
		return model.Bool(cmp > 0), nil
	}
	return model.Bool(cmp >= 0), nil
}

func repeat(s model.Str, n model.Int) (model.Value, error) {
	if n < 0 {
		return nil, typeError("cannot repeat a string a negative number of times")
	}
	if n > 0 && int64(len(s)) > MaxStringLen/int64(n) {
		return nil, typeError("cannot repeat a string of length %d %d times", len(s), n)
	}
	return model.Str(strings.Repeat(string(s), int(n))), nil
}

// Limits on values built by operators.
const (
	MaxStringLen = 1 << 24
	MaxArrayLen  = 1 << 20
)

func addInt(a, b model.Int) (model.Value, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return nil, tooLarge()
	}
	return a + b, nil
}

func subInt(a, b model.Int) (model.Value, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return nil, tooLarge()
	}
	return a - b, nil
}

func mulInt(a, b model.Int) (model.Value, error) {
	if a == 0 || b == 0 {
		return model.Int(0), nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, tooLarge()
	}
	return p, nil
}

func tooLarge() error {
	return typeError("value is too large")
}

func toFloat(v model.Value) (float64, bool) {
	switch v := v.(type) {
	case model.Int:
		return float64(v), true
	case model.Float:
		return float64(v), true
	}
	return 0, false
}

func typeError(format string, args ...any) error {
	return diag.Errorf(diag.CodeType, syntax.Detached(), format, args...)
}
