package eval

import (
	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
)

// Literal returns the value of a literal node without evaluating anything.
func Literal(n *syntax.Node) (model.Value, bool) {
	switch n.Kind {
	case syntax.KindNone:
		return model.None{}, true
	case syntax.KindAuto:
		return model.Auto{}, true
	case syntax.KindBool:
		return model.Bool(n.Bool()), true
	case syntax.KindInt:
		return model.Int(n.Int()), true
	case syntax.KindFloat:
		return model.Float(n.Float()), true
	case syntax.KindNumeric:
		v, unit := n.Numeric()
		return model.Numeric{Value: v, Unit: unit}, true
	case syntax.KindStr:
		return model.Str(n.Str()), true
	}
	return nil, false
}

// expr evaluates an expression and offers its value to the tracer.
func (v *vm) expr(n *syntax.Node) (model.Value, error) {
	val, err := v.eval(n)
	if err != nil {
		return nil, err
	}
	v.tracer.Trace(n.Span, val)
	return val, nil
}

func (v *vm) eval(n *syntax.Node) (model.Value, error) {
	if lit, ok := Literal(n); ok {
		return lit, nil
	}

	switch n.Kind {
	case syntax.KindIdent:
		if val, ok := v.env.lookup(n.Text); ok {
			return val, nil
		}
		return nil, diag.Errorf(diag.CodeUnknown, n.Span, "unknown variable: %s", n.Text)

	case syntax.KindFieldAccess:
		target, err := v.expr(n.Child(0))
		if err != nil {
			return nil, err
		}
		field := n.Child(1)
		val, err := model.Field(target, field.Text)
		if err != nil {
			return nil, diag.At(field.Span, err)
		}
		return val, nil

	case syntax.KindCall:
		return v.call(n)

	case syntax.KindClosure:
		return v.closure("", n.Child(0), n.Child(1)), nil

	case syntax.KindParen:
		return v.expr(n.Child(0))

	case syntax.KindArray:
		arr := make(model.Array, 0, len(n.Children))
		for _, item := range n.Children {
			val, err := v.expr(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil

	case syntax.KindDict:
		dict := model.NewDict()
		for _, pair := range n.Children {
			val, err := v.expr(pair.Child(1))
			if err != nil {
				return nil, err
			}
			dict.Set(pair.Child(0).Text, val)
		}
		return dict, nil

	case syntax.KindUnary:
		operand, err := v.expr(n.Child(0))
		if err != nil {
			return nil, err
		}
		val, err := unary(n.Text, operand)
		return val, diag.At(n.Span, err)

	case syntax.KindBinary:
		return v.binary(n)

	case syntax.KindContentBlock:
		return v.markup(n.Child(0))

	case syntax.KindError:
		return nil, diag.Errorf(diag.CodeSyntax, n.Span, "%s", n.Text)
	}
	return nil, diag.Errorf(diag.CodeSyntax, n.Span, "unexpected %s", n.Kind)
}

func (v *vm) call(n *syntax.Node) (model.Value, error) {
	callee, err := v.expr(n.Child(0))
	if err != nil {
		return nil, err
	}
	fn, err := model.CastFunc(callee)
	if err != nil {
		return nil, diag.At(n.Child(0).Span, err)
	}

	argsNode := n.Child(1)
	args := &model.Args{Span: argsNode.Span}
	for _, item := range argsNode.Children {
		if item.Kind == syntax.KindNamed {
			val, err := v.expr(item.Child(1))
			if err != nil {
				return nil, err
			}
			args.Push(item.Span, item.Child(0).Text, val)
			continue
		}
		val, err := v.expr(item)
		if err != nil {
			return nil, err
		}
		args.Push(item.Span, "", val)
	}

	ctx, err := enter(v.ctx, n.Span)
	if err != nil {
		return nil, err
	}
	val, err := fn.Call(ctx, args)
	if err != nil {
		return nil, diag.At(n.Span, err)
	}
	return val, nil
}

func (v *vm) binary(n *syntax.Node) (model.Value, error) {
	lhs, err := v.expr(n.Child(0))
	if err != nil {
		return nil, err
	}

	switch n.Text {
	case "and", "or":
		l, err := model.CastBool(lhs)
		if err != nil {
			return nil, diag.At(n.Child(0).Span, err)
		}
		if (n.Text == "and" && !l) || (n.Text == "or" && l) {
			return model.Bool(l), nil
		}
		rhs, err := v.expr(n.Child(1))
		if err != nil {
			return nil, err
		}
		r, err := model.CastBool(rhs)
		if err != nil {
			return nil, diag.At(n.Child(1).Span, err)
		}
		return model.Bool(r), nil
	}

	rhs, err := v.expr(n.Child(1))
	if err != nil {
		return nil, err
	}
	val, err := binary(n.Text, lhs, rhs)
	return val, diag.At(n.Span, err)
}

// markup evaluates the children of a markup node into content.
func (v *vm) markup(n *syntax.Node) (model.Content, error) {
	var parts []model.Content
	for _, child := range n.Children {
		var (
			part model.Content
			err  error
		)
		switch child.Kind {
		case syntax.KindText:
			part = model.Text(child.Text)
		case syntax.KindParbreak:
			part = model.Parbreak{}
		case syntax.KindStrong, syntax.KindEmph, syntax.KindHeading:
			part, err = v.markupNode(child)
		case syntax.KindListItem, syntax.KindEnumItem:
			var body model.Content
			body, err = v.markup(child.Child(0))
			kind := model.ItemList
			if child.Kind == syntax.KindEnumItem {
				kind = model.ItemEnum
			}
			part = &model.Item{Kind: kind, Body: body}
		default:
			var val model.Value
			val, err = v.expr(child)
			part = model.Display(val)
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return model.Join(parts...), nil
}

func (v *vm) markupNode(n *syntax.Node) (model.Content, error) {
	body, err := v.markup(n.Child(0))
	if err != nil {
		return nil, err
	}
	var node model.ShowNode
	switch n.Kind {
	case syntax.KindStrong:
		node = &model.StrongNode{Body: body}
	case syntax.KindEmph:
		node = &model.EmphNode{Body: body}
	default:
		node = &model.HeadingNode{Level: int64(min(n.Level(), model.MaxHeadingLevel)), Body: body}
	}
	return &model.Show{Node: node}, nil
}
