package eval

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/model"
)

// Library returns the standard scope every module sees. The scope is shared
// and must not be modified.
var Library = sync.OnceValue(func() *model.Scope {
	scope := model.NewScope()
	define := func(name string, argc int, fn model.NativeFunc) {
		scope.Define(name, model.NewFunc(name, argc, fn))
	}

	define("list", -1, func(_ context.Context, args *model.Args) (model.Value, error) {
		tight, err := namedBool(args, "tight", true)
		if err != nil {
			return nil, err
		}
		items, err := contentItems(args)
		if err != nil {
			return nil, err
		}
		return &model.Show{Node: &model.ListNode{Items: items, Tight: tight}}, args.Finish()
	})

	define("enum", -1, func(_ context.Context, args *model.Args) (model.Value, error) {
		start, err := namedInt(args, "start", 1)
		if err != nil {
			return nil, err
		}
		items, err := contentItems(args)
		if err != nil {
			return nil, err
		}
		return &model.Show{Node: &model.EnumNode{Items: items, Start: start}}, args.Finish()
	})

	define("heading", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		level, err := namedInt(args, "level", 1)
		if err != nil {
			return nil, err
		}
		if level < 1 || level > model.MaxHeadingLevel {
			return nil, diag.Errorf(diag.CodeArgs, args.Span,
				"heading level must be between 1 and %d", model.MaxHeadingLevel)
		}
		body, err := contentArg(args, "body")
		if err != nil {
			return nil, err
		}
		return &model.Show{Node: &model.HeadingNode{Level: level, Body: body}}, args.Finish()
	})

	define("strong", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		body, err := contentArg(args, "body")
		if err != nil {
			return nil, err
		}
		return &model.Show{Node: &model.StrongNode{Body: body}}, args.Finish()
	})

	define("emph", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		body, err := contentArg(args, "body")
		if err != nil {
			return nil, err
		}
		return &model.Show{Node: &model.EmphNode{Body: body}}, args.Finish()
	})

	define("text", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		return model.Display(v), args.Finish()
	})

	define("repr", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		return model.Str(model.Repr(v)), args.Finish()
	})

	define("type", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		return model.Str(model.TypeName(v)), args.Finish()
	})

	define("len", 1, func(_ context.Context, args *model.Args) (model.Value, error) {
		v, err := args.Expect("value")
		if err != nil {
			return nil, err
		}
		var n int
		switch v := v.(type) {
		case model.Str:
			n = utf8.RuneCountInString(string(v))
		case model.Array:
			n = len(v)
		case *model.Dict:
			n = v.Len()
		default:
			return nil, diag.Errorf(diag.CodeType, args.Span, "cannot take the length of %s", model.TypeName(v))
		}
		return model.Int(n), args.Finish()
	})

	return scope
})

func contentArg(args *model.Args, what string) (model.Content, error) {
	v, err := args.Expect(what)
	if err != nil {
		return nil, err
	}
	return model.CastContent(v)
}

// contentItems consumes the positional arguments as content. A single array
// argument supplies the items itself.
func contentItems(args *model.Args) ([]model.Content, error) {
	values := args.All()
	if len(values) == 1 {
		if arr, ok := values[0].(model.Array); ok {
			values = arr
		}
	}
	items := make([]model.Content, len(values))
	for i, v := range values {
		c, err := model.CastContent(v)
		if err != nil {
			return nil, err
		}
		items[i] = c
	}
	return items, nil
}

func namedInt(args *model.Args, name string, def int64) (int64, error) {
	v, ok := args.Named(name)
	if !ok {
		return def, nil
	}
	return model.CastInt(v)
}

func namedBool(args *model.Args, name string, def bool) (bool, error) {
	v, ok := args.Named(name)
	if !ok {
		return def, nil
	}
	return model.CastBool(v)
}
