package eval

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/marq/internal/diag"
	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/syntax"
	"github.com/roach88/marq/internal/world"
)

// Eval evaluates source into a module.
//
// route lists the sources already being evaluated; importing one of them is
// a cycle error. tracer may be nil. Function calls draw on the quota carried
// by ctx (see WithQuota), or on a fresh DefaultQuota.
func Eval(ctx context.Context, w world.World, route Route, tracer *Tracer, source *syntax.Source) (*model.Module, error) {
	ctx = withDefaultQuota(ctx)
	if route.Contains(source.ID()) {
		return nil, diag.Errorf(diag.CodeCycle, syntax.Detached(), "cyclic import of %s", source.Path())
	}

	slog.Debug("evaluating source",
		"source", source.Path(),
		"depth", route.Len(),
		"traced", tracer != nil,
	)

	scope := model.NewScope()
	v := &vm{
		ctx:    ctx,
		world:  w,
		route:  route.Push(source.ID()),
		tracer: tracer,
		source: source,
		env:    &env{scope: scope, parent: &env{scope: Library()}},
	}
	content, err := v.statements(source.Root().Children)
	if err != nil {
		return nil, err
	}
	return &model.Module{Name: moduleName(source.Path()), Scope: scope, Content: content}, nil
}

func moduleName(path string) string {
	base := filepath.Base(path)
	if path == "" || base == "." {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// env is a lexical scope chain.
type env struct {
	scope  *model.Scope
	parent *env
}

func (e *env) lookup(name string) (model.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.scope.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

type vm struct {
	ctx    context.Context
	world  world.World
	route  Route
	tracer *Tracer
	source *syntax.Source
	env    *env
}

// statements evaluates a statement list and joins the content it produced.
func (v *vm) statements(stmts []*syntax.Node) (model.Content, error) {
	var parts []model.Content
	for i, stmt := range stmts {
		if err := v.ctx.Err(); err != nil {
			return nil, err
		}
		switch stmt.Kind {
		case syntax.KindError:
			return nil, diag.Errorf(diag.CodeSyntax, stmt.Span, "%s", stmt.Text)
		case syntax.KindLet:
			if err := v.let(stmt); err != nil {
				return nil, err
			}
		case syntax.KindImport:
			if err := v.importStmt(stmt); err != nil {
				return nil, err
			}
		case syntax.KindShow:
			recipe, err := v.show(stmt)
			if err != nil {
				return nil, err
			}
			rest, err := v.statements(stmts[i+1:])
			if err != nil {
				return nil, err
			}
			parts = append(parts, model.NewStyled(rest, model.RecipeEntry(recipe)))
			return model.Join(parts...), nil
		default:
			val, err := v.expr(stmt)
			if err != nil {
				return nil, err
			}
			parts = append(parts, model.Display(val))
		}
	}
	return model.Join(parts...), nil
}

func (v *vm) let(stmt *syntax.Node) error {
	name := stmt.Child(0)
	var (
		val model.Value = model.None{}
		err error
	)
	switch init := stmt.Child(1); {
	case init == nil:
	case init.Kind == syntax.KindParams:
		val = v.closure(name.Text, init, stmt.Child(2))
	default:
		val, err = v.expr(init)
		if err != nil {
			return err
		}
	}
	v.env.scope.Define(name.Text, val)
	v.tracer.Trace(name.Span, val)
	return nil
}

func (v *vm) show(stmt *syntax.Node) (*model.Recipe, error) {
	target := stmt.Child(0)
	id, ok := model.LookupNode(target.Text)
	if !ok {
		return nil, diag.Errorf(diag.CodeUnknown, target.Span, "unknown node %q", target.Text).
			WithHint("show rules apply to list, enum, heading, strong and emph")
	}

	transform := stmt.Child(1)
	val, err := v.expr(transform)
	if err != nil {
		return nil, err
	}

	fn, ok := val.(*model.Func)
	if !ok {
		replacement, err := model.CastContent(val)
		if err != nil {
			return nil, diag.Errorf(diag.CodeCast, transform.Span,
				"expected function or content, found %s", model.TypeName(val))
		}
		fn = model.NewFunc("", 0, func(context.Context, *model.Args) (model.Value, error) {
			return replacement, nil
		})
	}
	return model.NewRecipe(model.NodePattern{ID: id}, fn, stmt.Span)
}

func (v *vm) importStmt(stmt *syntax.Node) error {
	pathNode := stmt.Child(0)
	path := pathNode.Str()
	v.tracer.Trace(pathNode.Span, model.Str(path))

	mod, err := v.load(path, pathNode.Span)
	if err != nil {
		return err
	}
	if alias := stmt.Child(1); alias != nil {
		v.env.scope.Define(alias.Text, mod)
		v.tracer.Trace(alias.Span, mod)
		return nil
	}
	for _, name := range mod.Scope.Names() {
		item, _ := mod.Scope.Get(name)
		v.env.scope.Define(name, item)
	}
	return nil
}

// load resolves and evaluates an imported module. Modules the tracer cannot
// observe are served from the world's cache.
func (v *vm) load(path string, span syntax.Span) (*model.Module, error) {
	resolved := world.ImportPath(v.world.Root(), v.source.Path(), path)
	id, err := v.world.Resolve(resolved)
	if err != nil {
		return nil, &diag.Error{
			Code:    diag.CodeImport,
			Span:    span,
			Message: "cannot find module " + path,
			Hints:   []string{"resolved to " + resolved},
		}
	}
	if v.route.Contains(id) {
		return nil, diag.Errorf(diag.CodeCycle, span, "cyclic import of %s", path)
	}
	src := v.world.Source(id)
	if src == nil {
		return nil, diag.Errorf(diag.CodeImport, span, "cannot load module %s", path)
	}

	var mod *model.Module
	if v.tracer.Inspects(id) {
		mod, err = Eval(v.ctx, v.world, v.route, v.tracer, src)
	} else {
		mod, err = world.Memoized(v.world, src, func() (*model.Module, error) {
			return Eval(v.ctx, v.world, v.route, nil, src)
		})
	}
	if err != nil {
		return nil, diag.At(span, err)
	}
	return mod, nil
}

// closure creates a function whose body runs in the current scope chain
// extended by its parameters.
func (v *vm) closure(name string, params, body *syntax.Node) *model.Func {
	captured := v.env
	names := make([]string, len(params.Children))
	for i, p := range params.Children {
		names[i] = p.Text
	}
	return model.NewFunc(name, len(names), func(ctx context.Context, args *model.Args) (model.Value, error) {
		scope := model.NewScope()
		for _, p := range names {
			val, err := args.Expect(p)
			if err != nil {
				return nil, err
			}
			scope.Define(p, val)
		}
		if err := args.Finish(); err != nil {
			return nil, err
		}
		inner := &vm{
			ctx:    ctx,
			world:  v.world,
			route:  v.route,
			tracer: v.tracer,
			source: v.source,
			env:    &env{scope: scope, parent: captured},
		}
		return inner.expr(body)
	})
}
