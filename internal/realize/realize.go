package realize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/marq/internal/model"
	"github.com/roach88/marq/internal/telemetry"
)

// Option configures realization.
type Option func(*builder)

// WithMetrics records recipe applications and guard skips in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *builder) { b.metrics = m }
}

// WithStyles realizes content under an outer style chain.
func WithStyles(chain *model.StyleChain) Option {
	return func(b *builder) { b.chain = chain }
}

// Realize builds the document for content. A failing show rule aborts
// realization with its error.
func Realize(ctx context.Context, content model.Content, opts ...Option) (*Document, error) {
	b := &builder{ctx: ctx}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.accept(content, b.chain); err != nil {
		return nil, err
	}
	if err := b.finish(); err != nil {
		return nil, err
	}
	if b.doc.Blocks == nil {
		b.doc.Blocks = []Block{}
	}
	return &b.doc, nil
}

// group collects consecutive items of one kind.
type group struct {
	kind  model.ItemKind
	chain *model.StyleChain
	items []model.Content
}

type builder struct {
	ctx     context.Context
	metrics *telemetry.Metrics
	chain   *model.StyleChain
	depth   int

	doc   Document
	par   strings.Builder
	group *group
}

func (b *builder) child() *builder {
	return &builder{ctx: b.ctx, metrics: b.metrics, depth: b.depth + 1}
}

func (b *builder) accept(c model.Content, chain *model.StyleChain) error {
	switch c := c.(type) {
	case nil, model.Empty:
	case model.Text:
		if err := b.finishGroup(); err != nil {
			return err
		}
		b.par.WriteString(string(c))
	case model.Space:
		if b.group == nil {
			b.par.WriteByte(' ')
		}
	case model.Linebreak:
		if err := b.finishGroup(); err != nil {
			return err
		}
		b.par.WriteByte('\n')
	case model.Parbreak:
		return b.finish()
	case *model.Item:
		return b.item(c, chain)
	case *model.Show:
		if err := b.ctx.Err(); err != nil {
			return err
		}
		return b.show(c, chain)
	case *model.Styled:
		return b.styled(c, chain)
	case model.Sequence:
		for _, part := range c {
			if err := b.accept(part, chain); err != nil {
				return err
			}
		}
	case *model.Block:
		return b.block(c, chain)
	default:
		return fmt.Errorf("realize: unexpected content %T", c)
	}
	return nil
}

func (b *builder) styled(s *model.Styled, chain *model.StyleChain) error {
	_, interrupts := s.Styles.Interruption()
	if interrupts {
		if err := b.finishGroup(); err != nil {
			return err
		}
	}
	if err := b.accept(s.Body, chain.Chain(s.Styles)); err != nil {
		return err
	}
	if interrupts {
		return b.finishGroup()
	}
	return nil
}

// item adds an item to the pending group. Items under styles the group does
// not share keep those styles on their body.
func (b *builder) item(it *model.Item, chain *model.StyleChain) error {
	body := it.Body
	if g := b.group; g != nil {
		styles, ok := chain.Since(g.chain)
		if ok && g.kind == it.Kind {
			if len(styles) > 0 {
				body = model.NewStyled(body, styles...)
			}
			g.items = append(g.items, body)
			return nil
		}
		if err := b.finishGroup(); err != nil {
			return err
		}
	}
	b.flushPar()
	b.group = &group{kind: it.Kind, chain: chain, items: []model.Content{body}}
	return nil
}

// finishGroup shows the pending list or enum, if any.
func (b *builder) finishGroup() error {
	g := b.group
	if g == nil {
		return nil
	}
	b.group = nil

	var node model.ShowNode
	if g.kind == model.ItemEnum {
		node = &model.EnumNode{Items: g.items, Start: 1}
	} else {
		node = &model.ListNode{Items: g.items, Tight: true}
	}
	return b.show(&model.Show{Node: node}, g.chain)
}

// show resolves a node through the style chain and realizes the result.
func (b *builder) show(s *model.Show, chain *model.StyleChain) error {
	target := model.NodeTarget{Node: s}
	for i, recipe := range chain.Recipes() {
		if !recipe.Applicable(target) {
			continue
		}
		sel := model.Nth(i)
		pattern := recipe.Pattern().String()
		if chain.Guarded(sel) {
			b.metrics.GuardSkipped(pattern)
			continue
		}

		out, outcome, err := recipe.Apply(b.ctx, sel, target)
		if err != nil {
			return err
		}
		b.metrics.RecipeApplied(pattern, outcome.String())
		slog.Debug("applied show rule",
			"selector", sel,
			"pattern", pattern,
			"outcome", outcome,
			"span", recipe.Span(),
		)
		return b.accept(out, chain)
	}

	base := model.Base(s.Node.ID())
	if chain.Guarded(base) {
		return b.accept(s.Node.Realize(), chain)
	}
	unguarded := s.Node.Unguard(base)
	return b.accept(model.NewStyled(unguarded.Realize(), model.GuardEntry(base)), chain)
}

// block renders a marked block. Its first paragraph becomes the block text;
// anything else in its body nests one level deeper.
func (b *builder) block(blk *model.Block, chain *model.StyleChain) error {
	if err := b.finishGroup(); err != nil {
		return err
	}
	b.flushPar()

	inner := b.child()
	if err := inner.accept(blk.Body, chain); err != nil {
		return err
	}
	if err := inner.finish(); err != nil {
		return err
	}

	nested := inner.doc.Blocks
	text := ""
	if len(nested) > 0 && nested[0].Marker == "" && nested[0].Depth == inner.depth {
		text = nested[0].Text
		nested = nested[1:]
	}
	b.doc.Blocks = append(b.doc.Blocks, Block{Depth: b.depth, Marker: blk.Marker, Text: text})
	b.doc.Blocks = append(b.doc.Blocks, nested...)
	return nil
}

// finish ends the pending group and paragraph.
func (b *builder) finish() error {
	if err := b.finishGroup(); err != nil {
		return err
	}
	b.flushPar()
	return nil
}

func (b *builder) flushPar() {
	text := normalize(b.par.String())
	b.par.Reset()
	if text == "" {
		return
	}
	b.doc.Blocks = append(b.doc.Blocks, Block{Depth: b.depth, Text: text})
}
