package model

import (
	"strings"
)

// Content is a sealed interface over the document tree.
// Content is also a Value.
type Content interface {
	Value
	content()
}

// Empty is content that renders nothing.
type Empty struct{}

// Text is a run of text.
type Text string

// Space is a word space.
type Space struct{}

// Linebreak is a forced line break.
type Linebreak struct{}

// Parbreak separates paragraphs. It also ends list grouping.
type Parbreak struct{}

// ItemKind distinguishes list items from enumeration items.
type ItemKind int

const (
	ItemList ItemKind = iota
	ItemEnum
)

// Item is a single list or enumeration item before grouping.
// Realization groups consecutive items of one kind into a node.
type Item struct {
	Kind ItemKind
	Body Content
}

// Show is a showable node, optionally with the field dictionary a recipe
// function sees when it receives the node.
type Show struct {
	Node   ShowNode
	Fields *Dict
}

// Styled is content with style entries applied to it.
type Styled struct {
	Body   Content
	Styles StyleMap
}

// Sequence is a list of content.
type Sequence []Content

// Block is a block-level element with a marker, the output of base recipes.
// Nested blocks indent.
type Block struct {
	Marker string
	Body   Content
}

func (Empty) value()     {}
func (Text) value()      {}
func (Space) value()     {}
func (Linebreak) value() {}
func (Parbreak) value()  {}
func (*Item) value()     {}
func (*Show) value()     {}
func (*Styled) value()   {}
func (Sequence) value()  {}
func (*Block) value()    {}

func (Empty) content()     {}
func (Text) content()      {}
func (Space) content()     {}
func (Linebreak) content() {}
func (Parbreak) content()  {}
func (*Item) content()     {}
func (*Show) content()     {}
func (*Styled) content()   {}
func (Sequence) content()  {}
func (*Block) content()    {}

// Field returns a field of the shown node.
func (s *Show) Field(name string) (Value, bool) {
	if s.Fields != nil {
		return s.Fields.Get(name)
	}
	return s.Node.Encode().Get(name)
}

// NewStyled wraps body in the given style entries.
func NewStyled(body Content, entries ...StyleEntry) *Styled {
	return &Styled{Body: body, Styles: StyleMap(entries)}
}

// Join concatenates content, flattening sequences and dropping empties.
func Join(parts ...Content) Content {
	var seq Sequence
	for _, part := range parts {
		switch p := part.(type) {
		case nil, Empty:
		case Sequence:
			for _, inner := range p {
				if _, ok := inner.(Empty); !ok && inner != nil {
					seq = append(seq, inner)
				}
			}
		default:
			seq = append(seq, part)
		}
	}
	switch len(seq) {
	case 0:
		return Empty{}
	case 1:
		return seq[0]
	}
	return seq
}

// IsEmpty reports whether c renders nothing.
func IsEmpty(c Content) bool {
	switch c := c.(type) {
	case nil, Empty:
		return true
	case Text:
		return c == ""
	case Sequence:
		for _, part := range c {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	case *Styled:
		return IsEmpty(c.Body)
	}
	return false
}

// PlainText extracts the text of c, rendering nodes through their base
// behaviour.
func PlainText(c Content) string {
	var b strings.Builder
	writePlain(&b, c)
	return b.String()
}

func writePlain(b *strings.Builder, c Content) {
	switch c := c.(type) {
	case Text:
		b.WriteString(string(c))
	case Space:
		b.WriteByte(' ')
	case Linebreak:
		b.WriteByte('\n')
	case Parbreak:
		b.WriteString("\n\n")
	case *Item:
		writePlain(b, c.Body)
	case *Show:
		writePlain(b, c.Node.Realize())
	case *Styled:
		writePlain(b, c.Body)
	case Sequence:
		for _, part := range c {
			writePlain(b, part)
		}
	case *Block:
		b.WriteString(c.Marker)
		b.WriteByte(' ')
		writePlain(b, c.Body)
	}
}
