package syntax

import (
	"strings"
	"unicode/utf8"
)

func (p *parser) contentBlock() *Node {
	start := p.pos
	p.pos++
	depth := p.depth
	p.depth = 0
	body := p.markup(func() bool { return p.at(']') }, true)
	if !p.at(']') {
		p.fail("unclosed content block")
	}
	p.pos++
	p.depth = depth
	return &Node{Kind: KindContentBlock, Span: p.span(start), Children: []*Node{body}}
}

// markup parses markup until end reports true or the input runs out.
func (p *parser) markup(end func() bool, lineStart bool) *Node {
	start := p.pos
	var (
		children  []*Node
		text      strings.Builder
		textStart = -1
	)
	flush := func() {
		if textStart < 0 {
			return
		}
		children = append(children, &Node{
			Kind: KindText,
			Span: Span{Source: p.id, Start: textStart, End: p.pos},
			Text: text.String(),
		})
		text.Reset()
		textStart = -1
	}
	write := func(s string) {
		if textStart < 0 {
			textStart = p.pos
		}
		text.WriteString(s)
	}

	for !p.eof() && !end() {
		c := p.src[p.pos]
		if lineStart {
			if c == ' ' || c == '\t' {
				p.pos++
				continue
			}
			if kind, ok := p.lineMarker(); ok {
				flush()
				children = append(children, p.lineItem(kind, end))
				if p.at('\n') && !p.blankLineAhead() {
					p.pos++
				}
				continue
			}
		}
		lineStart = false

		switch {
		case c == '\n':
			if p.blankLineAhead() {
				flush()
				breakStart := p.pos
				p.skipBlankLines()
				children = append(children, &Node{Kind: KindParbreak, Span: p.span(breakStart)})
			} else {
				write(" ")
				p.pos++
			}
			lineStart = true
		case c == '\r':
			p.pos++
		case c == '#' && p.embedStartsAt(p.pos+1):
			flush()
			p.pos++
			children = append(children, p.postfix(p.primary()))
		case c == '*':
			flush()
			children = append(children, p.delimited(KindStrong, '*', end))
		case c == '_':
			flush()
			children = append(children, p.delimited(KindEmph, '_', end))
		case c == '[':
			flush()
			children = append(children, p.contentBlock())
		case c == '\\' && p.pos+1 < len(p.src):
			_, size := utf8.DecodeRuneInString(p.src[p.pos+1:])
			write(p.src[p.pos+1 : p.pos+1+size])
			p.pos += 1 + size
		default:
			_, size := utf8.DecodeRuneInString(p.src[p.pos:])
			write(p.src[p.pos : p.pos+size])
			p.pos += size
		}
	}
	flush()
	return &Node{Kind: KindMarkup, Span: p.span(start), Children: children}
}

// lineMarker reports whether a list item, enum item or heading starts here.
func (p *parser) lineMarker() (Kind, bool) {
	switch {
	case p.atStr("- "):
		return KindListItem, true
	case p.atStr("+ "):
		return KindEnumItem, true
	case p.at('='):
		i := p.pos
		for i < len(p.src) && p.src[i] == '=' {
			i++
		}
		if i < len(p.src) && p.src[i] == ' ' {
			return KindHeading, true
		}
	}
	return KindError, false
}

// lineItem parses a line-leading item. Its body runs to the end of the line.
func (p *parser) lineItem(kind Kind, end func() bool) *Node {
	start := p.pos
	markerEnd := p.pos + 1
	if kind == KindHeading {
		for markerEnd < len(p.src) && p.src[markerEnd] == '=' {
			markerEnd++
		}
	}
	marker := p.src[p.pos:markerEnd]
	p.pos = markerEnd
	for p.at(' ') {
		p.pos++
	}
	body := p.markup(func() bool { return p.at('\n') || end() }, false)
	return &Node{Kind: kind, Span: p.span(start), Text: marker, Children: []*Node{body}}
}

func (p *parser) delimited(kind Kind, delim byte, end func() bool) *Node {
	start := p.pos
	p.pos++
	body := p.markup(func() bool { return p.at(delim) || end() }, false)
	if !p.at(delim) {
		p.fail("unclosed %s", kind)
	}
	p.pos++
	return &Node{Kind: kind, Span: p.span(start), Children: []*Node{body}}
}

func (p *parser) embedStartsAt(i int) bool {
	if i >= len(p.src) {
		return false
	}
	switch p.src[i] {
	case '(', '[':
		return true
	}
	return p.identStartsAt(i)
}

// blankLineAhead reports whether the newline at the cursor is followed by a
// line holding only whitespace.
func (p *parser) blankLineAhead() bool {
	i := p.pos + 1
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t' || p.src[i] == '\r') {
		i++
	}
	return i < len(p.src) && p.src[i] == '\n'
}

func (p *parser) skipBlankLines() {
	for p.at('\n') {
		p.pos++
		for p.at(' ') || p.at('\t') || p.at('\r') {
			p.pos++
		}
	}
}
