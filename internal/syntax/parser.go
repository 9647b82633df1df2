package syntax

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// bailout aborts the current statement. It is recovered in statement.
type bailout struct {
	pos int
	msg string
}

type parser struct {
	src   string
	pos   int
	id    SourceID
	depth int // newlines are trivia while depth > 0
}

var keywords = map[string]bool{
	"let":    true,
	"show":   true,
	"import": true,
	"as":     true,
	"none":   true,
	"auto":   true,
	"true":   true,
	"false":  true,
	"not":    true,
	"and":    true,
	"or":     true,
}

var binOps = []struct {
	op   string
	prec int
}{
	{"==", 3}, {"!=", 3}, {"<=", 3}, {">=", 3}, {"<", 3}, {">", 3},
	{"+", 4}, {"-", 4},
	{"*", 5}, {"/", 5},
}

// Parse parses a marq file. It always returns a KindFile node.
func Parse(text string, id SourceID) *Node {
	p := &parser{src: text, id: id}
	return p.file()
}

func (p *parser) file() *Node {
	var stmts []*Node
	for {
		p.skipSeparators()
		if p.eof() {
			break
		}
		stmts = append(stmts, p.statement())
	}
	return &Node{Kind: KindFile, Span: Span{Source: p.id, Start: 0, End: len(p.src)}, Children: stmts}
}

func (p *parser) statement() (node *Node) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		p.depth = 0
		p.pos = b.pos
		p.skipLine()
		node = &Node{Kind: KindError, Span: Span{Source: p.id, Start: b.pos, End: p.pos}, Text: b.msg}
	}()

	switch p.peekIdent() {
	case "let":
		node = p.letBinding()
	case "show":
		node = p.showRule()
	case "import":
		node = p.importStmt()
	default:
		node = p.expr()
	}

	p.skipTrivia(false)
	if !p.eof() && !p.at('\n') && !p.at(';') {
		p.fail("expected end of statement")
	}
	return node
}

func (p *parser) letBinding() *Node {
	start := p.pos
	p.pos += len("let")
	p.skipTrivia(false)
	children := []*Node{p.ident()}
	if p.at('(') {
		children = append(children, p.params())
	}
	p.skipTrivia(false)
	if p.at('=') && !p.atStr("==") {
		p.pos++
		p.skipTrivia(false)
		children = append(children, p.expr())
	} else if len(children) == 2 {
		p.fail("expected '=' after parameters")
	}
	return &Node{Kind: KindLet, Span: p.span(start), Children: children}
}

func (p *parser) showRule() *Node {
	start := p.pos
	p.pos += len("show")
	p.skipTrivia(false)
	name := p.ident()
	p.skipTrivia(false)
	p.expect(':', "':' after show rule selector")
	p.skipTrivia(false)
	transform := p.expr()
	return &Node{Kind: KindShow, Span: p.span(start), Children: []*Node{name, transform}}
}

func (p *parser) importStmt() *Node {
	start := p.pos
	p.pos += len("import")
	p.skipTrivia(false)
	if !p.at('"') {
		p.fail("expected path string after import")
	}
	children := []*Node{p.str()}
	save := p.pos
	p.skipTrivia(false)
	if p.peekIdent() == "as" {
		p.pos += len("as")
		p.skipTrivia(false)
		children = append(children, p.ident())
	} else {
		p.pos = save
	}
	return &Node{Kind: KindImport, Span: p.span(start), Children: children}
}

func (p *parser) params() *Node {
	start := p.pos
	p.pos++
	p.depth++
	var params []*Node
	for {
		p.skipTrivia(true)
		if p.at(')') {
			break
		}
		params = append(params, p.ident())
		p.skipTrivia(true)
		if p.at(',') {
			p.pos++
			continue
		}
		if !p.at(')') {
			p.fail("expected comma or ')'")
		}
	}
	p.pos++
	p.depth--
	return &Node{Kind: KindParams, Span: p.span(start), Children: params}
}

func (p *parser) expr() *Node {
	return p.binary(0)
}

func (p *parser) binary(minPrec int) *Node {
	lhs := p.unary()
	for {
		save := p.pos
		p.skipTrivia(false)
		op, prec := p.peekBinOp()
		if op == "" || prec < minPrec {
			p.pos = save
			return lhs
		}
		p.pos += len(op)
		p.skipTrivia(false)
		rhs := p.binary(prec + 1)
		lhs = &Node{
			Kind:     KindBinary,
			Span:     Span{Source: p.id, Start: lhs.Span.Start, End: rhs.Span.End},
			Text:     op,
			Children: []*Node{lhs, rhs},
		}
	}
}

func (p *parser) peekBinOp() (string, int) {
	if p.atStr("//") {
		return "", 0
	}
	for _, b := range binOps {
		if p.atStr(b.op) {
			return b.op, b.prec
		}
	}
	switch p.peekIdent() {
	case "and":
		return "and", 2
	case "or":
		return "or", 1
	}
	return "", 0
}

func (p *parser) unary() *Node {
	start := p.pos
	op := ""
	switch {
	case p.at('-'):
		op = "-"
	case p.peekIdent() == "not":
		op = "not"
	}
	if op == "" {
		return p.postfix(p.primary())
	}
	p.pos += len(op)
	p.skipTrivia(false)
	operand := p.unary()
	return &Node{Kind: KindUnary, Span: p.span(start), Text: op, Children: []*Node{operand}}
}

func (p *parser) postfix(target *Node) *Node {
	for {
		switch {
		case p.at('.') && p.identStartsAt(p.pos+1):
			p.pos++
			field := p.ident()
			target = &Node{
				Kind:     KindFieldAccess,
				Span:     Span{Source: p.id, Start: target.Span.Start, End: p.pos},
				Children: []*Node{target, field},
			}
		case p.at('('):
			args := p.args()
			target = &Node{
				Kind:     KindCall,
				Span:     Span{Source: p.id, Start: target.Span.Start, End: p.pos},
				Children: []*Node{target, args},
			}
		case p.at('[') && (target.Kind == KindIdent || target.Kind == KindFieldAccess || target.Kind == KindCall):
			block := p.contentBlock()
			if target.Kind == KindCall {
				args := target.Children[1]
				args.Children = append(args.Children, block)
				args.Span.End = p.pos
				target.Span.End = p.pos
				continue
			}
			args := &Node{Kind: KindArgs, Span: block.Span, Children: []*Node{block}}
			target = &Node{
				Kind:     KindCall,
				Span:     Span{Source: p.id, Start: target.Span.Start, End: p.pos},
				Children: []*Node{target, args},
			}
		default:
			return target
		}
	}
}

func (p *parser) args() *Node {
	start := p.pos
	p.pos++
	p.depth++
	var items []*Node
	for {
		p.skipTrivia(true)
		if p.at(')') {
			break
		}
		items = append(items, p.item())
		p.skipTrivia(true)
		if p.at(',') {
			p.pos++
			continue
		}
		if !p.at(')') {
			p.fail("expected comma or ')'")
		}
	}
	p.pos++
	p.depth--
	return &Node{Kind: KindArgs, Span: p.span(start), Children: items}
}

// item parses a positional expression or a named pair.
func (p *parser) item() *Node {
	start := p.pos
	if name := p.peekIdent(); name != "" && !keywords[name] {
		save := p.pos
		p.pos += len(name)
		p.skipTrivia(false)
		if p.at(':') {
			key := &Node{Kind: KindIdent, Span: Span{Source: p.id, Start: start, End: start + len(name)}, Text: name}
			p.pos++
			p.skipTrivia(true)
			value := p.expr()
			return &Node{Kind: KindNamed, Span: p.span(start), Children: []*Node{key, value}}
		}
		p.pos = save
	}
	return p.expr()
}

func (p *parser) primary() *Node {
	if p.eof() {
		p.fail("expected expression, found end of file")
	}
	c := p.src[p.pos]
	switch {
	case isDigit(c):
		return p.number()
	case c == '"':
		return p.str()
	case c == '(':
		return p.parenGroup()
	case c == '[':
		return p.contentBlock()
	}

	start := p.pos
	name := p.peekIdent()
	switch name {
	case "":
		p.fail("expected expression")
	case "none":
		p.pos += len(name)
		return &Node{Kind: KindNone, Span: p.span(start), Text: name}
	case "auto":
		p.pos += len(name)
		return &Node{Kind: KindAuto, Span: p.span(start), Text: name}
	case "true", "false":
		p.pos += len(name)
		return &Node{Kind: KindBool, Span: p.span(start), Text: name}
	}
	if keywords[name] {
		p.fail("unexpected keyword %q", name)
	}

	ident := p.ident()
	save := p.pos
	p.skipTrivia(false)
	if p.atStr("=>") {
		params := &Node{Kind: KindParams, Span: ident.Span, Children: []*Node{ident}}
		return p.closureBody(start, params)
	}
	p.pos = save
	return ident
}

func (p *parser) closureBody(start int, params *Node) *Node {
	p.pos += len("=>")
	p.skipTrivia(true)
	body := p.expr()
	return &Node{Kind: KindClosure, Span: p.span(start), Children: []*Node{params, body}}
}

func (p *parser) number() *Node {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	kind := KindInt
	if p.at('.') && isDigit(p.peekAt(1)) {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
		}
		kind = KindFloat
	}
	unitStart := p.pos
	if p.at('%') {
		p.pos++
	} else {
		for isLetter(p.peek()) {
			p.pos++
		}
	}
	if unit := p.src[unitStart:p.pos]; unit != "" {
		if _, ok := units[unit]; !ok {
			p.pos = unitStart
			p.fail("unknown unit %q", unit)
		}
		kind = KindNumeric
	}
	text := p.src[start:p.pos]
	if kind == KindInt {
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			p.pos = start
			p.fail("integer literal %s is out of range", text)
		}
	}
	return &Node{Kind: kind, Span: p.span(start), Text: text}
}

func (p *parser) str() *Node {
	start := p.pos
	p.pos++
	for {
		if p.eof() || p.at('\n') {
			p.pos = start
			p.fail("unclosed string")
		}
		c := p.src[p.pos]
		if c == '\\' {
			p.pos += 2
			continue
		}
		p.pos++
		if c == '"' {
			break
		}
	}
	return &Node{Kind: KindStr, Span: p.span(start), Text: p.src[start:p.pos]}
}

// parenGroup parses parenthesized expressions, arrays, dictionaries and
// closures with a parenthesized parameter list.
func (p *parser) parenGroup() *Node {
	start := p.pos
	p.pos++
	p.depth++
	p.skipTrivia(true)
	if p.at(':') {
		p.pos++
		p.skipTrivia(true)
		p.expect(')', "')' after empty dictionary")
		p.depth--
		return &Node{Kind: KindDict, Span: p.span(start)}
	}

	var items []*Node
	named, positional := 0, 0
	trailing := false
	for {
		p.skipTrivia(true)
		if p.at(')') {
			break
		}
		item := p.item()
		if item.Kind == KindNamed {
			named++
		} else {
			positional++
		}
		items = append(items, item)
		p.skipTrivia(true)
		if p.at(',') {
			p.pos++
			trailing = true
			continue
		}
		trailing = false
		if !p.at(')') {
			p.fail("expected comma or ')'")
		}
	}
	p.pos++
	p.depth--

	save := p.pos
	p.skipTrivia(false)
	if p.atStr("=>") {
		for _, item := range items {
			if item.Kind != KindIdent {
				p.pos = item.Span.Start
				p.fail("expected identifier as closure parameter")
			}
		}
		params := &Node{Kind: KindParams, Span: Span{Source: p.id, Start: start, End: save}, Children: items}
		return p.closureBody(start, params)
	}
	p.pos = save

	switch {
	case named > 0 && positional > 0:
		p.pos = start
		p.fail("cannot mix named and positional items")
	case named > 0:
		return &Node{Kind: KindDict, Span: p.span(start), Children: items}
	case positional == 1 && !trailing:
		return &Node{Kind: KindParen, Span: p.span(start), Children: items}
	}
	return &Node{Kind: KindArray, Span: p.span(start), Children: items}
}

func (p *parser) ident() *Node {
	name := p.peekIdent()
	if name == "" {
		p.fail("expected identifier")
	}
	if keywords[name] {
		p.fail("expected identifier, found keyword %q", name)
	}
	start := p.pos
	p.pos += len(name)
	return &Node{Kind: KindIdent, Span: p.span(start), Text: name}
}

func (p *parser) peekIdent() string {
	end := p.pos
	for end < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[end:])
		if (end == p.pos && !isIdentStart(r)) || (end > p.pos && !isIdentContinue(r)) {
			break
		}
		end += size
	}
	return p.src[p.pos:end]
}

func (p *parser) identStartsAt(i int) bool {
	if i >= len(p.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(p.src[i:])
	return isIdentStart(r)
}

func (p *parser) skipTrivia(newlines bool) {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\n' && (newlines || p.depth > 0):
			p.pos++
		case p.atStr("//"):
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) skipSeparators() {
	for {
		p.skipTrivia(true)
		if !p.at(';') {
			return
		}
		p.pos++
	}
}

func (p *parser) skipLine() {
	for !p.eof() && p.src[p.pos] != '\n' {
		p.pos++
	}
}

func (p *parser) expect(c byte, what string) {
	if !p.at(c) {
		p.fail("expected %s", what)
	}
	p.pos++
}

func (p *parser) fail(format string, args ...any) {
	panic(bailout{pos: p.pos, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) span(start int) Span {
	return Span{Source: p.id, Start: start, End: p.pos}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) at(c byte) bool { return p.pos < len(p.src) && p.src[p.pos] == c }

func (p *parser) atStr(s string) bool { return strings.HasPrefix(p.src[p.pos:], s) }

func (p *parser) peek() byte { return p.peekAt(0) }

func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinue(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }
