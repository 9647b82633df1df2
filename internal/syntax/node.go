package syntax

import (
	"strconv"
	"strings"
)

// Kind classifies a syntax node.
type Kind int

const (
	KindError Kind = iota
	KindFile

	// Statements.
	KindLet
	KindShow
	KindImport

	// Literals.
	KindNone
	KindAuto
	KindBool
	KindInt
	KindFloat
	KindNumeric
	KindStr

	// Compound expressions.
	KindIdent
	KindFieldAccess
	KindCall
	KindClosure
	KindArray
	KindDict
	KindParen
	KindUnary
	KindBinary
	KindContentBlock

	// Helpers that only appear below other nodes.
	KindArgs
	KindNamed
	KindParams

	// Markup inside content blocks.
	KindMarkup
	KindText
	KindParbreak
	KindStrong
	KindEmph
	KindListItem
	KindEnumItem
	KindHeading
)

var kindNames = [...]string{
	KindError:        "error",
	KindFile:         "file",
	KindLet:          "let binding",
	KindShow:         "show rule",
	KindImport:       "import",
	KindNone:         "none",
	KindAuto:         "auto",
	KindBool:         "boolean",
	KindInt:          "integer",
	KindFloat:        "float",
	KindNumeric:      "numeric",
	KindStr:          "string",
	KindIdent:        "identifier",
	KindFieldAccess:  "field access",
	KindCall:         "function call",
	KindClosure:      "closure",
	KindArray:        "array",
	KindDict:         "dictionary",
	KindParen:        "parenthesized expression",
	KindUnary:        "unary expression",
	KindBinary:       "binary expression",
	KindContentBlock: "content block",
	KindArgs:         "arguments",
	KindNamed:        "named pair",
	KindParams:       "parameters",
	KindMarkup:       "markup",
	KindText:         "text",
	KindParbreak:     "parbreak",
	KindStrong:       "strong",
	KindEmph:         "emph",
	KindListItem:     "list item",
	KindEnumItem:     "enum item",
	KindHeading:      "heading",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsLiteral reports whether nodes of this kind denote a single constant.
func (k Kind) IsLiteral() bool {
	return k >= KindNone && k <= KindStr
}

// IsExpr reports whether nodes of this kind are expressions.
func (k Kind) IsExpr() bool {
	return k >= KindNone && k <= KindContentBlock
}

// Unit is the unit suffix of a numeric literal.
type Unit string

const (
	UnitPt      Unit = "pt"
	UnitMm      Unit = "mm"
	UnitCm      Unit = "cm"
	UnitIn      Unit = "in"
	UnitEm      Unit = "em"
	UnitFr      Unit = "fr"
	UnitPercent Unit = "%"
)

var units = map[string]Unit{
	"pt": UnitPt,
	"mm": UnitMm,
	"cm": UnitCm,
	"in": UnitIn,
	"em": UnitEm,
	"fr": UnitFr,
	"%":  UnitPercent,
}

// Node is one element of the syntax tree.
//
// Text holds the lexeme of literals and identifiers, the operator of unary
// and binary expressions, the marker of headings, the content of text runs
// and the message of error nodes.
//
// Child layout per kind:
//
//	KindLet          Ident, [Params], [value]
//	KindShow         Ident (node name), transform
//	KindImport       Str (path), [Ident (alias)]
//	KindFieldAccess  target, Ident (field)
//	KindCall         callee, Args
//	KindClosure      Params, body
//	KindNamed        Ident, value
//	KindContentBlock Markup
//	KindStrong, KindEmph, KindListItem, KindEnumItem, KindHeading  Markup
type Node struct {
	Kind     Kind
	Span     Span
	Text     string
	Children []*Node
}

// IsExpr reports whether the node is an expression.
func (n *Node) IsExpr() bool {
	return n != nil && n.Kind.IsExpr()
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Bool returns the value of a boolean literal.
func (n *Node) Bool() bool {
	return n.Text == "true"
}

// Int returns the value of an integer literal.
func (n *Node) Int() int64 {
	v, _ := strconv.ParseInt(n.Text, 10, 64)
	return v
}

// Float returns the value of a float literal.
func (n *Node) Float() float64 {
	v, _ := strconv.ParseFloat(n.Text, 64)
	return v
}

// Numeric returns the magnitude and unit of a numeric literal.
func (n *Node) Numeric() (float64, Unit) {
	split := strings.IndexFunc(n.Text, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	})
	if split < 0 {
		return 0, ""
	}
	v, _ := strconv.ParseFloat(n.Text[:split], 64)
	return v, units[n.Text[split:]]
}

// Str returns the unescaped value of a string literal.
func (n *Node) Str() string {
	return unescape(strings.TrimSuffix(strings.TrimPrefix(n.Text, `"`), `"`))
}

// FieldName returns the accessed field of a field access expression.
func (n *Node) FieldName() string {
	if n.Kind != KindFieldAccess {
		return ""
	}
	if field := n.Child(1); field != nil {
		return field.Text
	}
	return ""
}

// Level returns the level of a heading.
func (n *Node) Level() int {
	return len(n.Text)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
