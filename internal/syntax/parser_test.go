package syntax

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sexpr renders a tree compactly for comparisons.
func sexpr(n *Node) string {
	var b strings.Builder
	b.WriteString("(" + n.Kind.String())
	if n.Text != "" {
		b.WriteString(" " + strconv.Quote(n.Text))
	}
	for _, child := range n.Children {
		b.WriteString(" " + sexpr(child))
	}
	b.WriteString(")")
	return b.String()
}

func TestParse_Code(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"precedence", "1 + 2 * 3",
			`(file (binary expression "+" (integer "1") (binary expression "*" (integer "2") (integer "3"))))`},
		{"left assoc", "1 - 2 - 3",
			`(file (binary expression "-" (binary expression "-" (integer "1") (integer "2")) (integer "3")))`},
		{"logic", "a or b and c",
			`(file (binary expression "or" (identifier "a") (binary expression "and" (identifier "b") (identifier "c"))))`},
		{"field chain", "a.b.c",
			`(file (field access (field access (identifier "a") (identifier "b")) (identifier "c")))`},
		{"call", `f(1, key: "v")`,
			`(file (function call (identifier "f") (arguments (integer "1") (named pair (identifier "key") (string "\"v\"")))))`},
		{"closure", "(x, y) => x",
			`(file (closure (parameters (identifier "x") (identifier "y")) (identifier "x")))`},
		{"bare closure", "x => x",
			`(file (closure (parameters (identifier "x")) (identifier "x")))`},
		{"empty closure", "() => none",
			`(file (closure (parameters) (none "none")))`},
		{"empty array", "()", `(file (array))`},
		{"empty dict", "(:)", `(file (dictionary))`},
		{"single array", "(1,)", `(file (array (integer "1")))`},
		{"paren", "(1)", `(file (parenthesized expression (integer "1")))`},
		{"dict", "(a: 1)", `(file (dictionary (named pair (identifier "a") (integer "1"))))`},
		{"negation", "-1", `(file (unary expression "-" (integer "1")))`},
		{"not", "not true", `(file (unary expression "not" (boolean "true")))`},
		{"length", "12pt", `(file (numeric "12pt"))`},
		{"ratio", "50%", `(file (numeric "50%"))`},
		{"float", "1.5", `(file (float "1.5"))`},
		{"keywords", "none; auto", `(file (none "none") (auto "auto"))`},
		{"let", "let x = 1", `(file (let binding (identifier "x") (integer "1")))`},
		{"let without value", "let x", `(file (let binding (identifier "x")))`},
		{"let function", "let f(x) = x",
			`(file (let binding (identifier "f") (parameters (identifier "x")) (identifier "x")))`},
		{"import", `import "a.mq" as a`,
			`(file (import (string "\"a.mq\"") (identifier "a")))`},
		{"import all", `import "a.mq"`, `(file (import (string "\"a.mq\"")))`},
		{"show", "show heading: [X]",
			`(file (show rule (identifier "heading") (content block (markup (text "X")))))`},
		{"trailing content", "strong[hi]",
			`(file (function call (identifier "strong") (arguments (content block (markup (text "hi"))))))`},
		{"call then content", "heading(level: 2)[T]",
			`(file (function call (identifier "heading") (arguments (named pair (identifier "level") (integer "2")) (content block (markup (text "T"))))))`},
		{"statements", "1; 2\n3", `(file (integer "1") (integer "2") (integer "3"))`},
		{"multiline args", "f(\n  1,\n  2\n)",
			`(file (function call (identifier "f") (arguments (integer "1") (integer "2"))))`},
		{"comments", "1 // one\n// nothing\n2", `(file (integer "1") (integer "2"))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sexpr(Parse(tt.src, 0)))
		})
	}
}

func TestParse_Markup(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"text", "[hello world]",
			`(file (content block (markup (text "hello world"))))`},
		{"soft newline", "[a\nb]",
			`(file (content block (markup (text "a b"))))`},
		{"escape", `[\*not\*]`,
			`(file (content block (markup (text "*not*"))))`},
		{"strong and emph", "[*a* _b_]",
			`(file (content block (markup (strong (markup (text "a"))) (text " ") (emph (markup (text "b"))))))`},
		{"enum", "[+ one\n+ two]",
			`(file (content block (markup (enum item "+" (markup (text "one"))) (enum item "+" (markup (text "two"))))))`},
		{"embed call", "[#strong[x]]",
			`(file (content block (markup (function call (identifier "strong") (arguments (content block (markup (text "x"))))))))`},
		{"hash without code", "[# x]",
			`(file (content block (markup (text "# x"))))`},
		{"document",
			"[= Title\n- a\n- b\n\nText *bold* #x.y]",
			`(file (content block (markup` +
				` (heading "=" (markup (text "Title")))` +
				` (list item "-" (markup (text "a")))` +
				` (list item "-" (markup (text "b")))` +
				` (parbreak)` +
				` (text "Text ")` +
				` (strong (markup (text "bold")))` +
				` (text " ")` +
				` (field access (identifier "x") (identifier "y")))))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sexpr(Parse(tt.src, 0)))
		})
	}
}

func TestParse_HeadingLevel(t *testing.T) {
	root := Parse("[=== Deep]", 0)
	heading := root.Child(0).Child(0).Child(0)
	require.Equal(t, KindHeading, heading.Kind)
	assert.Equal(t, 3, heading.Level())
}

func TestParse_ErrorRecovery(t *testing.T) {
	root := Parse("let x = 1\nlet = 2\nlet y = 3", 0)
	require.Len(t, root.Children, 3)
	assert.Equal(t, KindLet, root.Children[0].Kind)
	assert.Equal(t, KindError, root.Children[1].Kind)
	assert.Equal(t, KindLet, root.Children[2].Kind)

	errNode := root.Children[1]
	assert.Equal(t, "expected identifier", errNode.Text)
	assert.Equal(t, Span{Source: 0, Start: 14, End: 17}, errNode.Span)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"[unclosed", "unclosed content block"},
		{`"abc`, "unclosed string"},
		{"1 2", "expected end of statement"},
		{"3xy", `unknown unit "xy"`},
		{"(a: 1, 2)", "cannot mix named and positional items"},
		{"(1, 2) => 3", "expected identifier as closure parameter"},
		{"[*open]", "unclosed strong"},
		{"f(1", "expected comma or ')'"},
		{"let", "expected identifier"},
		{"99999999999999999999", "integer literal 99999999999999999999 is out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := Parse(tt.src, 0)
			require.NotEmpty(t, root.Children)
			last := root.Children[len(root.Children)-1]
			assert.Equal(t, KindError, last.Kind)
			assert.Equal(t, tt.want, last.Text)
		})
	}
}

func TestNode_Literals(t *testing.T) {
	root := Parse(`42; 2.5; 3cm; "a\nb"; true`, 0)
	require.Len(t, root.Children, 5)

	assert.Equal(t, int64(42), root.Children[0].Int())
	assert.Equal(t, 2.5, root.Children[1].Float())

	v, unit := root.Children[2].Numeric()
	assert.Equal(t, 3.0, v)
	assert.Equal(t, UnitCm, unit)

	assert.Equal(t, "a\nb", root.Children[3].Str())
	assert.True(t, root.Children[4].Bool())
}
