package syntax

import (
	"sort"
	"strings"
)

// Source is a parsed source file.
type Source struct {
	id    SourceID
	path  string
	text  string
	root  *Node
	lines []int // byte offset of each line start
}

// NewSource parses text and returns the resulting source.
func NewSource(id SourceID, path, text string) *Source {
	return &Source{
		id:    id,
		path:  path,
		text:  text,
		root:  Parse(text, id),
		lines: lineStarts(text),
	}
}

// DetachedSource parses text that belongs to no file.
func DetachedSource(text string) *Source {
	return NewSource(DetachedID, "", text)
}

// ID returns the source id.
func (s *Source) ID() SourceID { return s.id }

// Path returns the path the source was loaded from.
func (s *Source) Path() string { return s.path }

// Text returns the full source text.
func (s *Source) Text() string { return s.text }

// Root returns the root node of the syntax tree.
func (s *Source) Root() *Node { return s.root }

// Linked returns the root of the syntax tree as a linked node.
func (s *Source) Linked() *LinkedNode { return NewLinkedNode(s.root) }

// Range returns the text covered by span.
func (s *Source) Range(span Span) string {
	if span.Source != s.id || span.Start < 0 || span.End > len(s.text) || span.Start > span.End {
		return ""
	}
	return s.text[span.Start:span.End]
}

// LineCol converts a byte offset to a one-based line and column.
// Columns count bytes.
func (s *Source) LineCol(offset int) (line, col int) {
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - s.lines[i] + 1
}

// Offset converts a one-based line and column to a byte offset.
func (s *Source) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(s.lines) || col < 1 {
		return 0, false
	}
	start := s.lines[line-1]
	end := len(s.text)
	if line < len(s.lines) {
		end = s.lines[line]
	}
	offset := start + col - 1
	if offset > end {
		return 0, false
	}
	return offset, true
}

func lineStarts(text string) []int {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
