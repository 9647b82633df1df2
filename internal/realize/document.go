package realize

import (
	"strings"
)

// Block is one rendered block: a paragraph when Marker is empty, otherwise
// a heading or a list line. Depth is the nesting level.
type Block struct {
	Depth  int    `json:"depth" yaml:"depth,omitempty"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Text   string `json:"text" yaml:"text"`
}

// Document is the result of realization.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Render formats the document as indented text, one block per line.
// Continuation lines of a block are aligned with its text.
func (d *Document) Render() string {
	var b strings.Builder
	for _, block := range d.Blocks {
		indent := strings.Repeat("  ", block.Depth)
		prefix := indent
		if block.Marker != "" {
			prefix += block.Marker + " "
		}
		cont := strings.Repeat(" ", len(prefix))
		for i, line := range strings.Split(block.Text, "\n") {
			if i == 0 {
				b.WriteString(prefix)
			} else {
				b.WriteString(cont)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// normalize collapses runs of spaces within each line of a paragraph.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
