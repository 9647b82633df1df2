package syntax

import (
	"fmt"
	"math"
)

// SourceID identifies a source file within a world.
type SourceID uint32

// DetachedID is the source id of spans that point into no file.
const DetachedID SourceID = math.MaxUint32

// Span is a byte range within one source file.
type Span struct {
	Source SourceID
	Start  int
	End    int
}

// Detached returns a span that points nowhere.
func Detached() Span {
	return Span{Source: DetachedID}
}

// IsDetached reports whether the span points into no file.
func (s Span) IsDetached() bool {
	return s.Source == DetachedID
}

// Contains reports whether offset lies within the span.
// An empty span contains its own start offset.
func (s Span) Contains(offset int) bool {
	if s.Start == s.End {
		return offset == s.Start
	}
	return s.Start <= offset && offset < s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	if s.IsDetached() {
		return "detached"
	}
	return fmt.Sprintf("%d:%d-%d", s.Source, s.Start, s.End)
}
