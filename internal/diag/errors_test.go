package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marq/internal/syntax"
)

var span = syntax.Span{Source: 3, Start: 4, End: 9}

func TestError_Message(t *testing.T) {
	err := Errorf(CodeCast, span, "expected %s, found %s", "content", "integer")
	assert.Equal(t, "CAST: expected content, found integer (at 3:4-9)", err.Error())

	detached := Errorf(CodeType, syntax.Detached(), "boom")
	assert.Equal(t, "TYPE: boom", detached.Error())
}

func TestError_WithHint(t *testing.T) {
	err := Errorf(CodeUnknown, span, "unknown variable: x").WithHint("did you mean y?")
	assert.Equal(t, []string{"did you mean y?"}, err.Hints)
}

// =============================================================================
// At
// =============================================================================

func TestAt_Nil(t *testing.T) {
	assert.NoError(t, At(span, nil))
}

func TestAt_PlainErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	err := At(span, boom)

	assert.ErrorIs(t, err, boom)
	got, ok := SpanOf(err)
	require.True(t, ok)
	assert.Equal(t, span, got)
}

func TestAt_KeepsExistingLocation(t *testing.T) {
	inner := syntax.Span{Source: 1, Start: 0, End: 2}
	err := At(span, Errorf(CodeArgs, inner, "missing argument"))

	got, ok := SpanOf(err)
	require.True(t, ok)
	assert.Equal(t, inner, got)
}

func TestAt_LocatesDetachedError(t *testing.T) {
	original := Errorf(CodeCast, syntax.Detached(), "expected content")
	err := At(span, original)

	got, ok := SpanOf(err)
	require.True(t, ok)
	assert.Equal(t, span, got)
	assert.True(t, IsCastError(err))
	assert.True(t, original.Span.IsDetached())
}

func TestWrap(t *testing.T) {
	cause := errors.New("maximum call depth exceeded")
	err := Wrap(CodeLimit, span, cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeLimit))
	assert.Equal(t, "LIMIT: maximum call depth exceeded (at 3:4-9)", err.Error())
}

// =============================================================================
// Predicates
// =============================================================================

func TestIs_Wrapped(t *testing.T) {
	err := fmt.Errorf("evaluating main.mq: %w", Errorf(CodeCycle, span, "cyclic import"))

	assert.True(t, Is(err, CodeCycle))
	assert.False(t, Is(err, CodeImport))
	assert.False(t, IsCastError(err))
	assert.False(t, Is(errors.New("plain"), CodeCycle))
}

func TestSpanOf_Missing(t *testing.T) {
	got, ok := SpanOf(errors.New("plain"))
	assert.False(t, ok)
	assert.True(t, got.IsDetached())

	_, ok = SpanOf(Errorf(CodeType, syntax.Detached(), "x"))
	assert.False(t, ok)
}
