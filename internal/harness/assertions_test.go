package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marq/internal/realize"
)

func realizedResult(blocks ...realize.Block) *Result {
	result := NewResult()
	result.doc = &realize.Document{Blocks: blocks}
	result.Blocks = blocks
	return result
}

func TestEvaluateAssertions(t *testing.T) {
	result := realizedResult(
		realize.Block{Text: "Title"},
		realize.Block{Marker: "-", Text: "one"},
		realize.Block{Marker: "-", Text: "two"},
		realize.Block{Marker: "1.", Text: "three"},
	)

	tests := []struct {
		name      string
		assertion Assertion
		wantFail  string
	}{
		{"contains", Assertion{Type: AssertContains, Text: "- one"}, ""},
		{"contains missing", Assertion{Type: AssertContains, Text: "four"}, `document contains "four"`},
		{"not contains", Assertion{Type: AssertNotContains, Text: "four"}, ""},
		{"not contains found", Assertion{Type: AssertNotContains, Text: "Title"}, "found"},
		{"block count", Assertion{Type: AssertBlockCount, Count: 4}, ""},
		{"block count by marker", Assertion{Type: AssertBlockCount, Marker: "-", Count: 2}, ""},
		{"block count wrong", Assertion{Type: AssertBlockCount, Marker: "1.", Count: 2}, `2 blocks with marker "1."`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(result, []Assertion{tt.assertion})
			if tt.wantFail == "" {
				assert.Empty(t, failures)
				return
			}
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "assertions[0]")
			assert.Contains(t, failures[0], tt.wantFail)
		})
	}
}

func TestEvaluateAssertions_FailedRun(t *testing.T) {
	result := NewResult()
	result.Error = "CAST: expected content, found integer"

	failures := EvaluateAssertions(result, []Assertion{{Type: AssertContains, Text: "x"}})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "run failed: CAST")
}

func TestAssertionError_IncludesDocument(t *testing.T) {
	err := &AssertionError{
		Type:     AssertContains,
		Expected: `document contains "x"`,
		Actual:   "not found",
		Document: "a\n- b\n",
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: contains")
	assert.Contains(t, msg, "  | a\n  | - b\n")
}
