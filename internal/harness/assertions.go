package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the rendered document to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Document string // Rendered document for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Document != "" {
		fmt.Fprintf(&buf, "\nDocument:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Document, "\n"), "\n") {
			fmt.Fprintf(&buf, "  | %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the messages of those that failed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	if result.doc == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a realized document",
			Actual:   "run failed: " + result.Error,
		}
	}
	rendered := result.Rendered()

	switch a.Type {
	case AssertContains:
		if !strings.Contains(rendered, a.Text) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("document contains %q", a.Text),
				Actual:   "not found",
				Document: rendered,
			}
		}
	case AssertNotContains:
		if strings.Contains(rendered, a.Text) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("document does not contain %q", a.Text),
				Actual:   "found",
				Document: rendered,
			}
		}
	case AssertBlockCount:
		count := 0
		for _, block := range result.Blocks {
			if a.Marker == "" || block.Marker == a.Marker {
				count++
			}
		}
		if count != a.Count {
			expected := fmt.Sprintf("%d blocks", a.Count)
			if a.Marker != "" {
				expected = fmt.Sprintf("%d blocks with marker %q", a.Count, a.Marker)
			}
			return &AssertionError{
				Type:     a.Type,
				Expected: expected,
				Actual:   fmt.Sprintf("%d", count),
				Document: rendered,
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
