package harness

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marq/internal/realize"
	"github.com/roach88/marq/internal/telemetry"
)

func runYAML(t *testing.T, src string, opts ...Option) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	result, err := Run(context.Background(), s, opts...)
	require.NoError(t, err)
	return result
}

// =============================================================================
// Outcome checks
// =============================================================================

func TestRun_Passes(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/guard_self_reference.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []realize.Block{{Text: "(*42*)"}}, result.Blocks)
	assert.Equal(t, "(*42*)\n", result.Rendered())
	assert.Equal(t, []ProbeResult{{File: "main.mq", At: "u.answer", Values: []string{"42"}}}, result.Probes)
	assert.Equal(t, []ImportResult{{From: "main.mq", Path: "util.mq", Found: true, Bindings: []string{"answer"}}}, result.Imports)
}

func TestRun_ExpectedError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cast_error.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.Error, "CAST")
	assert.Empty(t, result.Blocks)
}

func TestRun_WrongErrorCode(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "let x = undefined"
expect:
  error: CAST
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected CAST error, got")
}

func TestRun_MissingError(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "[fine]"
expect:
  error: CAST
`)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "run succeeded")
}

func TestRun_UnexpectedError(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "let x = 1 +"
`)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "run failed")
	assert.Contains(t, result.Error, "SYNTAX")
}

func TestRun_DocumentMismatch(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "[*a*]"
expect:
  blocks:
    - text: "a"
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "document mismatch")
}

// =============================================================================
// Probes and imports
// =============================================================================

func TestRun_ProbeValues(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: |
    let f(a) = a * 10
    let r = (f(1), f(2))
    let broken = undefined
probes:
  - at: "a * 10"
    values: ["10", "20"]
  - at: "f(1)"
    values: ["10"]
expect:
  error: UNKNOWN
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Probes, 2)
	assert.Equal(t, []string{"10", "20"}, result.Probes[0].Values)
}

func TestRun_ProbeMismatch(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "let x = 1 + 1"
probes:
  - at: "1 + 1"
    values: ["3"]
  - at: "nowhere"
    values: []
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `probe "1 + 1": expected [3], got [2]`)
	assert.Contains(t, result.Errors[1], `probe "nowhere": not found`)
}

func TestRun_ImportChecks(t *testing.T) {
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: "[x]"
  sub/b.mq: "[b]"
  sub/a.mq: "let name = 1"
  a.mq: "let other = 2"
imports:
  - from: sub/b.mq
    path: a.mq
    bindings: [name]
  - from: sub/b.mq
    path: /a.mq
    bindings: [other]
  - from: sub/b.mq
    path: ../a.mq
    bindings: [name]
  - path: gone.mq
    bindings: [x]
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Imports, 4)
	assert.Equal(t, []string{"name"}, result.Imports[0].Bindings)
	assert.Equal(t, []string{"other"}, result.Imports[1].Bindings)
	assert.False(t, result.Imports[3].Found)

	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `import "../a.mq" from sub/b.mq: expected bindings [name], got [other]`)
	assert.Contains(t, result.Errors[1], `import "gone.mq" from main.mq: no module`)
}

func TestRun_Metrics(t *testing.T) {
	metrics := telemetry.New(prometheus.NewRegistry())
	result := runYAML(t, `
name: n
description: d
files:
  main.mq: |
    show emph: it => [~#it.body~]
    [_a_ _b_]
`, WithMetrics(metrics))
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	expected := `
# HELP marq_recipes_applied_total Total number of show rule applications
# TYPE marq_recipes_applied_total counter
marq_recipes_applied_total{outcome="produced",pattern="emph"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "marq_recipes_applied_total"))
}
