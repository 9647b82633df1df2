package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `show strong: it => [(#it)]
let greeting = "Hello"
[#greeting *world*

- a
- b]
`

func TestEval_Text(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": mainSource})

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "main.mq"))
	require.NoError(t, err)
	assert.Equal(t, "Hello (*world*)\n- a\n- b\n", out)
}

func TestEval_JSON(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": mainSource})

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), filepath.Join(dir, "main.mq"))
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []any{"greeting"}, data["bindings"])
	blocks := data["blocks"].([]any)
	require.Len(t, blocks, 3)
	assert.Equal(t, map[string]any{"depth": float64(0), "marker": "-", "text": "a"}, blocks[1])
}

func TestEval_ManifestEntry(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"marq.cue":     `project: entry: "doc/start.mq"`,
		"doc/start.mq": `[from the manifest]`,
	})
	t.Chdir(dir)

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Equal(t, "from the manifest\n", out)
}

func TestEval_BadManifest(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"marq.cue": `project: entry: "start.txt"`,
		"main.mq":  `[x]`,
	})

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "main.mq"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestEval_EvaluationError(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": "let x = 1\nlet y = undefined\n"})

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}), filepath.Join(dir, "main.mq"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, _ := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeEval, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "UNKNOWN")

	details := resp.Error.Details.(map[string]any)
	assert.Equal(t, filepath.Join(dir, "main.mq"), details["file"])
	assert.Equal(t, float64(2), details["line"])
}

func TestEval_RealizationError(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": "show emph: it => 5\n[_x_]\n"})

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "main.mq"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E202]")
	assert.Contains(t, out, "CAST")
}

func TestEval_MissingFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "nope.mq"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: source not found")
}

func TestEval_RootOverride(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"lib.mq":     `let name = "root lib"`,
		"sub/doc.mq": "import \"/lib.mq\" as lib\n[#lib.name]\n",
	})
	doc := filepath.Join(dir, "sub", "doc.mq")

	// Without a manifest the root is the file's directory.
	_, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), doc)
	require.Error(t, err)

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "text", Root: dir}), doc)
	require.NoError(t, err)
	assert.Equal(t, "root lib\n", out)
}

func TestEval_MetricsFile(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": mainSource})
	metricsPath := filepath.Join(dir, "out", "metrics.prom")
	require.NoError(t, os.MkdirAll(filepath.Dir(metricsPath), 0o755))

	_, err := execute(t, NewEvalCommand(&RootOptions{Format: "text", MetricsFile: metricsPath}), filepath.Join(dir, "main.mq"))
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `marq_recipes_applied_total{outcome="produced",pattern="strong"} 1`)
	assert.Contains(t, string(data), "marq_eval_duration_seconds_count 1")
}

func TestEval_ManifestMetrics(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"marq.cue": `project: metrics: "metrics.prom"`,
		"main.mq":  mainSource,
	})

	_, err := execute(t, NewEvalCommand(&RootOptions{Format: "text"}), filepath.Join(dir, "main.mq"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "metrics.prom"))
}
