package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analyzeSource = "let f(a) = a * 10\nlet r = (f(1), f(2))\n"

func TestAnalyzeExpr_Values(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": analyzeSource})
	file := filepath.Join(dir, "main.mq")

	tests := []struct {
		name string
		pos  string
		want string
	}{
		{"binary on operator", "1:14", "10\n20\n"},
		{"literal", "1:16", "10\n"},
		{"call argument", "2:12", "1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "expr", file, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestAnalyzeExpr_JSON(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": analyzeSource})

	out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "json"}), "expr", filepath.Join(dir, "main.mq"), "1:14")
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "a * 10", data["expr"])
	assert.Equal(t, []any{"10", "20"}, data["values"])
	assert.Equal(t, float64(1), data["line"])
}

func TestAnalyzeExpr_NoValues(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": "let g(x) = x + 1\n"})

	out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "expr", filepath.Join(dir, "main.mq"), "1:14")
	require.NoError(t, err)
	assert.Equal(t, "x + 1: no values\n", out)
}

func TestAnalyzeExpr_Errors(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.mq": analyzeSource})
	file := filepath.Join(dir, "main.mq")

	tests := []struct {
		name     string
		pos      string
		exitCode int
		code     string
	}{
		{"malformed", "12", ExitCommandError, ErrCodePosition},
		{"bad column", "1:x", ExitCommandError, ErrCodePosition},
		{"out of range", "40:1", ExitCommandError, ErrCodePosition},
		{"no expression", "1:1", ExitFailure, ErrCodeNoExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "expr", file, tt.pos)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestParsePosition(t *testing.T) {
	line, col, err := parsePosition("3:12")
	require.NoError(t, err)
	assert.Equal(t, 3, line)
	assert.Equal(t, 12, col)

	for _, bad := range []string{"", "3", "0:1", "1:0", "a:1", "-1:2"} {
		_, _, err := parsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestAnalyzeImport_Text(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.mq":      "[x]",
		"lib/names.mq": "let title = \"Guide\"\nlet count = 2\n",
	})

	out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "import", filepath.Join(dir, "main.mq"), "lib/names.mq")
	require.NoError(t, err)
	assert.Equal(t, "module names\n  title = \"Guide\"\n  count = 2\n", out)
}

func TestAnalyzeImport_JSON(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"chapters/intro.mq": "[x]",
		"lib.mq":            "let n = 1\n",
	})

	out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "json"}), "import", filepath.Join(dir, "chapters", "intro.mq"), "../lib.mq")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	assert.Equal(t, "lib", data["module"])
	assert.Equal(t, []any{map[string]any{"name": "n", "value": "1"}}, data["bindings"])
}

func TestAnalyzeImport_NoModule(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.mq": "[x]",
		"bad.mq":  "let = 1",
	})

	for _, path := range []string{"missing.mq", "bad.mq"} {
		t.Run(path, func(t *testing.T) {
			out, err := execute(t, NewAnalyzeCommand(&RootOptions{Format: "text"}), "import", filepath.Join(dir, "main.mq"), path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error [E204]: no module")
		})
	}
}
