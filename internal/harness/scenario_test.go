package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marq/internal/realize"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/headings_and_lists.yaml")
	require.NoError(t, err)

	assert.Equal(t, "headings_and_lists", s.Name)
	assert.Equal(t, "main.mq", s.EntryFile())
	assert.Len(t, s.Files, 2)
	require.NotNil(t, s.Expect)
	assert.Equal(t, realize.Block{Marker: "1.", Text: "one"}, s.Expect.Blocks[3])
	require.Len(t, s.Probes, 2)
	assert.Equal(t, "lib/names.mq", s.Probes[1].File)
	require.Len(t, s.Imports, 3)
	assert.True(t, s.Imports[1].None)
	assert.Len(t, s.Assertions, 2)
}

func TestLoadScenario_DefaultEntry(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cast_error.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultEntry, s.EntryFile())
	assert.Equal(t, "CAST", s.Expect.Error)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	data := "name: x\ndescription: y\nfiles: {main.mq: \"1\"}\nassertion: []\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nfiles: {main.mq: x}",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nfiles: {main.mq: x}",
			wantErr: "description is required",
		},
		{
			name:    "no files",
			yaml:    "name: n\ndescription: d",
			wantErr: "files map is required",
		},
		{
			name:    "wrong extension",
			yaml:    "name: n\ndescription: d\nfiles: {main.txt: x}",
			wantErr: "must end in .mq",
		},
		{
			name:    "missing entry",
			yaml:    "name: n\ndescription: d\nentry: doc.mq\nfiles: {main.mq: x}",
			wantErr: "entry doc.mq is not among the files",
		},
		{
			name:    "error and blocks",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nexpect: {error: CAST, blocks: [{text: a}]}",
			wantErr: "mutually exclusive",
		},
		{
			name:    "probe without at",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nprobes: [{values: []}]",
			wantErr: "probes[0]: at is required",
		},
		{
			name:    "probe in unknown file",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nprobes: [{file: b.mq, at: x}]",
			wantErr: "probes[0]: file b.mq",
		},
		{
			name:    "import none with bindings",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nimports: [{path: a.mq, none: true, bindings: [x]}]",
			wantErr: "imports[0]: none and bindings",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nassertions: [{type: trace_order}]",
			wantErr: `unknown type "trace_order"`,
		},
		{
			name:    "contains without text",
			yaml:    "name: n\ndescription: d\nfiles: {main.mq: x}\nassertions: [{type: contains}]",
			wantErr: "contains requires text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
