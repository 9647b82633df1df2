package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverScenarios_Directory(t *testing.T) {
	got, err := DiscoverScenarios("testdata", []string{"scenarios"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "cast_error.yaml"),
		filepath.Join("testdata", "scenarios", "guard_self_reference.yaml"),
		filepath.Join("testdata", "scenarios", "headings_and_lists.yaml"),
	}, got)
}

func TestDiscoverScenarios_MixedAndNested(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.yml", "nested/a.yaml", "notes.txt", "single.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := DiscoverScenarios(dir, []string{"single.yaml", "."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "single.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "nested", "a.yaml"),
		filepath.Join(dir, "single.yaml"),
	}, got)
}

func TestDiscoverScenarios_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := DiscoverScenarios(dir, []string{"missing.yaml"})
	require.Error(t, err)

	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing.yaml", notFound.Path)
	assert.Equal(t, filepath.Join(dir, "missing.yaml"), notFound.ResolvedPath)
}
