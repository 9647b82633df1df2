package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	version, err := s.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestStore_WriteAndReadSource(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSource(ctx, "/main.mq", "let a = 1"))

	src, err := s.ReadSource(ctx, "/main.mq")
	require.NoError(t, err)
	assert.Equal(t, "/main.mq", src.Path)
	assert.Equal(t, "let a = 1", src.Text)
	assert.Len(t, src.Hash, 64)
	assert.Equal(t, int64(1), src.Seq)
}

func TestStore_ReadSource_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSource(context.Background(), "/missing.mq")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RewriteKeepsOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSource(ctx, "/b.mq", "b"))
	require.NoError(t, s.WriteSource(ctx, "/a.mq", "a"))
	require.NoError(t, s.WriteSource(ctx, "/b.mq", "b2"))

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "/b.mq", sources[0].Path)
	assert.Equal(t, "b2", sources[0].Text)
	assert.Equal(t, "/a.mq", sources[1].Path)
}

func TestStore_ListSources_Empty(t *testing.T) {
	s := createTestStore(t)

	sources, err := s.ListSources(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sources)
	assert.Empty(t, sources)
}

func TestStore_BundleID_Stable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.BundleID(ctx)
	require.NoError(t, err)
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	second, err := s.BundleID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_ImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.mq"), []byte(`import "lib/util.mq"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.mq"), []byte("let x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	s := createTestStore(t)
	ctx := context.Background()

	n, err := s.ImportDir(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	src, err := s.ReadSource(ctx, "/lib/util.mq")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1", src.Text)

	root, err := s.Meta(ctx, MetaRoot)
	require.NoError(t, err)
	assert.Equal(t, "/", root)

	_, err = s.Meta(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}
