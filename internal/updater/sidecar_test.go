package updater

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindSidecarLocatesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rose.abc-123.toml"), []byte("new = true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.flac"), []byte{}, 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	id, path, ok := findSidecar(dir, entries)
	require.True(t, ok)
	require.Equal(t, "abc-123", id)
	require.Equal(t, filepath.Join(dir, ".rose.abc-123.toml"), path)
}

func TestFindSidecarAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.flac"), []byte{}, 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	_, _, ok := findSidecar(dir, entries)
	require.False(t, ok)
}

func TestMintSidecarWritesNewTrueSidecar(t *testing.T) {
	dir := t.TempDir()
	id, path, sc, err := mintSidecar(dir)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.FileExists(t, path)
	require.True(t, sc.New)
	require.NotEmpty(t, sc.AddedAt)

	reread, err := readSidecar(path)
	require.NoError(t, err)
	require.Equal(t, sc, reread)
}

func TestReadSidecarDefaultsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".rose.x.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	sc, err := readSidecar(path)
	require.NoError(t, err)
	require.True(t, sc.New) // missing `new` defaults to true, per §6
	require.NotEmpty(t, sc.AddedAt)
}

func TestReadSidecarHonorsExplicitFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".rose.x.toml")
	require.NoError(t, os.WriteFile(path, []byte("new = false\nadded_at = \"2020-01-01T00:00:00Z\"\n"), 0o644))

	sc, err := readSidecar(path)
	require.NoError(t, err)
	require.False(t, sc.New)
	require.Equal(t, "2020-01-01T00:00:00Z", sc.AddedAt)
}
