package updater

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindCoverImagePathPrefersConfiguredStemOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folder.jpg"), []byte{}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.png"), []byte{}, 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	got := findCoverImagePath(dir, entries, []string{"cover", "folder"}, []string{"jpg", "png"})
	require.Equal(t, filepath.Join(dir, "cover.png"), got)
}

func TestFindCoverImagePathNoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte{}, 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	got := findCoverImagePath(dir, entries, []string{"cover", "folder"}, []string{"jpg", "png"})
	require.Empty(t, got)
}
