package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
)

func newCollageStore(t *testing.T) *CollageStore {
	t.Helper()
	return &CollageStore{SourceDir: t.TempDir(), LocksDir: t.TempDir()}
}

func TestCollageCreateAndList(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Rose Gold"}, names)
}

func TestCollageCreateDuplicateFails(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))

	err := s.Create("Rose Gold")
	kind, ok := roseerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, roseerr.CollageAlreadyExists, kind)
}

func TestCollageAddAndRemoveRelease(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	require.NoError(t, s.AddRelease("Rose Gold", rose.CollageEntry{UUID: "r1", DescriptionMeta: "Artist - Album"}))

	c, err := s.Read("Rose Gold")
	require.NoError(t, err)
	require.Len(t, c.Releases, 1)
	assert.Equal(t, "r1", c.Releases[0].UUID)

	require.NoError(t, s.RemoveRelease("Rose Gold", "r1"))
	c, err = s.Read("Rose Gold")
	require.NoError(t, err)
	assert.Empty(t, c.Releases)
}

func TestCollageAddReleaseDedupes(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	entry := rose.CollageEntry{UUID: "r1", DescriptionMeta: "Artist - Album"}
	require.NoError(t, s.AddRelease("Rose Gold", entry))
	require.NoError(t, s.AddRelease("Rose Gold", entry))

	c, err := s.Read("Rose Gold")
	require.NoError(t, err)
	assert.Len(t, c.Releases, 1)
}

func TestCollageRename(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	require.NoError(t, s.Rename("Rose Gold", "Black Pink"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Pink"}, names)
}

func TestCollageDeleteMovesToTrash(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	require.NoError(t, s.Delete("Rose Gold"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCollageEditInEditorRejectsUnknownLine(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	require.NoError(t, s.AddRelease("Rose Gold", rose.CollageEntry{UUID: "r1", DescriptionMeta: "Artist - Album"}))

	err := s.EditInEditor("Rose Gold", func(lines []string) ([]string, error) {
		return []string{"Some Unknown Line"}, nil
	})
	kind, ok := roseerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, roseerr.DescriptionMismatch, kind)
}

func TestCollageEditInEditorReorders(t *testing.T) {
	s := newCollageStore(t)
	require.NoError(t, s.Create("Rose Gold"))
	require.NoError(t, s.AddRelease("Rose Gold", rose.CollageEntry{UUID: "r1", DescriptionMeta: "First"}))
	require.NoError(t, s.AddRelease("Rose Gold", rose.CollageEntry{UUID: "r2", DescriptionMeta: "Second"}))

	err := s.EditInEditor("Rose Gold", func(lines []string) ([]string, error) {
		return []string{"Second", "First"}, nil
	})
	require.NoError(t, err)

	c, err := s.Read("Rose Gold")
	require.NoError(t, err)
	require.Len(t, c.Releases, 2)
	assert.Equal(t, "r2", c.Releases[0].UUID)
	assert.Equal(t, "r1", c.Releases[1].UUID)
}
