package updater

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

func TestRefreshCollageDropsMissingRelease(t *testing.T) {
	u := newTestUpdater(t)
	dir := filepath.Join(u.Config.MusicSourceDir, "Kept Release")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeTrack(t, filepath.Join(dir, "01.flac"), tags.AudioTags{TrackTitle: "T", ReleaseTitle: "Kept Release"})
	require.NoError(t, u.UpdateAll(false))

	paths, err := store.ListReleaseSourcePaths(u.Store.DB)
	require.NoError(t, err)
	keptID := onlyReleaseID(t, paths)

	cs := u.collageStore()
	require.NoError(t, cs.Create("Favorites"))
	require.NoError(t, cs.AddRelease("Favorites", rose.CollageEntry{UUID: keptID, DescriptionMeta: "Kept Release"}))
	require.NoError(t, cs.AddRelease("Favorites", rose.CollageEntry{UUID: "ghost-id", DescriptionMeta: "Gone Release"}))

	require.NoError(t, u.RefreshCollage("Favorites"))

	c, err := cs.Read("Favorites")
	require.NoError(t, err)
	require.Len(t, c.Releases, 1)
	require.Equal(t, keptID, c.Releases[0].UUID)
}

func TestRefreshPlaylistDropsMissingTrack(t *testing.T) {
	u := newTestUpdater(t)
	dir := filepath.Join(u.Config.MusicSourceDir, "Source Release")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeTrack(t, filepath.Join(dir, "01.flac"), tags.AudioTags{TrackTitle: "T", ReleaseTitle: "Source Release"})
	require.NoError(t, u.UpdateAll(false))

	paths, err := store.ListReleaseSourcePaths(u.Store.DB)
	require.NoError(t, err)
	releaseID := onlyReleaseID(t, paths)
	tracks, err := store.ListTracksForRelease(u.Store.DB, releaseID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	ps := u.playlistStore()
	require.NoError(t, ps.Create("Mix"))
	require.NoError(t, ps.AddTrack("Mix", rose.PlaylistEntry{UUID: tracks[0].ID, DescriptionMeta: "T"}))
	require.NoError(t, ps.AddTrack("Mix", rose.PlaylistEntry{UUID: "ghost-track", DescriptionMeta: "Gone"}))

	require.NoError(t, u.RefreshPlaylist("Mix"))

	p, err := ps.Read("Mix")
	require.NoError(t, err)
	require.Len(t, p.Tracks, 1)
	require.Equal(t, tracks[0].ID, p.Tracks[0].UUID)
}

func TestEvictNonexistentReleases(t *testing.T) {
	u := newTestUpdater(t)
	dir := filepath.Join(u.Config.MusicSourceDir, "Doomed Release")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeTrack(t, filepath.Join(dir, "01.flac"), tags.AudioTags{TrackTitle: "T", ReleaseTitle: "Doomed Release"})
	require.NoError(t, u.UpdateAll(false))

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, u.EvictNonexistentReleases())

	paths, err := store.ListReleaseSourcePaths(u.Store.DB)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestEvictNonexistentCollages(t *testing.T) {
	u := newTestUpdater(t)
	cs := u.collageStore()
	require.NoError(t, cs.Create("Ephemeral"))
	require.NoError(t, u.RefreshCollage("Ephemeral"))

	names, err := store.ListCollageNames(u.Store.DB)
	require.NoError(t, err)
	require.Contains(t, names, "Ephemeral")

	require.NoError(t, os.RemoveAll(filepath.Join(u.Config.MusicSourceDir, "!collages")))
	require.NoError(t, u.EvictNonexistentCollages())

	names, err = store.ListCollageNames(u.Store.DB)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestToggleReleaseNewFlipsSidecar(t *testing.T) {
	u := newTestUpdater(t)
	dir := filepath.Join(u.Config.MusicSourceDir, "Togglable")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeTrack(t, filepath.Join(dir, "01.flac"), tags.AudioTags{TrackTitle: "T", ReleaseTitle: "Togglable"})
	require.NoError(t, u.UpdateAll(false))

	paths, err := store.ListReleaseSourcePaths(u.Store.DB)
	require.NoError(t, err)
	releaseID := onlyReleaseID(t, paths)

	before, _, err := store.GetRelease(u.Store.DB, releaseID)
	require.NoError(t, err)
	require.True(t, before.New)

	require.NoError(t, u.ToggleReleaseNew(releaseID))

	after, _, err := store.GetRelease(u.Store.DB, releaseID)
	require.NoError(t, err)
	require.False(t, after.New)

	require.NoError(t, u.ToggleReleaseNew(releaseID))
	restored, _, err := store.GetRelease(u.Store.DB, releaseID)
	require.NoError(t, err)
	require.True(t, restored.New)
}
