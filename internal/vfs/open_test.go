package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

func TestOpenReadPassthroughTrackFile(t *testing.T) {
	c, _ := newTestCore(t)
	writeRelease(t, c, "Some Album", "Some Track")

	entries, err := c.Readdir(VirtualPath{View: ViewReleases})
	require.NoError(t, err)
	var releaseName string
	for _, e := range entries {
		if e.Name != AllTracksName {
			releaseName = e.Name
		}
	}
	contents, err := c.Readdir(VirtualPath{View: ViewReleases, Release: releaseName})
	require.NoError(t, err)
	require.NotEmpty(t, contents)

	p := VirtualPath{View: ViewReleases, Release: releaseName, File: contents[0].Name}
	h, err := c.Open(p, os.O_RDONLY)
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := c.Read(h, buf, 0)
	require.NoError(t, err)
	require.Equal(t, "fLaC", string(buf[:n]))
	require.NoError(t, c.Release(h))
}

func TestOpenCreateInstallsReleaseCoverArt(t *testing.T) {
	c, _ := newTestCore(t)
	id := writeRelease(t, c, "Some Album", "Some Track")

	entries, err := c.Readdir(VirtualPath{View: ViewReleases})
	require.NoError(t, err)
	var releaseName string
	for _, e := range entries {
		if e.Name != AllTracksName {
			releaseName = e.Name
		}
	}

	p := VirtualPath{View: ViewReleases, Release: releaseName, File: "cover.jpg"}
	h, err := c.Open(p, os.O_WRONLY|os.O_CREATE)
	require.NoError(t, err)

	data := []byte("not a real jpeg, just test bytes")
	n, err := c.Write(h, data, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, c.Release(h))

	r, ok, err := store.GetRelease(c.Store.DB, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cover.jpg", filepath.Base(r.CoverImagePath))

	installed, err := os.ReadFile(r.CoverImagePath)
	require.NoError(t, err)
	require.Equal(t, data, installed)
}

func TestOpenCreateInstallsPlaylistCoverArt(t *testing.T) {
	c, _ := newTestCore(t)
	require.NoError(t, c.Mkdir(VirtualPath{View: ViewPlaylists, Facet: "Mix"}))

	p := VirtualPath{View: ViewPlaylists, Facet: "Mix", File: "cover.png"}
	h, err := c.Open(p, os.O_WRONLY|os.O_CREATE)
	require.NoError(t, err)

	data := []byte("not a real png, just test bytes")
	_, err = c.Write(h, data, 0)
	require.NoError(t, err)
	require.NoError(t, c.Release(h))

	cover, ok, err := store.PlaylistCoverImagePath(c.Store.DB, "Mix")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, cover)
}

func TestOpenCreateInstallsPlaylistTrack(t *testing.T) {
	c, _ := newTestCore(t)
	releaseID := writeRelease(t, c, "Some Album", "Some Track")
	tracks, err := store.ListTracksForRelease(c.Store.DB, releaseID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	require.NoError(t, c.Mkdir(VirtualPath{View: ViewPlaylists, Facet: "Mix"}))

	trackFile := filepath.Join(t.TempDir(), "incoming.flac")
	buildMinimalFLAC(t, trackFile, 44100, 44100*3)
	at := tags.AudioTags{Path: trackFile, ID: tracks[0].ID, TrackTitle: "Some Track"}
	require.NoError(t, at.Write(true))
	data, err := os.ReadFile(trackFile)
	require.NoError(t, err)

	p := VirtualPath{View: ViewPlaylists, Facet: "Mix", File: "incoming.flac"}
	h, err := c.Open(p, os.O_WRONLY|os.O_CREATE)
	require.NoError(t, err)
	_, err = c.Write(h, data, 0)
	require.NoError(t, err)
	require.NoError(t, c.Release(h))

	entries, err := c.Readdir(VirtualPath{View: ViewPlaylists, Facet: "Mix"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestOpenCreateCollageAddTOMLCompletesProtocol(t *testing.T) {
	c, _ := newTestCore(t)
	id := writeRelease(t, c, "Some Album", "Some Track")
	require.NoError(t, c.Mkdir(VirtualPath{View: ViewCollages, Facet: "Favorites"}))

	p := VirtualPath{View: ViewCollages, Facet: "Favorites", Release: "01. Some Album", File: ".rose." + id + ".toml"}
	h, err := c.Open(p, os.O_WRONLY|os.O_CREATE)
	require.NoError(t, err)
	require.NoError(t, c.Release(h))

	entries, err := c.Readdir(VirtualPath{View: ViewCollages, Facet: "Favorites"})
	require.NoError(t, err)
	require.Len(t, entries, 2) // !All Tracks + the added release
}

func TestOpenCreateOutsideKnownLocationsIsPermissionDenied(t *testing.T) {
	c, _ := newTestCore(t)
	writeRelease(t, c, "Some Album", "Some Track")
	p := VirtualPath{View: ViewReleases, Release: "Some Album", File: "junk.txt"}
	_, err := c.Open(p, os.O_WRONLY|os.O_CREATE)
	require.ErrorIs(t, err, ErrPermission)
}
