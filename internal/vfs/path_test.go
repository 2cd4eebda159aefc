package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoot(t *testing.T) {
	p, err := Parse("/")
	require.NoError(t, err)
	require.Equal(t, VirtualPath{}, p)
	require.True(t, p.IsRoot())
}

func TestParseUnknownView(t *testing.T) {
	_, err := Parse("/9. Nonsense")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseReleaseFamily(t *testing.T) {
	p, err := Parse("/1. Releases/Some Album/01. Track.flac")
	require.NoError(t, err)
	require.Equal(t, VirtualPath{View: ViewReleases, Release: "Some Album", File: "01. Track.flac"}, p)
}

func TestParseFacetedView(t *testing.T) {
	p, err := Parse("/3. Genres/House/Some Album")
	require.NoError(t, err)
	require.Equal(t, VirtualPath{View: ViewGenres, Facet: "House", Release: "Some Album"}, p)
}

func TestParseCollageReleaseDir(t *testing.T) {
	p, err := Parse("/6. Collages/Favorites/01. Some Album/cover.jpg")
	require.NoError(t, err)
	require.Equal(t, VirtualPath{View: ViewCollages, Facet: "Favorites", Release: "01. Some Album", File: "cover.jpg"}, p)
	require.True(t, p.IsCollages())
}

func TestParsePlaylistHasNoReleaseLayer(t *testing.T) {
	p, err := Parse("/7. Playlists/Mix/01. Some Track.flac")
	require.NoError(t, err)
	require.Equal(t, VirtualPath{View: ViewPlaylists, Facet: "Mix", File: "01. Some Track.flac"}, p)
	require.True(t, p.IsPlaylists())
}

func TestVirtualPathStringRoundTrips(t *testing.T) {
	for _, path := range []string{
		"/",
		"/1. Releases",
		"/1. Releases/Some Album",
		"/1. Releases/Some Album/01. Track.flac",
		"/2. Artists/Some Artist/Some Album",
		"/7. Playlists/Mix",
		"/7. Playlists/Mix/cover.jpg",
	} {
		p, err := Parse(path)
		require.NoError(t, err)
		require.Equal(t, path, p.String())
	}
}

func TestAllTracksSentinel(t *testing.T) {
	p, err := Parse("/1. Releases/" + AllTracksName + "/Some Artist - Some Album - Track.flac")
	require.NoError(t, err)
	require.True(t, p.IsAllTracks())
}
