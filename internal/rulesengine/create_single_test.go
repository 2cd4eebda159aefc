package rulesengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

func TestCreateSingleReleaseBuildsNewDirectory(t *testing.T) {
	e := testEngine(t)
	srcDir := filepath.Join(e.Config.MusicSourceDir, "Album")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	trackPath := filepath.Join(srcDir, "03.flac")
	writeTrack(t, trackPath, tags.AudioTags{
		TrackTitle: "Standalone Cut", TrackNumber: "3", DiscNumber: "1",
		ReleaseTitle: "Album", ReleaseType: rose.ReleaseTypeAlbum,
		ReleaseDate:    rose.RoseDate{Year: 2020},
		ReleaseArtists: rose.ArtistMapping{Main: []rose.Artist{{Name: "Album Artist"}}},
		TrackArtists:   rose.ArtistMapping{Main: []rose.Artist{{Name: "Track Artist"}}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "cover.jpg"), []byte("jpg"), 0o644))

	releaseID, err := e.CreateSingleRelease(trackPath)
	require.NoError(t, err)
	require.NotEmpty(t, releaseID)

	r, ok, err := store.GetRelease(e.Store.DB, releaseID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Standalone Cut", r.ReleaseTitle)
	require.Equal(t, rose.ReleaseTypeSingle, r.ReleaseType)
	require.False(t, r.New, "extracted single should default to not-new")

	require.NotEqual(t, srcDir, r.SourcePath)
	require.FileExists(t, filepath.Join(r.SourcePath, "01. Standalone Cut.flac"))
	require.FileExists(t, filepath.Join(r.SourcePath, "cover.jpg"))

	tracks, err := store.ListTracksForRelease(e.Store.DB, releaseID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	require.Equal(t, "1", tracks[0].TrackNumber)
}

func TestCreateSingleReleaseSuffixesOnCollision(t *testing.T) {
	e := testEngine(t)
	srcDir := filepath.Join(e.Config.MusicSourceDir, "Album")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	track1 := filepath.Join(srcDir, "01.flac")
	writeTrack(t, track1, tags.AudioTags{
		TrackTitle: "Dup", ReleaseTitle: "Album", ReleaseType: rose.ReleaseTypeAlbum,
		TrackArtists: rose.ArtistMapping{Main: []rose.Artist{{Name: "Artist"}}},
	})
	id1, err := e.CreateSingleRelease(track1)
	require.NoError(t, err)

	track2 := filepath.Join(srcDir, "02.flac")
	writeTrack(t, track2, tags.AudioTags{
		TrackTitle: "Dup", ReleaseTitle: "Album", ReleaseType: rose.ReleaseTypeAlbum,
		TrackArtists: rose.ArtistMapping{Main: []rose.Artist{{Name: "Artist"}}},
	})
	id2, err := e.CreateSingleRelease(track2)
	require.NoError(t, err)

	require.NotEqual(t, id1, id2)
	r1, _, err := store.GetRelease(e.Store.DB, id1)
	require.NoError(t, err)
	r2, _, err := store.GetRelease(e.Store.DB, id2)
	require.NoError(t, err)
	require.NotEqual(t, r1.SourcePath, r2.SourcePath)
}
