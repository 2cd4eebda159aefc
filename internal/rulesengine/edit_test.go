package rulesengine

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

func TestEditReleaseInEditorAppliesEdits(t *testing.T) {
	e := testEngine(t)
	releaseID := seedRelease(t, e, "Editable", "Allegro", "Classical")

	err := e.EditReleaseInEditor(releaseID, func(text string) (string, error) {
		require.Contains(t, text, "Allegro")
		return strings.Replace(text, "Allegro", "Presto", 1), nil
	})
	require.NoError(t, err)

	tracks, err := store.ListTracksForRelease(e.Store.DB, releaseID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	require.Equal(t, "Presto", tracks[0].TrackTitle)

	at, err := tags.Read(tracks[0].SourcePath)
	require.NoError(t, err)
	require.Equal(t, "Presto", at.TrackTitle)
}

func TestEditReleaseInEditorRejectsUnknownRelease(t *testing.T) {
	e := testEngine(t)
	err := e.EditReleaseInEditor("does-not-exist", func(text string) (string, error) { return text, nil })
	require.Error(t, err)
}

func TestEditReleaseInEditorWritesResumeFileOnInvalidTOML(t *testing.T) {
	e := testEngine(t)
	releaseID := seedRelease(t, e, "Broken Edit", "Allegro", "Classical")

	err := e.EditReleaseInEditor(releaseID, func(text string) (string, error) {
		return "this is not valid toml {{{", nil
	})
	require.Error(t, err)

	entries, readErr := os.ReadDir(e.Config.CacheDir)
	require.NoError(t, readErr)
	found := false
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name(), "release-edit-"+releaseID) {
			found = true
		}
	}
	require.True(t, found, "expected a resume file preserving the edited text")
}

func TestEditReleaseInEditorRejectsInvalidReleaseDate(t *testing.T) {
	e := testEngine(t)
	releaseID := seedRelease(t, e, "Bad Date", "Allegro", "Classical")

	err := e.EditReleaseInEditor(releaseID, func(text string) (string, error) {
		return strings.Replace(text, `releasedate = ''`, `releasedate = 'not-a-date'`, 1), nil
	})
	require.Error(t, err)
}
