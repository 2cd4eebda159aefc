package rulesengine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

// trackEditRow is one track's editable fields in the TOML snapshot an
// editor session works against.
type trackEditRow struct {
	Path            string   `toml:"path"`
	TrackTitle      string   `toml:"tracktitle"`
	TrackNumber     string   `toml:"tracknumber"`
	DiscNumber      string   `toml:"discnumber"`
	ReleaseTitle    string   `toml:"releasetitle"`
	ReleaseType     string   `toml:"releasetype"`
	ReleaseDate     string   `toml:"releasedate"`
	OriginalDate    string   `toml:"originaldate"`
	CompositionDate string   `toml:"compositiondate"`
	Edition         string   `toml:"edition"`
	CatalogNumber   string   `toml:"catalognumber"`
	Genres          []string `toml:"genre"`
	SecondaryGenres []string `toml:"secondarygenre"`
	Descriptors     []string `toml:"descriptor"`
	Labels          []string `toml:"label"`
	ReleaseArtists  string   `toml:"releaseartist"`
	TrackArtists    string   `toml:"trackartist"`
}

type releaseEditSnapshot struct {
	Tracks []trackEditRow `toml:"tracks"`
}

// EditReleaseInEditor mirrors §4.5's collage/playlist edit_in_editor flow
// over a release's own tags (§6's `releases edit`): presents a TOML
// snapshot of every track's tags via editor, parses the user's edits back,
// writes each track whose fields changed, and on any write or parse
// failure raises ReleaseEditFailed with the edited text preserved in a
// resume file rather than discarding the user's edits.
func (e *Engine) EditReleaseInEditor(releaseID string, editor func(string) (string, error)) error {
	r, ok, err := store.GetRelease(e.Store.DB, releaseID)
	if err != nil {
		return err
	}
	if !ok {
		return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", releaseID)
	}
	tracks, err := store.ListTracksForRelease(e.Store.DB, releaseID)
	if err != nil {
		return err
	}

	originals := make(map[string]tags.AudioTags, len(tracks))
	var snapshot releaseEditSnapshot
	for _, t := range tracks {
		at, err := tags.Read(t.SourcePath)
		if err != nil {
			return err
		}
		originals[at.Path] = at
		snapshot.Tracks = append(snapshot.Tracks, toEditRow(at))
	}

	before, err := toml.Marshal(snapshot)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	afterText, err := editor(string(before))
	if err != nil {
		return roseerr.Unexpected(err)
	}

	var after releaseEditSnapshot
	if err := toml.Unmarshal([]byte(afterText), &after); err != nil {
		return e.failEdit(releaseID, afterText, fmt.Errorf("invalid TOML: %w", err))
	}
	if len(after.Tracks) != len(snapshot.Tracks) {
		return e.failEdit(releaseID, afterText, fmt.Errorf("expected %d tracks, got %d", len(snapshot.Tracks), len(after.Tracks)))
	}

	for _, row := range after.Tracks {
		orig, ok := originals[row.Path]
		if !ok {
			return e.failEdit(releaseID, afterText, fmt.Errorf("unknown track path %q", row.Path))
		}
		updated, err := fromEditRow(orig, row)
		if err != nil {
			return e.failEdit(releaseID, afterText, err)
		}
		if err := updated.Write(true); err != nil {
			return e.failEdit(releaseID, afterText, err)
		}
	}

	if e.Updater != nil {
		return e.Updater.UpdateReleases([]string{r.SourcePath}, false)
	}
	return nil
}

func (e *Engine) failEdit(releaseID, text string, cause error) error {
	resumePath := filepath.Join(e.Config.CacheDir, "release-edit-"+releaseID+".toml.resume")
	_ = os.WriteFile(resumePath, []byte(text), 0o644)
	return roseerr.New(roseerr.ReleaseEditFailed,
		"failed to apply release edit: %s (your edits were saved to %s)", cause, resumePath)
}

func toEditRow(at tags.AudioTags) trackEditRow {
	return trackEditRow{
		Path: at.Path, TrackTitle: at.TrackTitle, TrackNumber: at.TrackNumber, DiscNumber: at.DiscNumber,
		ReleaseTitle: at.ReleaseTitle, ReleaseType: string(at.ReleaseType),
		ReleaseDate: at.ReleaseDate.String(), OriginalDate: at.OriginalDate.String(), CompositionDate: at.CompositionDate.String(),
		Edition: at.Edition, CatalogNumber: at.CatalogNumber,
		Genres: at.Genres, SecondaryGenres: at.SecondaryGenres, Descriptors: at.Descriptors, Labels: at.Labels,
		ReleaseArtists: joinArtists(at.ReleaseArtists.All()), TrackArtists: joinArtists(at.TrackArtists.All()),
	}
}

func fromEditRow(orig tags.AudioTags, row trackEditRow) (tags.AudioTags, error) {
	at := orig
	at.TrackTitle, at.TrackNumber, at.DiscNumber = row.TrackTitle, row.TrackNumber, row.DiscNumber
	at.ReleaseTitle, at.Edition, at.CatalogNumber = row.ReleaseTitle, row.Edition, row.CatalogNumber
	at.ReleaseType = rose.NormalizeReleaseType(row.ReleaseType)
	at.Genres, at.SecondaryGenres, at.Descriptors, at.Labels = row.Genres, row.SecondaryGenres, row.Descriptors, row.Labels

	var err error
	if at.ReleaseDate, err = rose.ParseRoseDate(row.ReleaseDate); err != nil {
		return tags.AudioTags{}, roseerr.New(roseerr.InvalidReplacementValue, "invalid releasedate %q: %s", row.ReleaseDate, err)
	}
	if at.OriginalDate, err = rose.ParseRoseDate(row.OriginalDate); err != nil {
		return tags.AudioTags{}, roseerr.New(roseerr.InvalidReplacementValue, "invalid originaldate %q: %s", row.OriginalDate, err)
	}
	if at.CompositionDate, err = rose.ParseRoseDate(row.CompositionDate); err != nil {
		return tags.AudioTags{}, roseerr.New(roseerr.InvalidReplacementValue, "invalid compositiondate %q: %s", row.CompositionDate, err)
	}

	at.ReleaseArtists = rose.ArtistMapping{Main: splitArtists(row.ReleaseArtists)}
	at.TrackArtists = rose.ArtistMapping{Main: splitArtists(row.TrackArtists)}
	return at, nil
}

func joinArtists(artists []rose.Artist) string {
	return strings.Join(names(artists), "; ")
}

func splitArtists(s string) []rose.Artist {
	return toArtists(rose.DedupStrings(strings.Split(s, ";")))
}
