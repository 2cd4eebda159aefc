package store

import (
	"database/sql"
	"fmt"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
)

// GetRelease reconstructs a full rose.Release from its scalar row plus
// every join table, for consumers that need the complete entity rather
// than a single cached field (the rules engine's tag verification pass,
// the VFS's getattr/lookup path).
func GetRelease(q Queryer, id string) (rose.Release, bool, error) {
	row := q.QueryRow(`
		SELECT id, source_path, cover_image_path, added_at, new, releasetitle,
			releasetype, releasedate, originaldate, compositiondate, edition,
			catalognumber, disctotal, metahash, datafile_mtime
		FROM releases WHERE id = ?`, id)

	var r rose.Release
	var cover sql.NullString
	var newFlag int
	var releaseDate, originalDate, compositionDate string
	err := row.Scan(&r.ID, &r.SourcePath, &cover, &r.AddedAt, &newFlag, &r.ReleaseTitle,
		&r.ReleaseType, &releaseDate, &originalDate, &compositionDate, &r.Edition,
		&r.CatalogNumber, &r.DiscTotal, &r.Metahash, &r.DatafileMtime)
	if err == sql.ErrNoRows {
		return rose.Release{}, false, nil
	}
	if err != nil {
		return rose.Release{}, false, roseerr.Unexpected(fmt.Errorf("get release %s: %w", id, err))
	}
	r.CoverImagePath = cover.String
	r.New = newFlag != 0

	if r.ReleaseDate, err = rose.ParseRoseDate(releaseDate); err != nil {
		return rose.Release{}, false, roseerr.Unexpected(err)
	}
	if r.OriginalDate, err = rose.ParseRoseDate(originalDate); err != nil {
		return rose.Release{}, false, roseerr.Unexpected(err)
	}
	if r.CompositionDate, err = rose.ParseRoseDate(compositionDate); err != nil {
		return rose.Release{}, false, roseerr.Unexpected(err)
	}

	if r.Genres, err = readFacetValues(q, "releases_genres", "genre", id); err != nil {
		return rose.Release{}, false, err
	}
	if r.SecondaryGenres, err = readFacetValues(q, "releases_secondary_genres", "genre", id); err != nil {
		return rose.Release{}, false, err
	}
	if r.Descriptors, err = readFacetValues(q, "releases_descriptors", "descriptor", id); err != nil {
		return rose.Release{}, false, err
	}
	if r.Labels, err = readFacetValues(q, "releases_labels", "label", id); err != nil {
		return rose.Release{}, false, err
	}
	if r.ReleaseArtists, err = readArtistMapping(q, "releases_artists", "release_id", id); err != nil {
		return rose.Release{}, false, err
	}
	r.ParentGenres = rose.ParentGenres(r.Genres)
	r.ParentSecondaryGenres = rose.ParentGenres(r.SecondaryGenres)

	return r, true, nil
}

// GetTrack reconstructs a full rose.Track from its scalar row and artist
// join rows.
func GetTrack(q Queryer, id string) (rose.Track, bool, error) {
	row := q.QueryRow(`
		SELECT id, release_id, source_path, source_mtime, tracktitle, tracknumber,
			tracktotal, discnumber, duration_seconds, metahash
		FROM tracks WHERE id = ?`, id)

	var t rose.Track
	err := row.Scan(&t.ID, &t.ReleaseID, &t.SourcePath, &t.SourceMtime, &t.TrackTitle,
		&t.TrackNumber, &t.TrackTotal, &t.DiscNumber, &t.DurationSeconds, &t.Metahash)
	if err == sql.ErrNoRows {
		return rose.Track{}, false, nil
	}
	if err != nil {
		return rose.Track{}, false, roseerr.Unexpected(fmt.Errorf("get track %s: %w", id, err))
	}

	if t.TrackArtists, err = readArtistMapping(q, "tracks_artists", "track_id", id); err != nil {
		return rose.Track{}, false, err
	}
	return t, true, nil
}

// ListTracksForRelease reconstructs every track under a release, ordered
// by track number, for the VFS's directory listing and the updater's
// stale-track diff.
func ListTracksForRelease(q Queryer, releaseID string) ([]rose.Track, error) {
	ids, err := ListTrackIDsForRelease(q, releaseID)
	if err != nil {
		return nil, err
	}
	tracks := make([]rose.Track, 0, len(ids))
	for _, id := range ids {
		t, ok, err := GetTrack(q, id)
		if err != nil {
			return nil, err
		}
		if ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

func readFacetValues(q Queryer, table, column, releaseID string) ([]string, error) {
	rows, err := q.Query(fmt.Sprintf("SELECT %s FROM %s WHERE release_id = ? ORDER BY position", column, table), releaseID)
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("read %s for %s: %w", table, releaseID, err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func readArtistMapping(q Queryer, table, idColumn, id string) (rose.ArtistMapping, error) {
	rows, err := q.Query(fmt.Sprintf(
		"SELECT artist, role, alias FROM %s WHERE %s = ? ORDER BY position", table, idColumn,
	), id)
	if err != nil {
		return rose.ArtistMapping{}, roseerr.Unexpected(fmt.Errorf("read %s for %s: %w", table, id, err))
	}
	defer rows.Close()

	var mapping rose.ArtistMapping
	for rows.Next() {
		var name, role string
		var aliasFlag int
		if err := rows.Scan(&name, &role, &aliasFlag); err != nil {
			return rose.ArtistMapping{}, roseerr.Unexpected(err)
		}
		r := rose.ArtistRole(role)
		mapping.SetRole(r, append(mapping.Role(r), rose.Artist{Name: name, Alias: aliasFlag != 0}))
	}
	return mapping, rows.Err()
}
