package store

import (
	"database/sql"
	"fmt"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/vname"
)

// UpsertRelease writes r's scalar row and replaces every join-table row for
// it, per §4.4 step 6 ("upsert the release row, replace all join rows").
// Callers are expected to have already determined the metahash changed
// (skipping this call entirely is the no-op fast path).
func UpsertRelease(tx *sql.Tx, r rose.Release) error {
	_, err := tx.Exec(`
		INSERT INTO releases (id, source_path, cover_image_path, added_at, new,
			releasetitle, releasetype, releasedate, originaldate, compositiondate,
			edition, catalognumber, disctotal, metahash, datafile_mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path=excluded.source_path, cover_image_path=excluded.cover_image_path,
			added_at=excluded.added_at, new=excluded.new, releasetitle=excluded.releasetitle,
			releasetype=excluded.releasetype, releasedate=excluded.releasedate,
			originaldate=excluded.originaldate, compositiondate=excluded.compositiondate,
			edition=excluded.edition, catalognumber=excluded.catalognumber,
			disctotal=excluded.disctotal, metahash=excluded.metahash,
			datafile_mtime=excluded.datafile_mtime
	`,
		r.ID, r.SourcePath, nullableString(r.CoverImagePath), r.AddedAt, boolToInt(r.New),
		r.ReleaseTitle, string(r.ReleaseType), r.ReleaseDate.String(), r.OriginalDate.String(),
		r.CompositionDate.String(), r.Edition, r.CatalogNumber, r.DiscTotal, r.Metahash,
		r.DatafileMtime,
	)
	if err != nil {
		return roseerr.Unexpected(fmt.Errorf("upsert release %s: %w", r.ID, err))
	}

	if err := replaceFacetRows(tx, "releases_genres", "genre", "release_id", r.ID, r.Genres); err != nil {
		return err
	}
	if err := replaceFacetRows(tx, "releases_secondary_genres", "genre", "release_id", r.ID, r.SecondaryGenres); err != nil {
		return err
	}
	if err := replaceFacetRows(tx, "releases_descriptors", "descriptor", "release_id", r.ID, r.Descriptors); err != nil {
		return err
	}
	if err := replaceFacetRows(tx, "releases_labels", "label", "release_id", r.ID, r.Labels); err != nil {
		return err
	}
	if err := replaceArtistRows(tx, "releases_artists", "release_id", r.ID, r.ReleaseArtists); err != nil {
		return err
	}
	return nil
}

// DeleteRelease removes a release row and (via ON DELETE CASCADE) its join
// rows and tracks.
func DeleteRelease(tx *sql.Tx, id string) error {
	if _, err := tx.Exec("DELETE FROM releases WHERE id = ?", id); err != nil {
		return roseerr.Unexpected(fmt.Errorf("delete release %s: %w", id, err))
	}
	return nil
}

// SetReleaseCoverImagePath updates a single release's cover_image_path
// column, for the VFS's set_release_cover_art/delete-cover operations
// (§4.8), which write the real cover file directly and only need the
// cache's pointer to it kept in sync — not a full rescan.
func SetReleaseCoverImagePath(tx *sql.Tx, id, path string) error {
	if _, err := tx.Exec("UPDATE releases SET cover_image_path = ? WHERE id = ?", nullableString(path), id); err != nil {
		return roseerr.Unexpected(fmt.Errorf("set cover image path for release %s: %w", id, err))
	}
	return nil
}

// GetReleaseMetahash returns the stored metahash for a release id, and
// ok=false if the release isn't cached yet — the fast path §4.4 step 6
// uses to decide whether any write is needed at all.
func GetReleaseMetahash(q Queryer, id string) (hash string, ok bool, err error) {
	row := q.QueryRow("SELECT metahash FROM releases WHERE id = ?", id)
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, roseerr.Unexpected(err)
	}
	return hash, true, nil
}

// GetReleaseDatafileMtime returns the stored sidecar mtime, for §4.4 step
// 5's "if the sidecar mtime is unchanged, reuse the prior fields" check.
func GetReleaseDatafileMtime(q Queryer, id string) (mtime string, ok bool, err error) {
	row := q.QueryRow("SELECT datafile_mtime FROM releases WHERE id = ?", id)
	if err := row.Scan(&mtime); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, roseerr.Unexpected(err)
	}
	return mtime, true, nil
}

// ListReleaseSourcePaths returns every cached release's (id, source_path),
// for the eviction sweep of §4.4's "evict nonexistent releases".
func ListReleaseSourcePaths(q Queryer) (map[string]string, error) {
	rows, err := q.Query("SELECT id, source_path FROM releases")
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out[id] = path
	}
	return out, rows.Err()
}

// Queryer is the subset of *sql.DB/*sql.Tx this package reads through,
// letting callers run a read either against the pooled connection or
// inside an open transaction.
type Queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func replaceFacetRows(tx *sql.Tx, table, column, idColumn, id string, values []string) error {
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn), id); err != nil {
		return roseerr.Unexpected(fmt.Errorf("clear %s for %s: %w", table, id, err))
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s_sanitized, position) VALUES (?, ?, ?, ?)",
		table, idColumn, column, column,
	))
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.Exec(id, v, vname.Sanitize(v, 0), i); err != nil {
			return roseerr.Unexpected(fmt.Errorf("insert %s row for %s: %w", table, id, err))
		}
	}
	return nil
}

func replaceArtistRows(tx *sql.Tx, table, idColumn, id string, mapping rose.ArtistMapping) error {
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn), id); err != nil {
		return roseerr.Unexpected(fmt.Errorf("clear %s for %s: %w", table, id, err))
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s, artist, artist_sanitized, role, alias, position) VALUES (?, ?, ?, ?, ?, ?)",
		table, idColumn,
	))
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer stmt.Close()

	position := 0
	for _, role := range rose.AllRoles {
		for _, artist := range mapping.Role(role) {
			if _, err := stmt.Exec(id, artist.Name, vname.Sanitize(artist.Name, 0), string(role), boolToInt(artist.Alias), position); err != nil {
				return roseerr.Unexpected(fmt.Errorf("insert %s row for %s: %w", table, id, err))
			}
			position++
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
