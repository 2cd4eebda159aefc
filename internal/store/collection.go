package store

import (
	"database/sql"
	"fmt"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/vname"
)

// ReplaceCollageRows repopulates a collage's cache rows from its TOML
// entries, marking any entry whose release id isn't cached as missing
// rather than dropping it outright — the updater's collage/playlist
// refresh (§4.4) is what rewrites the TOML file to drop missing entries;
// this call only mirrors whatever the file currently says.
func ReplaceCollageRows(tx *sql.Tx, name string, entries []rose.CollageEntry, knownReleaseIDs map[string]bool) error {
	if _, err := tx.Exec(`
		INSERT INTO collages (name, name_sanitized) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET name_sanitized = excluded.name_sanitized
	`, name, vname.Sanitize(name, 0)); err != nil {
		return roseerr.Unexpected(fmt.Errorf("upsert collage %s: %w", name, err))
	}
	if _, err := tx.Exec("DELETE FROM collages_releases WHERE collage_name = ?", name); err != nil {
		return roseerr.Unexpected(fmt.Errorf("clear collage rows for %s: %w", name, err))
	}
	stmt, err := tx.Prepare(`
		INSERT INTO collages_releases (collage_name, release_id, description_meta, position, missing)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer stmt.Close()

	for i, e := range entries {
		missing := boolToInt(!knownReleaseIDs[e.UUID])
		if _, err := stmt.Exec(name, e.UUID, e.DescriptionMeta, i, missing); err != nil {
			return roseerr.Unexpected(fmt.Errorf("insert collage row for %s: %w", name, err))
		}
	}
	return nil
}

// DeleteCollage removes a collage's cache rows (used when its TOML file is
// gone, per the eviction sweep).
func DeleteCollage(tx *sql.Tx, name string) error {
	if _, err := tx.Exec("DELETE FROM collages WHERE name = ?", name); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

// ReplacePlaylistRows mirrors ReplaceCollageRows for playlists.
func ReplacePlaylistRows(tx *sql.Tx, name, coverImagePath string, entries []rose.PlaylistEntry, knownTrackIDs map[string]bool) error {
	if _, err := tx.Exec(`
		INSERT INTO playlists (name, name_sanitized, cover_image_path) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET name_sanitized = excluded.name_sanitized, cover_image_path = excluded.cover_image_path
	`, name, vname.Sanitize(name, 0), nullableString(coverImagePath)); err != nil {
		return roseerr.Unexpected(fmt.Errorf("upsert playlist %s: %w", name, err))
	}
	if _, err := tx.Exec("DELETE FROM playlists_tracks WHERE playlist_name = ?", name); err != nil {
		return roseerr.Unexpected(fmt.Errorf("clear playlist rows for %s: %w", name, err))
	}
	stmt, err := tx.Prepare(`
		INSERT INTO playlists_tracks (playlist_name, track_id, description_meta, position, missing)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer stmt.Close()

	for i, e := range entries {
		missing := boolToInt(!knownTrackIDs[e.UUID])
		if _, err := stmt.Exec(name, e.UUID, e.DescriptionMeta, i, missing); err != nil {
			return roseerr.Unexpected(fmt.Errorf("insert playlist row for %s: %w", name, err))
		}
	}
	return nil
}

// DeletePlaylist removes a playlist's cache rows.
func DeletePlaylist(tx *sql.Tx, name string) error {
	if _, err := tx.Exec("DELETE FROM playlists WHERE name = ?", name); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

// ListCollageNames and ListPlaylistNames back the eviction sweep's
// existence check against the !collages/!playlists directories.
func ListCollageNames(q Queryer) ([]string, error) { return listNames(q, "collages") }
func ListPlaylistNames(q Queryer) ([]string, error) { return listNames(q, "playlists") }

// ListCollageReleaseIDs returns a collage's non-missing release ids, in the
// collage file's own order, for the VFS's "6. Collages" readdir.
func ListCollageReleaseIDs(q Queryer, name string) ([]string, error) {
	rows, err := q.Query(`
		SELECT release_id FROM collages_releases
		WHERE collage_name = ? AND missing = 0
		ORDER BY position`, name)
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("list collage releases for %s: %w", name, err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPlaylistTrackIDs returns a playlist's non-missing track ids, in the
// playlist file's own order, for the VFS's "7. Playlists" readdir.
func ListPlaylistTrackIDs(q Queryer, name string) ([]string, error) {
	rows, err := q.Query(`
		SELECT track_id FROM playlists_tracks
		WHERE playlist_name = ? AND missing = 0
		ORDER BY position`, name)
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("list playlist tracks for %s: %w", name, err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PlaylistCoverImagePath returns a playlist's configured cover image path,
// if any.
func PlaylistCoverImagePath(q Queryer, name string) (string, bool, error) {
	row := q.QueryRow("SELECT cover_image_path FROM playlists WHERE name = ?", name)
	var cover sql.NullString
	if err := row.Scan(&cover); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, roseerr.Unexpected(err)
	}
	return cover.String, cover.Valid, nil
}

func listNames(q Queryer, table string) ([]string, error) {
	rows, err := q.Query(fmt.Sprintf("SELECT name FROM %s", table))
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
