package store

import (
	"database/sql"
	"fmt"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
)

// UpsertTrack writes t's scalar row and replaces its artist join rows, then
// repopulates its rules_engine_fts row, per §4.4 step 6.
func UpsertTrack(tx *sql.Tx, t rose.Track, release rose.Release) error {
	_, err := tx.Exec(`
		INSERT INTO tracks (id, release_id, source_path, source_mtime, tracktitle,
			tracknumber, tracktotal, discnumber, duration_seconds, metahash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			release_id=excluded.release_id, source_path=excluded.source_path,
			source_mtime=excluded.source_mtime, tracktitle=excluded.tracktitle,
			tracknumber=excluded.tracknumber, tracktotal=excluded.tracktotal,
			discnumber=excluded.discnumber, duration_seconds=excluded.duration_seconds,
			metahash=excluded.metahash
	`,
		t.ID, t.ReleaseID, t.SourcePath, t.SourceMtime, t.TrackTitle, t.TrackNumber,
		t.TrackTotal, t.DiscNumber, t.DurationSeconds, t.Metahash,
	)
	if err != nil {
		return roseerr.Unexpected(fmt.Errorf("upsert track %s: %w", t.ID, err))
	}

	if err := replaceArtistRows(tx, "tracks_artists", "track_id", t.ID, t.TrackArtists); err != nil {
		return err
	}
	return upsertFTSRow(tx, t, release)
}

// DeleteTrack removes a track row (its artist join rows follow via ON
// DELETE CASCADE) and its rules_engine_fts row, per §4.4 step 7 ("if a track was in the old row set
// but not the new, delete it").
func DeleteTrack(tx *sql.Tx, id string) error {
	if _, err := tx.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return roseerr.Unexpected(fmt.Errorf("delete track %s: %w", id, err))
	}
	return deleteFTSRow(tx, id)
}

// GetTrackMetahash returns the stored metahash for a track id, and
// ok=false if it isn't cached yet (§4.4 step 4's reuse-or-recompute check).
func GetTrackMetahash(q Queryer, id string) (hash string, ok bool, err error) {
	row := q.QueryRow("SELECT metahash FROM tracks WHERE id = ?", id)
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, roseerr.Unexpected(err)
	}
	return hash, true, nil
}

// ListTrackIDsForRelease returns every track id currently cached under a
// release, for step 7's stale-track cleanup.
func ListTrackIDsForRelease(q Queryer, releaseID string) ([]string, error) {
	rows, err := q.Query("SELECT id FROM tracks WHERE release_id = ?", releaseID)
	if err != nil {
		return nil, roseerr.Unexpected(err)
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
