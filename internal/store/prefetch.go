package store

import "github.com/azuline/rose-go/internal/roseerr"

// ReleaseState is the slice of a cached release row the updater needs to
// decide whether a rescan can take the reuse-or-recompute fast path,
// without fetching the rest of the row.
type ReleaseState struct {
	Metahash      string
	DatafileMtime string
}

// TrackState mirrors ReleaseState for a single track row.
type TrackState struct {
	ReleaseID   string
	SourcePath  string
	SourceMtime string
	Metahash    string
}

// PreloadReleaseStates loads every cached release's metahash and sidecar
// mtime in one query, per §4.4 step 3's "one SQL call for N releases" —
// a full-library updater run calls this once up front instead of issuing
// a GetReleaseMetahash/GetReleaseDatafileMtime pair per release.
func PreloadReleaseStates(q Queryer) (map[string]ReleaseState, error) {
	rows, err := q.Query("SELECT id, metahash, datafile_mtime FROM releases")
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	defer rows.Close()

	out := make(map[string]ReleaseState)
	for rows.Next() {
		var id string
		var s ReleaseState
		if err := rows.Scan(&id, &s.Metahash, &s.DatafileMtime); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out[id] = s
	}
	return out, rows.Err()
}

// PreloadTrackStates loads every cached track's release id, source mtime,
// and metahash in one query, keyed by track id, for the same reason as
// PreloadReleaseStates.
func PreloadTrackStates(q Queryer) (map[string]TrackState, error) {
	rows, err := q.Query("SELECT id, release_id, source_path, source_mtime, metahash FROM tracks")
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	defer rows.Close()

	out := make(map[string]TrackState)
	for rows.Next() {
		var id string
		var s TrackState
		if err := rows.Scan(&id, &s.ReleaseID, &s.SourcePath, &s.SourceMtime, &s.Metahash); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out[id] = s
	}
	return out, rows.Err()
}
