package updater

import "github.com/azuline/rose-go/internal/store"

// snapshot is the "one SQL call for N releases" batch load of §4.4 step 3:
// every cached release and track's comparison fields, loaded once per
// top-level updater call and then read from memory as each release is
// scanned (in parallel, across the worker pool).
type snapshot struct {
	releases        map[string]store.ReleaseState
	tracks          map[string]store.TrackState
	tracksByRelease map[string][]string
}

func loadSnapshot(q store.Queryer) (*snapshot, error) {
	releases, err := store.PreloadReleaseStates(q)
	if err != nil {
		return nil, err
	}
	tracks, err := store.PreloadTrackStates(q)
	if err != nil {
		return nil, err
	}
	byRelease := make(map[string][]string, len(releases))
	for id, t := range tracks {
		byRelease[t.ReleaseID] = append(byRelease[t.ReleaseID], id)
	}
	return &snapshot{releases: releases, tracks: tracks, tracksByRelease: byRelease}, nil
}

// trackIDBySourcePath finds a previously cached track id under releaseID
// whose source_path matches path, so a rescanned file can be matched back
// to its prior row without a query.
func (s *snapshot) trackIDBySourcePath(releaseID, path string) (string, bool) {
	for _, id := range s.tracksByRelease[releaseID] {
		if s.tracks[id].SourcePath == path {
			return id, true
		}
	}
	return "", false
}
