package updater

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/azuline/rose-go/internal/lock"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

// scanRelease runs the §4.4 per-release algorithm against dir, using snap
// as the "one SQL call for N releases" batch-loaded prior state.
func (u *Updater) scanRelease(dir string, force bool, snap *snapshot) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return unexpected(err)
	}

	id, sidecarPath, hasSidecar := findSidecar(dir, entries)
	isNewRelease := false
	if !hasSidecar {
		if len(discoverAudioFiles(dir, entries)) == 0 {
			return nil // not a release directory
		}
		var err error
		id, sidecarPath, _, err = mintSidecar(dir)
		if err != nil {
			return err
		}
		isNewRelease = true
		log.WithField("release_id", id).WithField("path", dir).Info("minted sidecar for new release")
	}

	return lock.With(u.Config.LocksDir(), lock.ReleaseKey(id), func() error {
		return u.commitRelease(dir, id, sidecarPath, entries, force, snap, isNewRelease)
	})
}

func (u *Updater) commitRelease(
	dir, id, sidecarPath string,
	entries []os.DirEntry,
	force bool,
	snap *snapshot,
	isNewRelease bool,
) error {
	sc, err := readSidecar(sidecarPath)
	if err != nil {
		return err
	}
	sidecarInfo, err := os.Stat(sidecarPath)
	if err != nil {
		return unexpected(err)
	}
	datafileMtime := sidecarMtimeKey(sidecarInfo)

	priorState, hadPrior := snap.releases[id]
	sidecarChanged := force || isNewRelease || !hadPrior || priorState.DatafileMtime != datafileMtime

	audioPaths := discoverAudioFiles(dir, entries)
	tracks := make([]rose.Track, 0, len(audioPaths))
	seenTrackIDs := make(map[string]bool, len(audioPaths))
	freshTrackIDs := make(map[string]bool, len(audioPaths))
	var releaseSeed *tags.AudioTags

	for _, path := range audioPaths {
		fi, err := os.Stat(path)
		if err != nil {
			return unexpected(err)
		}
		mtime := sidecarMtimeKey(fi)

		priorTrackID, hadTrack := snap.trackIDBySourcePath(id, path)
		if hadTrack && !force {
			if prior := snap.tracks[priorTrackID]; prior.SourceMtime == mtime {
				t, ok, err := store.GetTrack(u.Store.DB, priorTrackID)
				if err != nil {
					return err
				}
				if ok {
					tracks = append(tracks, t)
					seenTrackIDs[t.ID] = true
					continue
				}
			}
		}

		at, err := tags.Read(path)
		if err != nil {
			return err
		}
		if err := u.injectIDsIfNeeded(&at, id); err != nil {
			return err
		}
		if releaseSeed == nil {
			seed := at
			releaseSeed = &seed
		}

		t := rose.Track{
			ID:              at.ID,
			ReleaseID:       id,
			SourcePath:      path,
			SourceMtime:     mtime,
			TrackTitle:      at.TrackTitle,
			TrackNumber:     at.TrackNumber,
			TrackTotal:      at.TrackTotal,
			DiscNumber:      at.DiscNumber,
			DurationSeconds: at.DurationSeconds,
			TrackArtists:    at.TrackArtists,
		}
		t.Metahash = rose.TrackMetahash(t)
		tracks = append(tracks, t)
		seenTrackIDs[t.ID] = true
		freshTrackIDs[t.ID] = true
	}

	var priorRelease rose.Release
	if hadPrior {
		if full, ok, err := store.GetRelease(u.Store.DB, id); err != nil {
			return err
		} else if ok {
			priorRelease = full
		}
	}

	r := priorRelease
	if sidecarChanged || releaseSeed != nil || !hadPrior {
		r = aggregateRelease(id, dir, sc, releaseSeed, priorRelease, tracks)
	}
	r.DatafileMtime = datafileMtime
	r.CoverImagePath = findCoverImagePath(dir, entries, u.Config.CoverArtStems, u.Config.ValidArtExts)

	newHash := rose.ReleaseMetahash(r)
	releaseRowChanged := force || !hadPrior || priorState.Metahash != newHash

	var staleTrackIDs []string
	for _, priorID := range snap.tracksByRelease[id] {
		if !seenTrackIDs[priorID] {
			staleTrackIDs = append(staleTrackIDs, priorID)
		}
	}

	if !releaseRowChanged && len(freshTrackIDs) == 0 && len(staleTrackIDs) == 0 {
		return nil // metahash unchanged and nothing else to reconcile: skip all writes
	}

	r.Metahash = newHash
	return u.Store.WithTx(func(tx *sql.Tx) error {
		if releaseRowChanged {
			if err := store.UpsertRelease(tx, r); err != nil {
				return err
			}
		}
		for _, t := range tracks {
			if !freshTrackIDs[t.ID] {
				continue
			}
			if err := store.UpsertTrack(tx, t, r); err != nil {
				return err
			}
		}
		for _, staleID := range staleTrackIDs {
			if err := store.DeleteTrack(tx, staleID); err != nil {
				return err
			}
		}
		return nil
	})
}

// injectIDsIfNeeded implements §4.4's "ID injection": a track missing an id,
// or whose release_id doesn't match the containing sidecar, gets the
// correct ids written back through AudioTags.Write(validate=false) — the
// only source-tree mutation the updater performs during normal operation.
func (u *Updater) injectIDsIfNeeded(at *tags.AudioTags, releaseID string) error {
	if at.ID != "" && at.ReleaseID == releaseID {
		return nil
	}
	if at.ID == "" {
		at.ID = uuid.NewString()
	}
	at.ReleaseID = releaseID
	return at.Write(false)
}

// aggregateRelease re-derives release-level fields from whichever tracks
// were freshly read this scan (seed), falling back to the prior cached
// release for any field a reused track can't supply, per §4.4 step 5's
// "re-aggregate release-level fields from the tracks."
func aggregateRelease(id, dir string, sc rose.Sidecar, seed *tags.AudioTags, prior rose.Release, tracks []rose.Track) rose.Release {
	r := rose.Release{
		ID:         id,
		SourcePath: dir,
		AddedAt:    sc.AddedAt,
		New:        sc.New,
	}
	if seed != nil {
		r.ReleaseTitle = seed.ReleaseTitle
		r.ReleaseType = seed.ReleaseType
		r.ReleaseDate = seed.ReleaseDate
		r.OriginalDate = seed.OriginalDate
		r.CompositionDate = seed.CompositionDate
		r.Edition = seed.Edition
		r.CatalogNumber = seed.CatalogNumber
		r.Genres = rose.DedupStrings(seed.Genres)
		r.SecondaryGenres = rose.DedupStrings(seed.SecondaryGenres)
		r.Descriptors = rose.DedupStrings(seed.Descriptors)
		r.Labels = rose.DedupStrings(seed.Labels)
		r.ReleaseArtists = seed.ReleaseArtists
	} else {
		r.ReleaseTitle = prior.ReleaseTitle
		r.ReleaseType = prior.ReleaseType
		r.ReleaseDate = prior.ReleaseDate
		r.OriginalDate = prior.OriginalDate
		r.CompositionDate = prior.CompositionDate
		r.Edition = prior.Edition
		r.CatalogNumber = prior.CatalogNumber
		r.Genres = prior.Genres
		r.SecondaryGenres = prior.SecondaryGenres
		r.Descriptors = prior.Descriptors
		r.Labels = prior.Labels
		r.ReleaseArtists = prior.ReleaseArtists
	}

	discTotal := 0
	for _, t := range tracks {
		if n, err := strconv.Atoi(t.DiscNumber); err == nil && n > discTotal {
			discTotal = n
		}
	}
	r.DiscTotal = discTotal
	r.ParentGenres = rose.ParentGenres(r.Genres)
	r.ParentSecondaryGenres = rose.ParentGenres(r.SecondaryGenres)
	return r
}

// discoverAudioFiles lists the supported audio files directly inside dir,
// sorted for deterministic scan order.
func discoverAudioFiles(dir string, entries []os.DirEntry) []string {
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !tags.IsMusicFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths
}
