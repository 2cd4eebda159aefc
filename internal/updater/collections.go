package updater

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
)

// RefreshCollage implements §4.4's "collage/playlist refresh": read the
// TOML file, drop entries pointing at missing releases (rewriting the file
// without them), then upsert the cache rows.
func (u *Updater) RefreshCollage(name string) error {
	knownReleases, err := store.ListReleaseSourcePaths(u.Store.DB)
	if err != nil {
		return err
	}

	kept, _, err := u.collageStore().Prune(name, func(e rose.CollageEntry) bool {
		_, ok := knownReleases[e.UUID]
		return ok
	})
	if err != nil {
		return err
	}

	return u.Store.WithTx(func(tx *sql.Tx) error {
		return store.ReplaceCollageRows(tx, name, kept, releaseIDSet(knownReleases))
	})
}

// RefreshPlaylist mirrors RefreshCollage for playlists.
func (u *Updater) RefreshPlaylist(name string) error {
	knownTracks, err := store.PreloadTrackStates(u.Store.DB)
	if err != nil {
		return err
	}

	kept, _, err := u.playlistStore().Prune(name, func(e rose.PlaylistEntry) bool {
		_, ok := knownTracks[e.UUID]
		return ok
	})
	if err != nil {
		return err
	}

	coverPath := u.findPlaylistCoverPath(name)
	return u.Store.WithTx(func(tx *sql.Tx) error {
		return store.ReplacePlaylistRows(tx, name, coverPath, kept, trackIDSet(knownTracks))
	})
}

// findPlaylistCoverPath looks for <source>/!playlists/<name>.<ext>, the
// sibling cover art convention PlaylistStore.SetCover writes under.
func (u *Updater) findPlaylistCoverPath(name string) string {
	dir := filepath.Join(u.Config.MusicSourceDir, "!playlists")
	for _, ext := range u.Config.ValidArtExts {
		candidate := filepath.Join(dir, name+"."+strings.TrimPrefix(ext, "."))
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// EvictNonexistentReleases drops every cached release whose source
// directory is gone from disk, per §4.4's "evict nonexistent releases".
func (u *Updater) EvictNonexistentReleases() error {
	paths, err := store.ListReleaseSourcePaths(u.Store.DB)
	if err != nil {
		return err
	}
	var gone []string
	for id, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			gone = append(gone, id)
		}
	}
	if len(gone) == 0 {
		return nil
	}
	return u.Store.WithTx(func(tx *sql.Tx) error {
		for _, id := range gone {
			if err := store.DeleteRelease(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// EvictNonexistentCollages drops cached collages whose TOML file no longer
// exists under <source>/!collages/.
func (u *Updater) EvictNonexistentCollages() error {
	cached, err := store.ListCollageNames(u.Store.DB)
	if err != nil {
		return err
	}
	onDisk, err := u.collageStore().List()
	if err != nil {
		return err
	}
	gone := diff(cached, onDisk)
	if len(gone) == 0 {
		return nil
	}
	return u.Store.WithTx(func(tx *sql.Tx) error {
		for _, name := range gone {
			if err := store.DeleteCollage(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// EvictNonexistentPlaylists mirrors EvictNonexistentCollages for playlists.
func (u *Updater) EvictNonexistentPlaylists() error {
	cached, err := store.ListPlaylistNames(u.Store.DB)
	if err != nil {
		return err
	}
	onDisk, err := u.playlistStore().List()
	if err != nil {
		return err
	}
	gone := diff(cached, onDisk)
	if len(gone) == 0 {
		return nil
	}
	return u.Store.WithTx(func(tx *sql.Tx) error {
		for _, name := range gone {
			if err := store.DeletePlaylist(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func releaseIDSet(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for id := range m {
		out[id] = true
	}
	return out
}

func trackIDSet(m map[string]store.TrackState) map[string]bool {
	out := make(map[string]bool, len(m))
	for id := range m {
		out[id] = true
	}
	return out
}

// diff returns the elements of cached that aren't present in onDisk.
func diff(cached, onDisk []string) []string {
	present := make(map[string]bool, len(onDisk))
	for _, n := range onDisk {
		present[n] = true
	}
	var out []string
	for _, n := range cached {
		if !present[n] {
			out = append(out, n)
		}
	}
	return out
}
