// Package updater implements the cache updater (component C4): the
// incremental per-release scan of §4.4 that keeps the cache store in sync
// with the source tree's audio files and sidecar datafiles, fanned out
// over a worker pool, plus the eviction sweep and collage/playlist
// refresh, which are separate entry points that UpdateAll does not call.
package updater

import (
	l "github.com/sirupsen/logrus"

	"github.com/azuline/rose-go/internal/collections"
	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/store"
)

var log = l.WithFields(l.Fields{"component": "updater"})

// Updater ties the cache store to the source tree described by cfg.
type Updater struct {
	Store  *store.Store
	Config *config.Config
}

// New constructs an Updater over an already-opened store.
func New(s *store.Store, cfg *config.Config) *Updater {
	return &Updater{Store: s, Config: cfg}
}

func (u *Updater) collageStore() *collections.CollageStore {
	return &collections.CollageStore{SourceDir: u.Config.MusicSourceDir, LocksDir: u.Config.LocksDir()}
}

func (u *Updater) playlistStore() *collections.PlaylistStore {
	return &collections.PlaylistStore{
		SourceDir:    u.Config.MusicSourceDir,
		LocksDir:     u.Config.LocksDir(),
		ValidArtExts: u.Config.ValidArtExts,
	}
}

func unexpected(err error) error {
	return roseerr.Unexpected(err)
}
