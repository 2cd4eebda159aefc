// Package collections implements collages and playlists: TOML-backed
// collection files living under the music source directory, each
// mutation serialized by a named advisory lock (gofrs/flock, under
// config.LocksDir).
package collections

import (
	"github.com/azuline/rose-go/internal/lock"
)

func withLock(locksDir, name string, fn func() error) error {
	return lock.With(locksDir, name, fn)
}

func collageLockName(name string) string  { return lock.CollageKey(name) }
func playlistLockName(name string) string { return lock.PlaylistKey(name) }
