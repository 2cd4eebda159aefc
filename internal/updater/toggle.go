package updater

import (
	"os"
	"path/filepath"

	"github.com/azuline/rose-go/internal/lock"
	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/store"
)

// ToggleReleaseNew flips the sidecar `new` boolean for a release and
// performs a targeted refresh of just that release — the supplemented
// toggle_release_new behavior referenced by scenario S1.
func (u *Updater) ToggleReleaseNew(releaseID string) error {
	r, ok, err := store.GetRelease(u.Store.DB, releaseID)
	if err != nil {
		return err
	}
	if !ok {
		return roseerr.New(roseerr.ReleaseDoesNotExist, "release %q does not exist", releaseID)
	}

	return lock.With(u.Config.LocksDir(), lock.ReleaseKey(releaseID), func() error {
		sidecarPath := filepath.Join(r.SourcePath, sidecarPrefix+releaseID+sidecarSuffix)
		sc, err := readSidecar(sidecarPath)
		if err != nil {
			return err
		}
		sc.New = !sc.New
		if err := writeSidecar(sidecarPath, sc); err != nil {
			return err
		}

		entries, err := os.ReadDir(r.SourcePath)
		if err != nil {
			return unexpected(err)
		}
		snap, err := loadSnapshot(u.Store.DB)
		if err != nil {
			return err
		}
		return u.commitRelease(r.SourcePath, releaseID, sidecarPath, entries, false, snap, false)
	})
}
