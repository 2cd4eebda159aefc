package updater

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
)

// UpdateReleases runs the §4.4 algorithm over an explicit set of release
// directories, fanned out over a worker pool sized by Config.MaxProc — the
// "incremental update of those" mode of §4.4's opening list.
func (u *Updater) UpdateReleases(dirs []string, force bool) error {
	snap, err := loadSnapshot(u.Store.DB)
	if err != nil {
		return err
	}
	return u.scanReleasesParallel(dirs, force, snap)
}

// UpdateAll enumerates Config.MusicSourceDir and sweeps every release
// directory found there, skipping !collages, !playlists, and any
// configured ignore_release_directories entry.
func (u *Updater) UpdateAll(force bool) error {
	dirs, err := u.discoverReleaseDirs()
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(u.Store.DB)
	if err != nil {
		return err
	}
	return u.scanReleasesParallel(dirs, force, snap)
}

func (u *Updater) discoverReleaseDirs() ([]string, error) {
	entries, err := os.ReadDir(u.Config.MusicSourceDir)
	if err != nil {
		return nil, unexpected(err)
	}
	ignore := make(map[string]bool, len(u.Config.IgnoreReleaseDirectories))
	for _, name := range u.Config.IgnoreReleaseDirectories {
		ignore[name] = true
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "!collages" || name == "!playlists" || ignore[name] {
			continue
		}
		dirs = append(dirs, filepath.Join(u.Config.MusicSourceDir, name))
	}
	sort.Strings(dirs)
	return dirs, nil
}

// scanReleasesParallel fans out scanRelease over dirs using numWorkers
// goroutines pulling off a shared channel: a work channel, a fixed worker
// count, and a WaitGroup closing the completion signal. Correctness across
// releases needs no barrier beyond each release's own advisory lock, so
// results are simply collected as errors.
func (u *Updater) scanReleasesParallel(dirs []string, force bool, snap *snapshot) error {
	numWorkers := u.Config.MaxProc
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(dirs) {
		numWorkers = len(dirs)
	}
	if numWorkers == 0 {
		return nil
	}

	workCh := make(chan string, len(dirs))
	for _, d := range dirs {
		workCh <- d
	}
	close(workCh)

	var failed atomic.Int64
	var firstErr error
	var errMu sync.Mutex

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dir := range workCh {
				if err := u.scanRelease(dir, force, snap); err != nil {
					failed.Add(1)
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					log.WithField("path", dir).WithError(err).Error("scan release failed")
				}
			}
		}()
	}
	wg.Wait()

	if failed.Load() > 0 {
		return firstErr
	}
	return nil
}
