package collections

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
)

// CollageStore is the C5 API surface for collages, per §4.5.
type CollageStore struct {
	SourceDir string
	LocksDir  string
}

func (s *CollageStore) dir() string { return filepath.Join(s.SourceDir, "!collages") }

func (s *CollageStore) path(name string) string {
	return filepath.Join(s.dir(), name+".toml")
}

// List returns the names of every collage currently on disk, sorted.
func (s *CollageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names, nil
}

// Read loads a single collage's entries.
func (s *CollageStore) Read(name string) (rose.Collage, error) {
	var c rose.Collage
	if err := readTOML(s.path(name), &c); err != nil {
		if os.IsNotExist(err) {
			return c, roseerr.New(roseerr.CollageDoesNotExist, "collage %q does not exist", name)
		}
		return c, roseerr.Unexpected(err)
	}
	return c, nil
}

// Create makes a new, empty collage file, per §4.5.
func (s *CollageStore) Create(name string) error {
	return withLock(s.LocksDir, collageLockName(name), func() error {
		if _, err := os.Stat(s.path(name)); err == nil {
			return roseerr.New(roseerr.CollageAlreadyExists, "collage %q already exists", name)
		}
		if err := os.MkdirAll(s.dir(), 0o755); err != nil {
			return roseerr.Unexpected(err)
		}
		if err := writeTOML(s.path(name), &rose.Collage{}); err != nil {
			return roseerr.Unexpected(err)
		}
		return nil
	})
}

// Delete moves a collage (and its sibling cover art, if any) to trash.
func (s *CollageStore) Delete(name string) error {
	return withLock(s.LocksDir, collageLockName(name), func() error {
		path := s.path(name)
		if _, err := os.Stat(path); err != nil {
			return roseerr.New(roseerr.CollageDoesNotExist, "collage %q does not exist", name)
		}
		if err := moveToTrash(s.SourceDir, path); err != nil {
			return roseerr.Unexpected(err)
		}
		if sibling, ok := findSiblingCover(s.dir(), name); ok {
			if err := moveToTrash(s.SourceDir, sibling); err != nil {
				return roseerr.Unexpected(err)
			}
		}
		return nil
	})
}

// Rename renames a collage file and its sibling cover art, locking both
// names in a fixed order to avoid deadlocking against a concurrent reverse
// rename.
func (s *CollageStore) Rename(oldName, newName string) error {
	first, second := oldName, newName
	if second < first {
		first, second = second, first
	}
	return withLock(s.LocksDir, collageLockName(first), func() error {
		return withLock(s.LocksDir, collageLockName(second), func() error {
			oldPath, newPath := s.path(oldName), s.path(newName)
			if _, err := os.Stat(oldPath); err != nil {
				return roseerr.New(roseerr.CollageDoesNotExist, "collage %q does not exist", oldName)
			}
			if _, err := os.Stat(newPath); err == nil {
				return roseerr.New(roseerr.CollageAlreadyExists, "collage %q already exists", newName)
			}
			if err := os.Rename(oldPath, newPath); err != nil {
				return roseerr.Unexpected(err)
			}
			if sibling, ok := findSiblingCover(s.dir(), oldName); ok {
				ext := filepath.Ext(sibling)
				if err := os.Rename(sibling, filepath.Join(s.dir(), newName+ext)); err != nil {
					return roseerr.Unexpected(err)
				}
			}
			return nil
		})
	})
}

// AddRelease appends a release to the named collage, deduplicating by uuid.
func (s *CollageStore) AddRelease(name string, entry rose.CollageEntry) error {
	return withLock(s.LocksDir, collageLockName(name), func() error {
		c, err := s.readLocked(name)
		if err != nil {
			return err
		}
		for _, existing := range c.Releases {
			if existing.UUID == entry.UUID {
				return nil
			}
		}
		c.Releases = append(c.Releases, entry)
		return s.writeLocked(name, c)
	})
}

// RemoveRelease removes a release by uuid from the named collage.
func (s *CollageStore) RemoveRelease(name, uuid string) error {
	return withLock(s.LocksDir, collageLockName(name), func() error {
		c, err := s.readLocked(name)
		if err != nil {
			return err
		}
		filtered := c.Releases[:0]
		for _, e := range c.Releases {
			if e.UUID != uuid {
				filtered = append(filtered, e)
			}
		}
		c.Releases = filtered
		return s.writeLocked(name, c)
	})
}

// EditInEditor presents each entry's description_meta line to edit, via the
// caller-supplied editor function, then matches edited lines back to uuids
// by exact content match against the pre-edit lines. A line that no longer
// matches any known entry is rejected with DescriptionMismatch, per §4.5.
func (s *CollageStore) EditInEditor(name string, editor func([]string) ([]string, error)) error {
	return withLock(s.LocksDir, collageLockName(name), func() error {
		c, err := s.readLocked(name)
		if err != nil {
			return err
		}
		before := make([]string, len(c.Releases))
		byLine := make(map[string]rose.CollageEntry, len(c.Releases))
		for i, e := range c.Releases {
			before[i] = e.DescriptionMeta
			byLine[e.DescriptionMeta] = e
		}

		after, err := editor(before)
		if err != nil {
			return roseerr.Unexpected(err)
		}

		reordered := make([]rose.CollageEntry, 0, len(after))
		for _, line := range after {
			entry, ok := byLine[strings.TrimRight(line, "\n")]
			if !ok {
				return roseerr.New(roseerr.DescriptionMismatch, "line %q does not match any known release", line)
			}
			reordered = append(reordered, entry)
		}
		c.Releases = reordered
		return s.writeLocked(name, c)
	})
}

// Prune rewrites the collage file keeping only entries for which keep
// returns true, reporting whether anything was dropped. The cache
// updater's collage refresh (§4.4) uses this to drop entries pointing at
// releases no longer present in the cache.
func (s *CollageStore) Prune(name string, keep func(rose.CollageEntry) bool) (kept []rose.CollageEntry, changed bool, err error) {
	err = withLock(s.LocksDir, collageLockName(name), func() error {
		c, err := s.readLocked(name)
		if err != nil {
			return err
		}
		var filtered []rose.CollageEntry
		for _, e := range c.Releases {
			if keep(e) {
				filtered = append(filtered, e)
			} else {
				changed = true
			}
		}
		kept = filtered
		if !changed {
			return nil
		}
		c.Releases = filtered
		return s.writeLocked(name, c)
	})
	return kept, changed, err
}

func (s *CollageStore) readLocked(name string) (rose.Collage, error) {
	var c rose.Collage
	if err := readTOML(s.path(name), &c); err != nil {
		if os.IsNotExist(err) {
			return c, roseerr.New(roseerr.CollageDoesNotExist, "collage %q does not exist", name)
		}
		return c, roseerr.Unexpected(err)
	}
	return c, nil
}

func (s *CollageStore) writeLocked(name string, c rose.Collage) error {
	if err := writeTOML(s.path(name), &c); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

// findSiblingCover looks for <dir>/<stem>.<ext> where ext is one of a small
// set of common art extensions, returning its path if found.
func findSiblingCover(dir, stem string) (string, bool) {
	for _, ext := range []string{"jpg", "jpeg", "png"} {
		candidate := filepath.Join(dir, fmt.Sprintf("%s.%s", stem, ext))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
