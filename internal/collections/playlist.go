package collections

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
)

// PlaylistStore is the C5 API surface for playlists, per §4.5.
type PlaylistStore struct {
	SourceDir    string
	LocksDir     string
	ValidArtExts []string
}

func (s *PlaylistStore) dir() string { return filepath.Join(s.SourceDir, "!playlists") }

func (s *PlaylistStore) path(name string) string {
	return filepath.Join(s.dir(), name+".toml")
}

func (s *PlaylistStore) isValidArtExt(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range s.ValidArtExts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// List returns every playlist name currently on disk, sorted.
func (s *PlaylistStore) List() ([]string, error) {
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

// Read loads a single playlist's entries.
func (s *PlaylistStore) Read(name string) (rose.Playlist, error) {
	var p rose.Playlist
	if err := readTOML(s.path(name), &p); err != nil {
		if os.IsNotExist(err) {
			return p, roseerr.New(roseerr.PlaylistDoesNotExist, "playlist %q does not exist", name)
		}
		return p, roseerr.Unexpected(err)
	}
	return p, nil
}

// Create makes a new, empty playlist file.
func (s *PlaylistStore) Create(name string) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		if _, err := os.Stat(s.path(name)); err == nil {
			return roseerr.New(roseerr.PlaylistAlreadyExists, "playlist %q already exists", name)
		}
		if err := os.MkdirAll(s.dir(), 0o755); err != nil {
			return roseerr.Unexpected(err)
		}
		return writeTOML(s.path(name), &rose.Playlist{})
	})
}

// Delete moves a playlist (and its sibling cover art, if any) to trash.
func (s *PlaylistStore) Delete(name string) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		path := s.path(name)
		if _, err := os.Stat(path); err != nil {
			return roseerr.New(roseerr.PlaylistDoesNotExist, "playlist %q does not exist", name)
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

// Rename renames a playlist file and its sibling cover art.
func (s *PlaylistStore) Rename(oldName, newName string) error {
	first, second := oldName, newName
	if second < first {
		first, second = second, first
	}
	return withLock(s.LocksDir, playlistLockName(first), func() error {
		return withLock(s.LocksDir, playlistLockName(second), func() error {
			oldPath, newPath := s.path(oldName), s.path(newName)
			if _, err := os.Stat(oldPath); err != nil {
				return roseerr.New(roseerr.PlaylistDoesNotExist, "playlist %q does not exist", oldName)
			}
			if _, err := os.Stat(newPath); err == nil {
				return roseerr.New(roseerr.PlaylistAlreadyExists, "playlist %q already exists", newName)
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

// AddTrack appends a track to the named playlist, deduplicating by uuid.
func (s *PlaylistStore) AddTrack(name string, entry rose.PlaylistEntry) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		p, err := s.readLocked(name)
		if err != nil {
			return err
		}
		for _, existing := range p.Tracks {
			if existing.UUID == entry.UUID {
				return nil
			}
		}
		p.Tracks = append(p.Tracks, entry)
		return s.writeLocked(name, p)
	})
}

// RemoveTrack removes a track by uuid from the named playlist.
func (s *PlaylistStore) RemoveTrack(name, uuid string) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		p, err := s.readLocked(name)
		if err != nil {
			return err
		}
		filtered := p.Tracks[:0]
		for _, e := range p.Tracks {
			if e.UUID != uuid {
				filtered = append(filtered, e)
			}
		}
		p.Tracks = filtered
		return s.writeLocked(name, p)
	})
}

// EditInEditor mirrors CollageStore.EditInEditor for playlist tracks.
func (s *PlaylistStore) EditInEditor(name string, editor func([]string) ([]string, error)) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		p, err := s.readLocked(name)
		if err != nil {
			return err
		}
		before := make([]string, len(p.Tracks))
		byLine := make(map[string]rose.PlaylistEntry, len(p.Tracks))
		for i, e := range p.Tracks {
			before[i] = e.DescriptionMeta
			byLine[e.DescriptionMeta] = e
		}

		after, err := editor(before)
		if err != nil {
			return roseerr.Unexpected(err)
		}

		reordered := make([]rose.PlaylistEntry, 0, len(after))
		for _, line := range after {
			entry, ok := byLine[strings.TrimRight(line, "\n")]
			if !ok {
				return roseerr.New(roseerr.DescriptionMismatch, "line %q does not match any known track", line)
			}
			reordered = append(reordered, entry)
		}
		p.Tracks = reordered
		return s.writeLocked(name, p)
	})
}

// SetCover copies srcImage (an art file whose extension must be one of the
// configured valid_art_exts) in as the playlist's cover, replacing any
// existing one.
func (s *PlaylistStore) SetCover(name, srcImage string) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		if _, err := os.Stat(s.path(name)); err != nil {
			return roseerr.New(roseerr.PlaylistDoesNotExist, "playlist %q does not exist", name)
		}
		ext := strings.TrimPrefix(filepath.Ext(srcImage), ".")
		if !s.isValidArtExt(ext) {
			return roseerr.New(roseerr.InvalidCoverArtFile, "unsupported cover art extension %q", ext)
		}
		if sibling, ok := findSiblingCover(s.dir(), name); ok {
			if err := os.Remove(sibling); err != nil {
				return roseerr.Unexpected(err)
			}
		}
		return copyFile(srcImage, filepath.Join(s.dir(), name+"."+ext))
	})
}

// ClearCover removes the playlist's cover art, if any.
func (s *PlaylistStore) ClearCover(name string) error {
	return withLock(s.LocksDir, playlistLockName(name), func() error {
		sibling, ok := findSiblingCover(s.dir(), name)
		if !ok {
			return nil
		}
		return os.Remove(sibling)
	})
}

// Prune mirrors CollageStore.Prune for playlist track entries.
func (s *PlaylistStore) Prune(name string, keep func(rose.PlaylistEntry) bool) (kept []rose.PlaylistEntry, changed bool, err error) {
	err = withLock(s.LocksDir, playlistLockName(name), func() error {
		p, err := s.readLocked(name)
		if err != nil {
			return err
		}
		var filtered []rose.PlaylistEntry
		for _, e := range p.Tracks {
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
		p.Tracks = filtered
		return s.writeLocked(name, p)
	})
	return kept, changed, err
}

func (s *PlaylistStore) readLocked(name string) (rose.Playlist, error) {
	var p rose.Playlist
	if err := readTOML(s.path(name), &p); err != nil {
		if os.IsNotExist(err) {
			return p, roseerr.New(roseerr.PlaylistDoesNotExist, "playlist %q does not exist", name)
		}
		return p, roseerr.Unexpected(err)
	}
	return p, nil
}

func (s *PlaylistStore) writeLocked(name string, p rose.Playlist) error {
	if err := writeTOML(s.path(name), &p); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}
