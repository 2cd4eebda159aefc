package rulesengine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/tags"
)

// CreateSingleRelease materializes a brand-new single-track release
// directory under Config.MusicSourceDir from an existing audio file,
// copying over any sibling cover art, then runs the updater on it and
// defaults it to not-new ("if it is new, why are you meddling with it?").
func (e *Engine) CreateSingleRelease(trackPath string) (releaseID string, err error) {
	if _, statErr := os.Stat(trackPath); statErr != nil {
		return "", roseerr.Unexpected(fmt.Errorf("create single: %w", statErr))
	}

	src, err := tags.Read(trackPath)
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(src.TrackTitle)
	if title == "" {
		title = "Unknown Title"
	}

	dirname := singleDirName(src, title)
	destDir := filepath.Join(e.Config.MusicSourceDir, dirname)
	for i := 2; ; i++ {
		if _, statErr := os.Stat(destDir); os.IsNotExist(statErr) {
			break
		}
		destDir = filepath.Join(e.Config.MusicSourceDir, fmt.Sprintf("%s [%d]", dirname, i))
	}
	if err := os.Mkdir(destDir, 0o755); err != nil {
		return "", roseerr.Unexpected(err)
	}

	destTrack := filepath.Join(destDir, "01. "+title+filepath.Ext(trackPath))
	if err := copyFile(trackPath, destTrack); err != nil {
		return "", err
	}
	if cover := findSiblingCoverArt(filepath.Dir(trackPath), e.Config.ValidArtExts); cover != "" {
		if err := copyFile(cover, filepath.Join(destDir, filepath.Base(cover))); err != nil {
			return "", err
		}
	}

	at, err := tags.Read(destTrack)
	if err != nil {
		return "", err
	}
	at.ReleaseTitle = title
	at.ReleaseType = rose.ReleaseTypeSingle
	at.ReleaseArtists = at.TrackArtists
	at.TrackNumber = "1"
	at.DiscNumber = "1"
	at.ID = ""
	at.ReleaseID = ""
	if err := at.Write(true); err != nil {
		return "", err
	}

	if e.Updater != nil {
		if err := e.Updater.UpdateReleases([]string{destDir}, false); err != nil {
			return "", err
		}
	}

	releaseID, err = releaseIDFromSidecar(destDir)
	if err != nil {
		return "", err
	}
	if e.Updater != nil {
		if err := e.Updater.ToggleReleaseNew(releaseID); err != nil {
			return "", err
		}
	}
	return releaseID, nil
}

func singleDirName(at tags.AudioTags, title string) string {
	names := make([]string, 0, len(at.TrackArtists.All()))
	for _, a := range at.TrackArtists.All() {
		names = append(names, a.Name)
	}
	artist := strings.Join(names, ", ")
	dirname := artist + " - "
	if !at.ReleaseDate.IsZero() {
		dirname += fmt.Sprintf("%d. ", at.ReleaseDate.Year)
	}
	return dirname + title
}

// findSiblingCoverArt looks for a file named cover, folder, art or front
// (a fixed list, not the configured cover_art_stems) with one of validExts
// beside the source track being extracted into a single.
func findSiblingCoverArt(dir string, validExts []string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, stem := range []string{"cover", "folder", "art", "front"} {
		for _, ext := range validExts {
			candidate := stem + "." + strings.ToLower(strings.TrimPrefix(ext, "."))
			if name, ok := names[candidate]; ok {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}

func releaseIDFromSidecar(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", roseerr.Unexpected(err)
	}
	id, _, ok := findSidecarID(dir, entries)
	if !ok {
		return "", roseerr.Unexpected(fmt.Errorf("no sidecar found in newly created single release %s", dir))
	}
	return id, nil
}

// findSidecarID is the rulesengine-local equivalent of updater's
// findSidecar, needed here only to recover the id the updater minted for
// the release just scanned.
func findSidecarID(dir string, entries []os.DirEntry) (id, path string, ok bool) {
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".rose.") && strings.HasSuffix(name, ".toml") {
			return strings.TrimSuffix(strings.TrimPrefix(name, ".rose."), ".toml"), filepath.Join(dir, name), true
		}
	}
	return "", "", false
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
