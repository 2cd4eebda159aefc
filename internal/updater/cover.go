package updater

import (
	"os"
	"path/filepath"
	"strings"
)

// findCoverImagePath returns the first entry in dir whose name is one of
// the configured cover stems paired with one of the configured art
// extensions, per §3's release.cover_image_path definition — stems take
// priority over extensions, mirroring the order configured.
func findCoverImagePath(dir string, entries []os.DirEntry, stems, exts []string) string {
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, stem := range stems {
		for _, ext := range exts {
			candidate := strings.ToLower(stem) + "." + strings.ToLower(strings.TrimPrefix(ext, "."))
			if name, ok := names[candidate]; ok {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}
