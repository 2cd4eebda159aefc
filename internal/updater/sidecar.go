package updater

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
)

const sidecarPrefix = ".rose."
const sidecarSuffix = ".toml"

// findSidecar looks for a `.rose.<id>.toml` file among dir's entries,
// returning the embedded id and the file's full path.
func findSidecar(dir string, entries []os.DirEntry) (id, path string, ok bool) {
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, sidecarPrefix) || !strings.HasSuffix(name, sidecarSuffix) {
			continue
		}
		id = strings.TrimSuffix(strings.TrimPrefix(name, sidecarPrefix), sidecarSuffix)
		if id == "" {
			continue
		}
		return id, filepath.Join(dir, name), true
	}
	return "", "", false
}

// mintSidecar births a new release: a fresh UUID and a sidecar file marking
// it new, per §3's "a release is born when the cache updater sees a
// directory with supported audio files and no sidecar."
func mintSidecar(dir string) (id, path string, sc rose.Sidecar, err error) {
	id = uuid.NewString()
	path = filepath.Join(dir, sidecarPrefix+id+sidecarSuffix)
	sc = rose.Sidecar{New: true, AddedAt: time.Now().UTC().Format(time.RFC3339)}
	if err := writeSidecar(path, sc); err != nil {
		return "", "", rose.Sidecar{}, err
	}
	return id, path, sc, nil
}

// readSidecar parses a sidecar file, defaulting a missing `new` to true and
// a missing `added_at` to now, per §6's sidecar format note.
func readSidecar(path string) (rose.Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rose.Sidecar{}, roseerr.Unexpected(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return rose.Sidecar{}, roseerr.Unexpected(err)
	}
	sc := rose.Sidecar{New: true, AddedAt: time.Now().UTC().Format(time.RFC3339)}
	if v, ok := raw["new"].(bool); ok {
		sc.New = v
	}
	if v, ok := raw["added_at"].(string); ok && v != "" {
		sc.AddedAt = v
	}
	return sc, nil
}

func writeSidecar(path string, sc rose.Sidecar) error {
	data, err := toml.Marshal(sc)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}

// sidecarMtimeKey renders a file's mtime as the string stored in
// releases.datafile_mtime, comparable byte-for-byte across scans.
func sidecarMtimeKey(info os.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
