package rulesengine

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/azuline/rose-go/internal/roseerr"
)

// readSidecarNew reads a release's `.rose.<id>.toml` sidecar and returns
// its `new` flag, per §4.6 step 3 ("the new field is read from the
// sidecar"). A missing `new` key defaults to true, per §6.
func readSidecarNew(sourcePath, releaseID string) (bool, error) {
	path := filepath.Join(sourcePath, ".rose."+releaseID+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return false, roseerr.Unexpected(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false, roseerr.Unexpected(err)
	}
	if v, ok := raw["new"].(bool); ok {
		return v, nil
	}
	return true, nil
}

// writeSidecarNew rewrites the sidecar's `new` key, preserving `added_at`.
func writeSidecarNew(sourcePath, releaseID string, newFlag bool) error {
	path := filepath.Join(sourcePath, ".rose."+releaseID+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return roseerr.Unexpected(err)
	}
	raw["new"] = newFlag
	out, err := toml.Marshal(raw)
	if err != nil {
		return roseerr.Unexpected(err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}
