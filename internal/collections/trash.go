package collections

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// moveToTrash moves path into <source>/.trash, per §4.5/§4.8's "delete (to
// trash)" requirement. No library in the corpus covers desktop-trash
// semantics (this is a headless daemon, not a desktop-integrated app), so a
// plain rename into one flat holding directory, with a " [2]", " [3]", …
// suffix on name collisions, is the straightforward portable choice;
// justified in DESIGN.md.
func moveToTrash(sourceDir, path string) error {
	trashDir := filepath.Join(sourceDir, ".trash")
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return fmt.Errorf("create trash dir: %w", err)
	}

	base := filepath.Base(path)
	dest := filepath.Join(trashDir, base)
	for i := 2; fileExists(dest); i++ {
		dest = filepath.Join(trashDir, base+" ["+strconv.Itoa(i)+"]")
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move %s to trash: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// trashStamp formats the current UTC time as a compact timestamp. Nothing
// in the module calls it: moveToTrash uses a flat, collision-resolved
// directory rather than timestamped subdirectories.
func trashStamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}
