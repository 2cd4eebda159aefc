package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/updater"
)

func TestClassifyRoutesByPathPrefix(t *testing.T) {
	source := "/music"

	e, ok := classify(source, filepath.Join(source, "!collages", "Favorites.toml"))
	require.True(t, ok)
	require.Equal(t, kindCollage, e.kind)
	require.Equal(t, "Favorites", e.name)

	e, ok = classify(source, filepath.Join(source, "!playlists", "Mix.toml"))
	require.True(t, ok)
	require.Equal(t, kindPlaylist, e.kind)
	require.Equal(t, "Mix", e.name)

	e, ok = classify(source, filepath.Join(source, "Some Album", "01.flac"))
	require.True(t, ok)
	require.Equal(t, kindRelease, e.kind)
	require.Equal(t, "Some Album", e.name)
}

func TestClassifyIgnoresSourceRootAndTrash(t *testing.T) {
	source := "/music"

	_, ok := classify(source, source)
	require.False(t, ok)

	_, ok = classify(source, filepath.Join(source, ".trash", "Old Album"))
	require.False(t, ok)
}

func TestClassifyIgnoresNonTOMLFilesUnderCollections(t *testing.T) {
	source := "/music"
	_, ok := classify(source, filepath.Join(source, "!collages", ".DS_Store"))
	require.False(t, ok)
}

func TestDebouncedCollapsesRepeatsWithinWindow(t *testing.T) {
	w := &Watcher{debounce: make(map[string]time.Time)}
	e := event{kind: kindRelease, name: "Some Album"}

	require.False(t, w.debounced(e))
	require.True(t, w.debounced(e))
}

func newTestWatcher(t *testing.T) (*Watcher, *config.Config, *store.Store) {
	t.Helper()
	sourceDir := t.TempDir()
	cacheDir := t.TempDir()

	s, err := store.Open(cacheDir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := &config.Config{
		MusicSourceDir:   sourceDir,
		CacheDir:         cacheDir,
		MaxProc:          2,
		MaxFilenameBytes: 180,
		CoverArtStems:    []string{"cover", "folder"},
		ValidArtExts:     []string{"jpg", "jpeg", "png"},
	}
	u := updater.New(s, cfg)
	w, err := New(u, cfg)
	require.NoError(t, err)
	return w, cfg, s
}

// TestRunPicksUpNewReleaseDirectory exercises the full producer/processor
// pipeline against a real directory tree and a real fsnotify watch (no
// FUSE involved at all: this package never touches the VFS bridge). It
// waits past the 2s release delay, so it is deliberately the one slow test
// in this package.
func TestRunPicksUpNewReleaseDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fsnotify-timed test in short mode")
	}
	w, cfg, s := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond) // let addRecursive finish before writing

	dir := filepath.Join(cfg.MusicSourceDir, "New Album")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	buildMinimalFLAC(t, filepath.Join(dir, "01.flac"))

	require.Eventually(t, func() bool {
		paths, err := store.ListReleaseSourcePaths(s.DB)
		return err == nil && len(paths) == 1
	}, 4*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

// buildMinimalFLAC writes just enough of a FLAC STREAMINFO block for
// internal/tags to accept the file during a scan.
func buildMinimalFLAC(t *testing.T, path string) {
	t.Helper()
	info := make([]byte, 34)
	info[10] = 0x0a
	info[11] = 0xc4
	info[12] = 0x42
	info[13] = 0xf0

	var buf []byte
	buf = append(buf, "fLaC"...)
	buf = append(buf, []byte{0x80, 0, 0, byte(len(info))}...)
	buf = append(buf, info...)
	require.NoError(t, os.WriteFile(path, buf, 0o600))
}
