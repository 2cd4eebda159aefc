package vfs

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
	"github.com/azuline/rose-go/internal/updater"
)

// buildMinimalFLAC writes just enough of a FLAC STREAMINFO block for
// internal/tags to read back sample rate, channel count, and duration; it
// carries no audio frames. Mirrors internal/updater's own test fixture.
func buildMinimalFLAC(t *testing.T, path string, sampleRate uint32, totalSamples uint64) {
	t.Helper()

	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	info[10] = byte(sampleRate >> 12)
	info[11] = byte(sampleRate >> 4)
	const channelsMinus1, bpsMinus1 = 1, 15
	info[12] = byte((sampleRate&0x0F)<<4) | (channelsMinus1 << 1) | (bpsMinus1 >> 4)
	info[13] = byte((bpsMinus1&0x0F)<<4) | byte((totalSamples>>32)&0x0F)
	info[14] = byte(totalSamples >> 24)
	info[15] = byte(totalSamples >> 16)
	info[16] = byte(totalSamples >> 8)
	info[17] = byte(totalSamples)

	var buf []byte
	buf = append(buf, "fLaC"...)
	header := []byte{0x80, 0, 0, byte(len(info))}
	buf = append(buf, header...)
	buf = append(buf, info...)

	require.NoError(t, os.WriteFile(path, buf, 0o600))
}

// fakeBridge is the Bridge test double the "no real FUSE mount" design
// note calls for: OpenHost/WriteHost/RemoveHost operate against a real
// temp directory (so resolveRelease's HostPath values are still
// meaningful paths), but nothing here ever mounts or talks to the kernel.
type fakeBridge struct {
	removed []string
}

func (b *fakeBridge) OpenHost(hostPath string, flags int, perm os.FileMode) (HostFile, error) {
	return os.OpenFile(hostPath, flags, perm)
}

func (b *fakeBridge) WriteHost(hostPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(hostPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(hostPath, data, 0o644)
}

func (b *fakeBridge) RemoveHost(hostPath string) error {
	b.removed = append(b.removed, hostPath)
	err := os.Remove(hostPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func newTestCore(t *testing.T) (*Core, *fakeBridge) {
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
	bridge := &fakeBridge{}
	return NewCore(s, cfg, u, bridge), bridge
}

// writeRelease creates a one-track release directory under sourceDir and
// scans it into the cache, returning the new release's id.
func writeRelease(t *testing.T, c *Core, releaseTitle, trackTitle string) string {
	t.Helper()
	dir := filepath.Join(c.Config.MusicSourceDir, releaseTitle)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeTestTrack(t, filepath.Join(dir, "01.flac"), tags.AudioTags{TrackTitle: trackTitle, ReleaseTitle: releaseTitle, TrackNumber: "1"})
	require.NoError(t, c.Updater.UpdateAll(false))

	paths, err := store.ListReleaseSourcePaths(c.Store.DB)
	require.NoError(t, err)
	for id, p := range paths {
		if p == dir {
			return id
		}
	}
	t.Fatalf("release %q not found after scan", releaseTitle)
	return ""
}

func writeTestTrack(t *testing.T, path string, at tags.AudioTags) {
	t.Helper()
	buildMinimalFLAC(t, path, 44100, 44100*5)
	at.Path = path
	require.NoError(t, at.Write(true))
}

func releaseByID(t *testing.T, c *Core, id string) rose.Release {
	t.Helper()
	r, ok, err := store.GetRelease(c.Store.DB, id)
	require.NoError(t, err)
	require.True(t, ok)
	return r
}
