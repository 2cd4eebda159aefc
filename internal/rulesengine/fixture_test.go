package rulesengine

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/config"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
	"github.com/azuline/rose-go/internal/updater"
)

// buildMinimalFLAC writes a FLAC file carrying only a STREAMINFO block, no
// audio frames. Mirrors internal/tags's and internal/updater's own fixture
// builders; duplicated here since test helpers aren't exported across
// package boundaries.
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

	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write minimal flac: %v", err)
	}
}

func writeTrack(t *testing.T, path string, at tags.AudioTags) {
	t.Helper()
	buildMinimalFLAC(t, path, 44100, 44100*10)
	at.Path = path
	require.NoError(t, at.Write(true))
}

// testEngine wires an Engine to a fresh cache store and updater, backed by
// its own temp source/cache directories.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	sourceDir := t.TempDir()
	cacheDir := t.TempDir()

	s, err := store.Open(cacheDir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := &config.Config{
		MusicSourceDir: sourceDir,
		CacheDir:       cacheDir,
		MaxProc:        2,
		CoverArtStems:  []string{"cover", "folder"},
		ValidArtExts:   []string{"jpg", "png"},
	}
	u := updater.New(s, cfg)
	return New(s, cfg, u)
}

func onlyReleaseID(t *testing.T, paths map[string]string) string {
	t.Helper()
	require.Len(t, paths, 1)
	for id := range paths {
		return id
	}
	return ""
}
