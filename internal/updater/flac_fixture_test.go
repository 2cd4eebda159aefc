package updater

import (
	"encoding/binary"
	"os"
	"testing"
)

// buildMinimalFLAC writes a FLAC file carrying only a STREAMINFO block, no
// audio frames — enough for go-flac's ParseFile/Save to attach a
// VORBIS_COMMENT block via AudioTags.Write. Mirrors internal/tags's own
// fixture builder; duplicated here since test helpers aren't exported
// across package boundaries.
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
