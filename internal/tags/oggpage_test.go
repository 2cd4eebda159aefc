package tags

import (
	"bytes"
	"testing"
)

func buildTestPage(serial uint32, seq uint32, granule uint64, segments [][]byte, lastComplete bool) oggPage {
	return oggPage{
		Version:             0,
		SerialNumber:        serial,
		SequenceNumber:      seq,
		GranulePos:          granule,
		Segments:            segments,
		LastSegmentComplete: lastComplete,
	}
}

func TestOggPageRoundTripSinglePacket(t *testing.T) {
	pages := []oggPage{
		buildTestPage(1, 0, 0, [][]byte{[]byte("OpusHead-packet")}, true),
		buildTestPage(1, 1, 0, [][]byte{[]byte("OpusTags-packet")}, true),
	}
	data := serializeOggPages(pages)

	got, err := parseOggPages(data)
	if err != nil {
		t.Fatalf("parseOggPages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pages, want 2", len(got))
	}
	if string(got[0].Segments[0]) != "OpusHead-packet" {
		t.Errorf("page 0 segment = %q", got[0].Segments[0])
	}
	if string(got[1].Segments[0]) != "OpusTags-packet" {
		t.Errorf("page 1 segment = %q", got[1].Segments[0])
	}
	if !got[0].LastSegmentComplete || !got[1].LastSegmentComplete {
		t.Error("expected both pages' last segment marked complete")
	}
}

func TestOggPageLacingExactMultipleOf255(t *testing.T) {
	// A 255-byte packet must still terminate with a trailing zero-length
	// lacing value, or a reader would treat it as continuing.
	packet := bytes.Repeat([]byte{0x42}, 255)
	pages := []oggPage{buildTestPage(1, 0, 0, [][]byte{packet}, true)}
	data := serializeOggPages(pages)

	got, err := parseOggPages(data)
	if err != nil {
		t.Fatalf("parseOggPages: %v", err)
	}
	if len(got) != 1 || len(got[0].Segments) != 1 {
		t.Fatalf("got %+v, want one page with one segment", got)
	}
	if !bytes.Equal(got[0].Segments[0], packet) {
		t.Fatalf("segment length = %d, want 255", len(got[0].Segments[0]))
	}
	if !got[0].LastSegmentComplete {
		t.Error("255-byte packet should still terminate its lacing run")
	}
}

func TestOggPageBadCapturePattern(t *testing.T) {
	if _, err := parseOggPages([]byte("not an ogg stream, but long enough to probe")); err == nil {
		t.Fatal("parseOggPages on garbage data: want error, got nil")
	}
}

func TestSecondHeaderPacketSpansMultiplePages(t *testing.T) {
	// secondHeaderPacket stitches Segments/LastSegmentComplete directly, so
	// a continuation scenario is built by hand rather than round-tripped
	// through serializeOggPages (which, for this package's write path,
	// never needs to emit a genuinely unterminated lacing run).
	big := bytes.Repeat([]byte{0x07}, 600)
	pages := []oggPage{
		buildTestPage(1, 0, 0, [][]byte{[]byte("OpusHead")}, true),
		buildTestPage(1, 1, 0, [][]byte{big[:300]}, false),
		buildTestPage(1, 2, 0, [][]byte{big[300:]}, true),
		buildTestPage(1, 3, 960, [][]byte{[]byte("audio-packet")}, true),
	}

	packet, nextIdx, err := secondHeaderPacket(pages)
	if err != nil {
		t.Fatalf("secondHeaderPacket: %v", err)
	}
	if !bytes.Equal(packet, big) {
		t.Fatalf("reassembled packet length = %d, want %d", len(packet), len(big))
	}
	if nextIdx != 3 {
		t.Fatalf("nextPageIdx = %d, want 3", nextIdx)
	}
}
