package tags

import (
	"fmt"
	"os"
)

const opusHeadMagic = "OpusHead"
const opusTagsMagic = "OpusTags"
const opusSampleRate = 48000

// readOpus reads an Opus-in-Ogg file's comment header. No available
// dependency speaks Ogg/Opus comment framing, so the container is walked
// by hand via oggpage.go: page 0 holds the single-page OpusHead
// identification packet, page 1 (and, for an oversized comment packet,
// however many pages follow it) holds the OpusTags comment packet.
func readOpus(path string) (AudioTags, error) {
	t := AudioTags{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	pages, err := parseOggPages(data)
	if err != nil {
		return t, unsupportedFiletype(path)
	}
	if len(pages) < 2 || len(pages[0].Segments) == 0 {
		return t, unsupportedFiletype(path)
	}

	head := pages[0].Segments[0]
	if len(head) < 19 || string(head[:8]) != opusHeadMagic {
		return t, unsupportedFiletype(path)
	}
	preSkip := int(head[10]) | int(head[11])<<8

	tagsPacket, _, err := secondHeaderPacket(pages)
	if err != nil || len(tagsPacket) < 8 || string(tagsPacket[:8]) != opusTagsMagic {
		return t, unsupportedFiletype(path)
	}

	_, comments, err := parseVorbisCommentBlock(tagsPacket[8:])
	if err != nil {
		return t, fmt.Errorf("parse opus comments: %w", err)
	}
	readVorbisStyleTags(comments, &t)

	if pic := commentValue(comments, metadataBlockPictureKey); pic != "" {
		if data, mime, ok := decodeFlacPictureComment(pic); ok {
			t.CoverArt = data
			t.CoverArtMime = mime
		}
	}

	t.DurationSeconds = opusDurationSeconds(pages, preSkip)
	return t, nil
}

// opusDurationSeconds derives track length from the last page's granule
// position, minus the pre-skip samples declared in the identification header.
func opusDurationSeconds(pages []oggPage, preSkip int) int {
	if len(pages) == 0 {
		return 0
	}
	last := pages[len(pages)-1].GranulePos
	samples := int64(last) - int64(preSkip)
	if samples <= 0 {
		return 0
	}
	return int(samples / opusSampleRate)
}
