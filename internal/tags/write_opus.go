package tags

import (
	"fmt"
	"os"
)

// writeOpus rewrites an Opus file's OpusTags comment packet in place,
// leaving the OpusHead identification page and every audio page byte-for-
// byte untouched. The comment packet is rebuilt as a single page: a
// picture block that would overflow one page's 65024-byte packet budget
// is dropped rather than spanning pages, since real cover art rarely
// approaches that size and multi-page packet splitting buys little for a
// write path that only ever touches the comment packet.
func writeOpus(t AudioTags) error {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return err
	}
	pages, err := parseOggPages(data)
	if err != nil {
		return unsupportedFiletype(t.Path)
	}
	if len(pages) < 2 {
		return unsupportedFiletype(t.Path)
	}

	oldTagsPacket, nextPageIdx, err := secondHeaderPacket(pages)
	if err != nil || len(oldTagsPacket) < 8 || string(oldTagsPacket[:8]) != opusTagsMagic {
		return unsupportedFiletype(t.Path)
	}
	vendor, comments, err := parseVorbisCommentBlock(oldTagsPacket[8:])
	if err != nil {
		return fmt.Errorf("parse opus comments: %w", err)
	}

	comments = writeVorbisStyleTags(comments, t)
	comments = dropComment(comments, metadataBlockPictureKey)
	if len(t.CoverArt) > 0 {
		if enc, ok := encodeFlacPictureComment(t.CoverArt, t.CoverArtMime); ok {
			withPicture := append(comments, vorbisComment{Key: metadataBlockPictureKey, Value: enc})
			newPacket := append([]byte(opusTagsMagic), buildVorbisCommentBlock(vendor, withPicture)...)
			if len(newPacket) <= maxPageBody {
				comments = withPicture
			}
		}
	}

	newTagsPacket := append([]byte(opusTagsMagic), buildVorbisCommentBlock(vendor, comments)...)
	if len(newTagsPacket) > maxPageBody {
		return fmt.Errorf("opus: comment packet too large to write (%d bytes)", len(newTagsPacket))
	}

	tagsPage := pages[1]
	tagsPage.Segments = [][]byte{newTagsPacket}
	tagsPage.LastSegmentComplete = true

	newPages := make([]oggPage, 0, len(pages))
	newPages = append(newPages, pages[0], tagsPage)
	newPages = append(newPages, pages[nextPageIdx:]...)

	return os.WriteFile(t.Path, serializeOggPages(newPages), 0o644)
}
