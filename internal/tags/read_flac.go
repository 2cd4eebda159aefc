package tags

import (
	goflac "github.com/go-flac/go-flac"
)

// readFLAC reads a FLAC file's VORBIS_COMMENT and PICTURE metadata blocks
// and its STREAMINFO block for duration.
func readFLAC(path string) (AudioTags, error) {
	t := AudioTags{Path: path}

	f, err := goflac.ParseFile(path)
	if err != nil {
		return t, unsupportedFiletype(path)
	}

	var comments []vorbisComment
	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.VorbisComment:
			_, parsed, perr := parseVorbisCommentBlock(meta.Data)
			if perr == nil {
				comments = parsed
			}
		case goflac.Picture:
			if data, mime, ok := decodeFlacPictureBlock(meta.Data); ok {
				t.CoverArt = data
				t.CoverArtMime = mime
			}
		case goflac.StreamInfo:
			t.DurationSeconds = flacStreamInfoDurationSeconds(meta.Data)
		}
	}
	readVorbisStyleTags(comments, &t)
	return t, nil
}

// flacStreamInfoDurationSeconds parses sample rate and total sample count
// out of a STREAMINFO block.
func flacStreamInfoDurationSeconds(data []byte) int {
	if len(data) < 18 {
		return 0
	}
	sampleRate := int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
	totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
	if sampleRate == 0 {
		return 0
	}
	return int(totalSamples / int64(sampleRate))
}

// decodeFlacPictureBlock parses a raw FLAC PICTURE metadata block (the
// same byte layout as a base64 METADATA_BLOCK_PICTURE comment value, just
// not base64-encoded here since FLAC carries it as its own block type).
func decodeFlacPictureBlock(raw []byte) (data []byte, mimeType string, ok bool) {
	if len(raw) < 32 {
		return nil, "", false
	}
	pos := 4
	readUint32 := func() uint32 {
		v := uint32(raw[pos])<<24 | uint32(raw[pos+1])<<16 | uint32(raw[pos+2])<<8 | uint32(raw[pos+3])
		pos += 4
		return v
	}
	mimeLen := readUint32()
	if pos+int(mimeLen) > len(raw) {
		return nil, "", false
	}
	mimeType = string(raw[pos : pos+int(mimeLen)])
	pos += int(mimeLen)

	descLen := readUint32()
	if pos+int(descLen) > len(raw) {
		return nil, "", false
	}
	pos += int(descLen)

	pos += 16
	if pos+4 > len(raw) {
		return nil, "", false
	}
	dataLen := readUint32()
	if pos+int(dataLen) > len(raw) {
		return nil, "", false
	}
	return raw[pos : pos+int(dataLen)], mimeType, true
}
