package tags

import (
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const metadataBlockPictureKey = "METADATA_BLOCK_PICTURE"

// coverArtFilenames are the cover image names looked for in a release
// folder when a track carries no embedded art.
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"album.jpg", "album.jpeg", "album.png",
	"front.jpg", "front.jpeg", "front.png",
	"artwork.jpg", "artwork.jpeg", "artwork.png",
}

// FindFolderArt looks for a common cover art filename in dir, used as a
// fallback when a track has no embedded picture.
func FindFolderArt(dir string) (data []byte, mimeType string, err error) {
	for _, filename := range coverArtFilenames {
		for _, candidate := range []string{filename, strings.ToUpper(filename)} {
			imgPath := filepath.Join(dir, candidate)
			data, err := os.ReadFile(imgPath)
			if err != nil {
				continue
			}
			return data, detectMimeType(data), nil
		}
	}
	return nil, "", nil
}

func detectMimeType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	ct := http.DetectContentType(data)
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	return ct
}

// encodeFlacPictureComment renders image data as a base64 METADATA_BLOCK_PICTURE
// comment value: the same FLAC PICTURE metadata block byte layout the
// go-flac/flacpicture package writes for FLAC, base64-encoded for embedding
// in a flat Vorbis comment — the form Opus (and Vorbis) use, since the Ogg
// mapping has no equivalent binary metadata block of its own.
func encodeFlacPictureComment(data []byte, mimeType string) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	if mimeType == "" {
		mimeType = detectMimeType(data)
	}
	const pictureTypeFrontCover = 3
	const description = ""

	buf := make([]byte, 0, 32+len(mimeType)+len(description)+len(data))
	appendUint32 := func(n uint32) {
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, n)
		buf = append(buf, b...)
	}
	appendUint32(pictureTypeFrontCover)
	appendUint32(uint32(len(mimeType)))
	buf = append(buf, mimeType...)
	appendUint32(uint32(len(description)))
	buf = append(buf, description...)
	appendUint32(0) // width: unknown, not required by consumers
	appendUint32(0) // height
	appendUint32(0) // color depth
	appendUint32(0) // colors used (non-indexed)
	appendUint32(uint32(len(data)))
	buf = append(buf, data...)

	return base64.StdEncoding.EncodeToString(buf), true
}

// decodeFlacPictureComment is the inverse of encodeFlacPictureComment.
func decodeFlacPictureComment(value string) (data []byte, mimeType string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(raw) < 32 {
		return nil, "", false
	}
	pos := 4 // picture type, unused on read
	readUint32 := func() uint32 {
		v := binary.BigEndian.Uint32(raw[pos : pos+4])
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

	pos += 16 // width, height, depth, colors used
	if pos+4 > len(raw) {
		return nil, "", false
	}
	dataLen := readUint32()
	if pos+int(dataLen) > len(raw) {
		return nil, "", false
	}
	return raw[pos : pos+int(dataLen)], mimeType, true
}
