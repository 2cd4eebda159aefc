package tags

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// vorbisComment is one KEY=value pair as stored in a Vorbis comment block.
// Vorbis comments allow repeated keys (multiple GENRE entries, for
// instance), so this package always deals in ordered slices rather than a
// map, matching how Genres/SecondaryGenres/Descriptors/Labels are
// represented on AudioTags.
type vorbisComment struct {
	Key   string
	Value string
}

// parseVorbisCommentBlock walks the byte layout common to FLAC's
// VORBIS_COMMENT metadata block and an Opus OpusTags packet: a
// little-endian length-prefixed vendor string, a little-endian comment
// count, then that many length-prefixed "KEY=value" strings. Repeated keys
// and comment order are preserved.
func parseVorbisCommentBlock(data []byte) (vendor string, comments []vorbisComment, err error) {
	pos := 0
	readUint32 := func() (uint32, error) {
		if pos+4 > len(data) {
			return 0, fmt.Errorf("vorbis comment: truncated length at offset %d", pos)
		}
		v := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		return v, nil
	}
	readString := func() (string, error) {
		n, err := readUint32()
		if err != nil {
			return "", err
		}
		if pos+int(n) > len(data) {
			return "", fmt.Errorf("vorbis comment: truncated string at offset %d", pos)
		}
		s := string(data[pos : pos+int(n)])
		pos += int(n)
		return s, nil
	}

	vendor, err = readString()
	if err != nil {
		return "", nil, err
	}
	count, err := readUint32()
	if err != nil {
		return "", nil, err
	}
	comments = make([]vorbisComment, 0, count)
	for i := uint32(0); i < count; i++ {
		entry, err := readString()
		if err != nil {
			return "", nil, err
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		comments = append(comments, vorbisComment{Key: strings.ToUpper(key), Value: value})
	}
	return vendor, comments, nil
}

// buildVorbisCommentBlock is the inverse of parseVorbisCommentBlock.
func buildVorbisCommentBlock(vendor string, comments []vorbisComment) []byte {
	buf := make([]byte, 0, 8+len(vendor))
	appendString := func(s string) {
		n := make([]byte, 4)
		binary.LittleEndian.PutUint32(n, uint32(len(s)))
		buf = append(buf, n...)
		buf = append(buf, s...)
	}
	appendString(vendor)

	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(comments)))
	buf = append(buf, count...)
	for _, c := range comments {
		appendString(c.Key + "=" + c.Value)
	}
	return buf
}

// commentValues collects every value stored under key, in file order.
func commentValues(comments []vorbisComment, key string) []string {
	var out []string
	key = strings.ToUpper(key)
	for _, c := range comments {
		if c.Key == key {
			out = append(out, c.Value)
		}
	}
	return out
}

// commentValue returns the first value stored under key, if any.
func commentValue(comments []vorbisComment, key string) string {
	vals := commentValues(comments, key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// setComment replaces every existing entry for key with a single value
// appended at the end of the list. An empty value removes the key entirely.
func setComment(comments []vorbisComment, key, value string) []vorbisComment {
	comments = dropComment(comments, key)
	if value == "" {
		return comments
	}
	return append(comments, vorbisComment{Key: strings.ToUpper(key), Value: value})
}

// setCommentList replaces every existing entry for key with one entry per
// value in values, in order.
func setCommentList(comments []vorbisComment, key string, values []string) []vorbisComment {
	comments = dropComment(comments, key)
	key = strings.ToUpper(key)
	for _, v := range values {
		if v == "" {
			continue
		}
		comments = append(comments, vorbisComment{Key: key, Value: v})
	}
	return comments
}

func dropComment(comments []vorbisComment, key string) []vorbisComment {
	key = strings.ToUpper(key)
	out := comments[:0:0]
	for _, c := range comments {
		if c.Key != key {
			out = append(out, c)
		}
	}
	return out
}
