// Package tags implements the AudioTags contract (C1): reading and writing
// a canonical tag record from an audio file path, with per-container
// quirks (ID3 TRCK being n/total, MP4 trkn being a tuple, Vorbis comments
// being flat key/value) hidden behind one struct.
package tags

import (
	"path/filepath"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
)

// Supported container extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOpus = ".opus"
	ExtM4A  = ".m4a"
)

const id3Magic = "ID3"

// AudioTags is the canonical tag record of §4.1: every field the rest of
// the system needs from an audio file, independent of its container.
type AudioTags struct {
	Path string

	ID        string
	ReleaseID string

	TrackTitle      string
	TrackNumber     string
	TrackTotal      int
	DiscNumber      string
	DiscTotal       int
	DurationSeconds int

	ReleaseTitle    string
	ReleaseType     rose.ReleaseType
	ReleaseDate     rose.RoseDate
	OriginalDate    rose.RoseDate
	CompositionDate rose.RoseDate
	Edition         string
	CatalogNumber   string

	Genres          []string
	SecondaryGenres []string
	Descriptors     []string
	Labels          []string

	ReleaseArtists rose.ArtistMapping
	TrackArtists   rose.ArtistMapping

	CoverArt     []byte
	CoverArtMime string
}

// IsMusicFile reports whether path has a container extension this package
// supports.
func IsMusicFile(path string) bool {
	_, ok := containerFor(path)
	return ok
}

func containerFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3:
		return ExtMP3, true
	case ExtFLAC:
		return ExtFLAC, true
	case ExtOpus:
		return ExtOpus, true
	case ExtM4A:
		return ExtM4A, true
	}
	return "", false
}

func unsupportedFiletype(path string) error {
	return roseerr.New(roseerr.UnsupportedFiletype, "unsupported audio container: %s", path)
}

func unsupportedTagValue(path, field, value string) error {
	return roseerr.New(roseerr.UnsupportedTagValue, "%s: invalid value %q for %s", path, value, field)
}
