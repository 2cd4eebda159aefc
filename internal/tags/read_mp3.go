package tags

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/azuline/rose-go/internal/rose"
)

// id3v2's convenience getters (Title/Artist/Album/Genre/Year) only ever
// see one ID3v2.4 text frame. The rest of this package's fields live in
// TXXX user-defined text frames, the same way MusicBrainz IDs and other
// extended metadata get crammed into TXXX when there's no dedicated frame.
const (
	txxxRoseID          = "ROSEID"
	txxxReleaseID       = "ROSERELEASEID"
	txxxCompositionDate = "COMPOSITIONDATE"
	txxxEdition         = "EDITION"
	txxxCatalogNumber   = "CATALOGNUMBER"
	txxxSecondaryGenre  = "SECONDARYGENRE"
	txxxDescriptor      = "DESCRIPTOR"
	txxxReleaseType     = "RELEASETYPE"
)

func readMP3(path string) (AudioTags, error) {
	t := AudioTags{Path: path}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return t, unsupportedFiletype(path)
	}
	defer tag.Close()

	t.TrackTitle = tag.Title()
	t.ReleaseTitle = tag.Album()
	t.TrackArtists = ParseArtists(tag.Artist())
	t.ReleaseArtists = ParseArtists(getID3TextFrame(tag, "TPE2"))

	t.TrackNumber, t.TrackTotal = parseTrackNumber(getID3TextFrame(tag, "TRCK"))
	t.DiscNumber, t.DiscTotal = parseTrackNumber(getID3TextFrame(tag, "TPOS"))

	t.ReleaseDate, _ = rose.ParseRoseDate(readID3Date(tag, "TDRC", "TYER", "TDAT"))
	t.OriginalDate, _ = rose.ParseRoseDate(readID3Date(tag, "TDOR", "TORY", ""))
	t.CompositionDate, _ = rose.ParseRoseDate(getID3TXXXFrame(tag, txxxCompositionDate))

	t.ReleaseType = rose.NormalizeReleaseType(getID3TXXXFrame(tag, txxxReleaseType))
	t.Edition = getID3TXXXFrame(tag, txxxEdition)
	t.CatalogNumber = getID3TXXXFrame(tag, txxxCatalogNumber)

	t.Genres = rose.DedupStrings(splitSemicolons(tag.Genre()))
	t.SecondaryGenres = rose.DedupStrings(splitSemicolons(getID3TXXXFrame(tag, txxxSecondaryGenre)))
	t.Descriptors = rose.DedupStrings(splitSemicolons(getID3TXXXFrame(tag, txxxDescriptor)))
	t.Labels = rose.DedupStrings(splitSemicolons(getID3TextFrame(tag, "TPUB")))

	t.ID = getID3TXXXFrame(tag, txxxRoseID)
	t.ReleaseID = getID3TXXXFrame(tag, txxxReleaseID)

	if pics := tag.GetFrames(tag.CommonID("Attached picture")); len(pics) > 0 {
		if pic, ok := pics[0].(id3v2.PictureFrame); ok {
			t.CoverArt = pic.Picture
			t.CoverArtMime = pic.MimeType
		}
	}

	// DurationSeconds is left at zero: id3v2 only parses tag frames, not
	// the MPEG audio frame header computing playback length, and no other
	// wired dependency decodes MPEG frame timing. See DESIGN.md's
	// internal/tags entry for the tracking note.
	return t, nil
}

// readID3Date tries an ID3v2.4 frame first, then an ID3v2.3 year (+ DDMM
// date) pair as a fallback.
func readID3Date(tag *id3v2.Tag, v24Frame, yearFrame, ddmmFrame string) string {
	if d := getID3TextFrame(tag, v24Frame); d != "" {
		return d
	}
	year := getID3TextFrame(tag, yearFrame)
	if year == "" {
		return ""
	}
	if ddmmFrame == "" {
		return year
	}
	ddmm := getID3TextFrame(tag, ddmmFrame)
	if len(ddmm) != 4 {
		return year
	}
	return year + "-" + ddmm[2:4] + "-" + ddmm[0:2]
}

func splitSemicolons(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTrackNumber parses a track number string like "5" or "5/10".
func parseTrackNumber(s string) (num string, total int) {
	if s == "" {
		return "", 0
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		total, _ = strconv.Atoi(parts[1])
	}
	return parts[0], total
}

func getID3TextFrame(tag *id3v2.Tag, frameID string) string {
	frames := tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

func getID3TXXXFrame(tag *id3v2.Tag, description string) string {
	for _, frame := range tag.GetFrames("TXXX") {
		if txxx, ok := frame.(id3v2.UserDefinedTextFrame); ok && txxx.Description == description {
			return txxx.Value
		}
	}
	return ""
}
