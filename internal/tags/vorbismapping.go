package tags

import (
	"strconv"

	"github.com/azuline/rose-go/internal/rose"
)

// vorbisCommentKeys are the flat KEY names this package reads/writes in a
// Vorbis-style comment block, shared between FLAC's VORBIS_COMMENT metadata
// block and Opus's OpusTags packet — both are the same comment layout,
// just embedded in different containers.
const (
	keyRoseID          = "ROSEID"
	keyReleaseID       = "ROSERELEASEID"
	keyTitle           = "TITLE"
	keyAlbum           = "ALBUM"
	keyArtist          = "ARTIST"
	keyAlbumArtist     = "ALBUMARTIST"
	keyTrackNumber     = "TRACKNUMBER"
	keyTrackTotal      = "TRACKTOTAL"
	keyDiscNumber      = "DISCNUMBER"
	keyDiscTotal       = "DISCTOTAL"
	keyDate            = "DATE"
	keyOriginalDate    = "ORIGINALDATE"
	keyCompositionDate = "COMPOSITIONDATE"
	keyReleaseType     = "RELEASETYPE"
	keyEdition         = "EDITION"
	keyCatalogNumber   = "CATALOGNUMBER"
	keyGenre           = "GENRE"
	keySecondaryGenre  = "SECONDARYGENRE"
	keyDescriptor      = "DESCRIPTOR"
	keyLabel           = "LABEL"
)

// readVorbisStyleTags populates the fields of t that live in a Vorbis
// comment block, shared by the FLAC and Opus readers.
func readVorbisStyleTags(comments []vorbisComment, t *AudioTags) {
	t.ID = commentValue(comments, keyRoseID)
	t.ReleaseID = commentValue(comments, keyReleaseID)

	t.TrackTitle = commentValue(comments, keyTitle)
	t.ReleaseTitle = commentValue(comments, keyAlbum)

	t.TrackNumber = commentValue(comments, keyTrackNumber)
	t.TrackTotal = atoiOr(commentValue(comments, keyTrackTotal), 0)
	t.DiscNumber = commentValue(comments, keyDiscNumber)
	t.DiscTotal = atoiOr(commentValue(comments, keyDiscTotal), 0)

	t.ReleaseDate, _ = rose.ParseRoseDate(commentValue(comments, keyDate))
	t.OriginalDate, _ = rose.ParseRoseDate(commentValue(comments, keyOriginalDate))
	t.CompositionDate, _ = rose.ParseRoseDate(commentValue(comments, keyCompositionDate))
	t.ReleaseType = rose.NormalizeReleaseType(commentValue(comments, keyReleaseType))
	t.Edition = commentValue(comments, keyEdition)
	t.CatalogNumber = commentValue(comments, keyCatalogNumber)

	t.Genres = rose.DedupStrings(commentValues(comments, keyGenre))
	t.SecondaryGenres = rose.DedupStrings(commentValues(comments, keySecondaryGenre))
	t.Descriptors = rose.DedupStrings(commentValues(comments, keyDescriptor))
	t.Labels = rose.DedupStrings(commentValues(comments, keyLabel))

	t.ReleaseArtists = ParseArtists(commentValue(comments, keyAlbumArtist))
	t.TrackArtists = ParseArtists(commentValue(comments, keyArtist))
}

// writeVorbisStyleTags merges t's fields into an existing comment list,
// dropping every key this package owns first so stale entries (including
// alternate-role artist tags other tools may have written) don't survive.
func writeVorbisStyleTags(comments []vorbisComment, t AudioTags) []vorbisComment {
	comments = setComment(comments, keyRoseID, t.ID)
	comments = setComment(comments, keyReleaseID, t.ReleaseID)

	comments = setComment(comments, keyTitle, t.TrackTitle)
	comments = setComment(comments, keyAlbum, t.ReleaseTitle)

	comments = setComment(comments, keyTrackNumber, t.TrackNumber)
	comments = setComment(comments, keyTrackTotal, itoaOrEmpty(t.TrackTotal))
	comments = setComment(comments, keyDiscNumber, t.DiscNumber)
	comments = setComment(comments, keyDiscTotal, itoaOrEmpty(t.DiscTotal))

	comments = setComment(comments, keyDate, t.ReleaseDate.String())
	comments = setComment(comments, keyOriginalDate, t.OriginalDate.String())
	comments = setComment(comments, keyCompositionDate, t.CompositionDate.String())
	comments = setComment(comments, keyReleaseType, string(t.ReleaseType))
	comments = setComment(comments, keyEdition, t.Edition)
	comments = setComment(comments, keyCatalogNumber, t.CatalogNumber)

	comments = setCommentList(comments, keyGenre, t.Genres)
	comments = setCommentList(comments, keySecondaryGenre, t.SecondaryGenres)
	comments = setCommentList(comments, keyDescriptor, t.Descriptors)
	comments = setCommentList(comments, keyLabel, t.Labels)

	// The main artist string is the canonical encoding of the whole
	// ArtistMapping; clear any alternate-role tags another tool may have
	// left so there is exactly one source of truth on read-back.
	comments = dropComment(comments, "PERFORMER")
	comments = dropComment(comments, "COMPOSER")
	comments = dropComment(comments, "CONDUCTOR")
	comments = dropComment(comments, "REMIXER")
	comments = dropComment(comments, "PRODUCER")

	comments = setComment(comments, keyAlbumArtist, FormatArtists(t.ReleaseArtists))
	comments = setComment(comments, keyArtist, FormatArtists(t.TrackArtists))
	return comments
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
