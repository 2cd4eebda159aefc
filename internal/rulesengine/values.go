package rulesengine

import (
	"strconv"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/tags"
)

// fieldSet is the tag-name-addressable view of a track+release pair that
// both the precise (full AudioTags) and approximate (cache-row) matching
// paths reduce to, so tagValues has one implementation instead of two.
type fieldSet struct {
	TrackTitle      string
	TrackNumber     string
	TrackTotal      int
	DiscNumber      string
	DiscTotal       int
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
	ReleaseArtists  rose.ArtistMapping
	TrackArtists    rose.ArtistMapping
	New             bool
}

func fieldsFromAudioTags(at tags.AudioTags, isNew bool) fieldSet {
	return fieldSet{
		TrackTitle: at.TrackTitle, TrackNumber: at.TrackNumber, TrackTotal: at.TrackTotal,
		DiscNumber: at.DiscNumber, DiscTotal: at.DiscTotal,
		ReleaseTitle: at.ReleaseTitle, ReleaseType: at.ReleaseType,
		ReleaseDate: at.ReleaseDate, OriginalDate: at.OriginalDate, CompositionDate: at.CompositionDate,
		Edition: at.Edition, CatalogNumber: at.CatalogNumber,
		Genres: at.Genres, SecondaryGenres: at.SecondaryGenres, Descriptors: at.Descriptors, Labels: at.Labels,
		ReleaseArtists: at.ReleaseArtists, TrackArtists: at.TrackArtists,
		New: isNew,
	}
}

func fieldsFromCache(r rose.Release, t rose.Track) fieldSet {
	return fieldSet{
		TrackTitle: t.TrackTitle, TrackNumber: t.TrackNumber, TrackTotal: t.TrackTotal,
		DiscNumber: t.DiscNumber, DiscTotal: r.DiscTotal,
		ReleaseTitle: r.ReleaseTitle, ReleaseType: r.ReleaseType,
		ReleaseDate: r.ReleaseDate, OriginalDate: r.OriginalDate, CompositionDate: r.CompositionDate,
		Edition: r.Edition, CatalogNumber: r.CatalogNumber,
		Genres: r.Genres, SecondaryGenres: r.SecondaryGenres, Descriptors: r.Descriptors, Labels: r.Labels,
		ReleaseArtists: r.ReleaseArtists, TrackArtists: t.TrackArtists,
		New: r.New,
	}
}

// tagValues returns a tag's value(s) for matching purposes, multi-valued
// tags yielding one string per value. ok is false for an unrecognized tag
// (shouldn't happen once rule.isValidTag has already gated parsing).
func tagValues(tag rule.Tag, f fieldSet) (values []string, multi, ok bool) {
	base, role := rule.SplitRole(tag)
	switch base {
	case rule.TagTrackTitle:
		return []string{f.TrackTitle}, false, true
	case rule.TagTrackNumber:
		return []string{f.TrackNumber}, false, true
	case rule.TagTrackTotal:
		return []string{strconv.Itoa(f.TrackTotal)}, false, true
	case rule.TagDiscNumber:
		return []string{f.DiscNumber}, false, true
	case rule.TagDiscTotal:
		return []string{strconv.Itoa(f.DiscTotal)}, false, true
	case rule.TagReleaseTitle:
		return []string{f.ReleaseTitle}, false, true
	case rule.TagReleaseType:
		return []string{string(f.ReleaseType)}, false, true
	case rule.TagReleaseDate:
		return []string{f.ReleaseDate.String()}, false, true
	case rule.TagOriginalDate:
		return []string{f.OriginalDate.String()}, false, true
	case rule.TagCompositionDate:
		return []string{f.CompositionDate.String()}, false, true
	case rule.TagEdition:
		return []string{f.Edition}, false, true
	case rule.TagCatalogNumber:
		return []string{f.CatalogNumber}, false, true
	case rule.TagGenre:
		return f.Genres, true, true
	case rule.TagSecondaryGenre:
		return f.SecondaryGenres, true, true
	case rule.TagDescriptor:
		return f.Descriptors, true, true
	case rule.TagLabel:
		return f.Labels, true, true
	case rule.TagNew:
		return []string{boolStr(f.New)}, false, true
	case rule.TagTrackArtist:
		return names(f.TrackArtists.Role(rose.ArtistRole(role))), true, true
	case rule.TagReleaseArtist:
		return names(f.ReleaseArtists.Role(rose.ArtistRole(role))), true, true
	}
	return nil, false, false
}

func names(artists []rose.Artist) []string {
	out := make([]string, len(artists))
	for i, a := range artists {
		out[i] = a.Name
	}
	return out
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
