package vfs

import (
	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/vname"
)

// releaseEntity builds the vname.Entity field map a release's path
// templates render against, per §4.7's tag vocabulary.
func releaseEntity(r rose.Release) vname.Entity {
	e := vname.Entity{
		"id":              r.ID,
		"releasetitle":    r.ReleaseTitle,
		"releasetype":     string(r.ReleaseType),
		"releasedate":     r.ReleaseDate.String(),
		"originaldate":    r.OriginalDate.String(),
		"compositiondate": r.CompositionDate.String(),
		"edition":         r.Edition,
		"catalognumber":   r.CatalogNumber,
		"disctotal":       r.DiscTotal,
		"genre":           r.Genres,
		"secondarygenre":  r.SecondaryGenres,
		"descriptor":      r.Descriptors,
		"label":           r.Labels,
		"new":             r.New,
		"added_at":        r.AddedAt,
	}
	addArtistFields(e, "releaseartists", r.ReleaseArtists)
	return e
}

// trackEntity builds the field map for a track, merging in its parent
// release's fields first so a template like the "all tracks" view's
// "{releaseartists.all} - {releasetitle} - {tracktitle}" resolves both
// halves from a single entity.
func trackEntity(t rose.Track, r rose.Release) vname.Entity {
	e := releaseEntity(r)
	e["id"] = t.ID
	e["tracktitle"] = t.TrackTitle
	e["tracknumber"] = t.TrackNumber
	e["tracktotal"] = t.TrackTotal
	e["discnumber"] = t.DiscNumber
	e["duration_seconds"] = t.DurationSeconds
	addArtistFields(e, "trackartists", t.TrackArtists)
	return e
}

func addArtistFields(e vname.Entity, prefix string, m rose.ArtistMapping) {
	e[prefix+".all"] = names(m.All())
	for _, role := range rose.AllRoles {
		e[prefix+"."+string(role)] = names(m.Role(role))
	}
}

func names(artists []rose.Artist) []string {
	out := make([]string, len(artists))
	for i, a := range artists {
		out[i] = a.Name
	}
	return out
}
