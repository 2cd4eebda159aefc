package tags

import (
	"os"

	"github.com/Sorrow446/go-mp4tag"
	m4a "github.com/llehouerou/go-m4a"

	"github.com/azuline/rose-go/internal/rose"
)

// readM4A reads an M4A/MP4 file's iTunes atoms via go-mp4tag and its audio
// stream duration via go-m4a (go-mp4tag has no stream-duration API of its
// own).
func readM4A(path string) (AudioTags, error) {
	t := AudioTags{Path: path}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return t, unsupportedFiletype(path)
	}
	defer mp4.Close()

	m, err := mp4.Read()
	if err != nil {
		return t, unsupportedFiletype(path)
	}

	t.TrackTitle = m.Title
	t.ReleaseTitle = m.Album
	t.TrackArtists = ParseArtists(m.Artist)
	t.ReleaseArtists = ParseArtists(m.AlbumArtist)

	t.TrackNumber = itoaOrEmpty(int(m.TrackNumber))
	t.TrackTotal = int(m.TrackTotal)
	t.DiscNumber = itoaOrEmpty(int(m.DiscNumber))
	t.DiscTotal = int(m.DiscTotal)

	t.ReleaseDate, _ = rose.ParseRoseDate(m.Date)
	t.Genres = rose.DedupStrings(splitSemicolons(m.CustomGenre))

	custom := m.Custom
	t.ID = custom[txxxRoseID]
	t.ReleaseID = custom[txxxReleaseID]
	t.OriginalDate, _ = rose.ParseRoseDate(custom["ORIGINALDATE"])
	t.CompositionDate, _ = rose.ParseRoseDate(custom[txxxCompositionDate])
	t.ReleaseType = rose.NormalizeReleaseType(custom[txxxReleaseType])
	t.Edition = custom[txxxEdition]
	t.CatalogNumber = custom[txxxCatalogNumber]
	t.SecondaryGenres = rose.DedupStrings(splitSemicolons(custom[txxxSecondaryGenre]))
	t.Descriptors = rose.DedupStrings(splitSemicolons(custom[txxxDescriptor]))
	t.Labels = rose.DedupStrings(splitSemicolons(custom["LABEL"]))
	if t.TrackTotal == 0 {
		t.TrackTotal = atoiOr(custom["TOTALTRACKS"], 0)
	}
	if t.DiscTotal == 0 {
		t.DiscTotal = atoiOr(custom["TOTALDISCS"], 0)
	}

	if len(m.Pictures) > 0 {
		t.CoverArt = m.Pictures[0].Data
		t.CoverArtMime = detectMimeType(t.CoverArt)
	}

	t.DurationSeconds = m4aDurationSeconds(path)
	return t, nil
}

func m4aDurationSeconds(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	container, err := m4a.Open(f)
	if err != nil {
		return 0
	}
	return int(container.Duration().Seconds())
}
