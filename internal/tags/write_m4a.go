package tags

import (
	"fmt"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
)

func writeM4A(t AudioTags) error {
	mp4, err := mp4tag.Open(t.Path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	custom := make(map[string]string)
	addCustom := func(key, value string) {
		if value != "" {
			custom[key] = value
		}
	}
	addCustom(txxxRoseID, t.ID)
	addCustom(txxxReleaseID, t.ReleaseID)
	addCustom("ORIGINALDATE", t.OriginalDate.String())
	addCustom(txxxCompositionDate, t.CompositionDate.String())
	addCustom(txxxReleaseType, string(t.ReleaseType))
	addCustom(txxxEdition, t.Edition)
	addCustom(txxxCatalogNumber, t.CatalogNumber)
	addCustom(txxxSecondaryGenre, strings.Join(t.SecondaryGenres, ";"))
	addCustom(txxxDescriptor, strings.Join(t.Descriptors, ";"))
	addCustom("LABEL", strings.Join(t.Labels, ";"))

	tags := &mp4tag.MP4Tags{
		Title:       t.TrackTitle,
		Artist:      FormatArtists(t.TrackArtists),
		Album:       t.ReleaseTitle,
		AlbumArtist: FormatArtists(t.ReleaseArtists),
		TrackNumber: safeInt16(atoiOr(t.TrackNumber, 0)),
		TrackTotal:  safeInt16(t.TrackTotal),
		DiscNumber:  safeInt16(atoiOr(t.DiscNumber, 0)),
		DiscTotal:   safeInt16(t.DiscTotal),
		Date:        t.ReleaseDate.String(),
		CustomGenre: strings.Join(t.Genres, ";"),
		Custom:      custom,
	}

	if len(t.CoverArt) > 0 {
		tags.Pictures = []*mp4tag.MP4Picture{{Data: t.CoverArt}}
	}

	if err := mp4.Write(tags, nil); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// safeInt16 clamps n to the range MP4's 16-bit track/disc fields can hold.
func safeInt16(n int) int16 {
	if n > 32767 {
		return 32767
	}
	if n < -32768 {
		return -32768
	}
	return int16(n)
}
