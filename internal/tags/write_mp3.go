package tags

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

func writeMP3(t AudioTags) error {
	tag, err := id3v2.Open(t.Path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		if stripErr := stripID3v2Tag(t.Path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		tag, err = id3v2.Open(t.Path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.DeleteAllFrames()

	tag.SetTitle(t.TrackTitle)
	tag.SetAlbum(t.ReleaseTitle)
	tag.SetArtist(FormatArtists(t.TrackArtists))
	tag.SetGenre(strings.Join(t.Genres, ";"))

	if albumArtist := FormatArtists(t.ReleaseArtists); albumArtist != "" {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, albumArtist)
	}

	trackStr := t.TrackNumber
	if t.TrackTotal > 0 {
		trackStr += "/" + strconv.Itoa(t.TrackTotal)
	}
	if trackStr != "" {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), id3v2.EncodingUTF8, trackStr)
	}

	discStr := t.DiscNumber
	if t.DiscTotal > 0 {
		discStr += "/" + strconv.Itoa(t.DiscTotal)
	}
	if discStr != "" {
		tag.AddTextFrame(tag.CommonID("Part of a set"), id3v2.EncodingUTF8, discStr)
	}

	if d := t.ReleaseDate.String(); d != "" {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, d)
	}
	if d := t.OriginalDate.String(); d != "" {
		tag.AddTextFrame("TDOR", id3v2.EncodingUTF8, d)
	}

	if labels := strings.Join(t.Labels, ";"); labels != "" {
		tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, labels)
	}

	addTXXXFrame(tag, txxxRoseID, t.ID)
	addTXXXFrame(tag, txxxReleaseID, t.ReleaseID)
	addTXXXFrame(tag, txxxCompositionDate, t.CompositionDate.String())
	addTXXXFrame(tag, txxxReleaseType, string(t.ReleaseType))
	addTXXXFrame(tag, txxxEdition, t.Edition)
	addTXXXFrame(tag, txxxCatalogNumber, t.CatalogNumber)
	addTXXXFrame(tag, txxxSecondaryGenre, strings.Join(t.SecondaryGenres, ";"))
	addTXXXFrame(tag, txxxDescriptor, strings.Join(t.Descriptors, ";"))

	if len(t.CoverArt) > 0 {
		mimeType := t.CoverArtMime
		if mimeType == "" {
			mimeType = detectMimeType(t.CoverArt)
		}
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    mimeType,
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     t.CoverArt,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// addTXXXFrame adds a TXXX (user-defined text) frame if the value is non-empty.
func addTXXXFrame(tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: description,
		Value:       value,
	})
}

// stripID3v2Tag removes an ID3v2 tag the id3v2 library can't parse
// in place (ID3v2.2 and earlier), so a fresh ID3v2.4 tag can be written.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil
	}

	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10
	if data[5]&0x10 != 0 {
		tagSize += 10 // ID3v2.4 footer
	}
	if tagSize >= len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	return os.WriteFile(path, data[tagSize:], info.Mode())
}
