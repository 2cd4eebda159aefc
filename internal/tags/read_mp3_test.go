package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azuline/rose-go/internal/rose"
)

// createMinimalMP3 writes a single MPEG1 Layer3 128kbps 44100Hz stereo
// frame plus padding, enough for id3v2/readMP3 to treat the file as a
// valid MP3 container.
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		input     string
		wantNum   string
		wantTotal int
	}{
		{"", "", 0},
		{"5", "5", 0},
		{"5/10", "5", 10},
		{"1/1", "1", 1},
		{"12/24", "12", 24},
		{"invalid", "invalid", 0},
		{"5/invalid", "5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			num, total := parseTrackNumber(tt.input)
			if num != tt.wantNum {
				t.Errorf("parseTrackNumber(%q) num = %q, want %q", tt.input, num, tt.wantNum)
			}
			if total != tt.wantTotal {
				t.Errorf("parseTrackNumber(%q) total = %d, want %d", tt.input, total, tt.wantTotal)
			}
		})
	}
}

func TestMP3RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	mp3Path := filepath.Join(tmpDir, "test.mp3")
	createMinimalMP3(t, mp3Path)

	want := AudioTags{
		Path:            mp3Path,
		ID:              "abc123",
		ReleaseID:       "def456",
		TrackTitle:      "Test Title",
		TrackNumber:     "3",
		TrackTotal:      12,
		DiscNumber:      "1",
		DiscTotal:       2,
		ReleaseTitle:    "Test Album",
		ReleaseType:     rose.ReleaseTypeAlbum,
		ReleaseDate:     rose.RoseDate{Year: 2024},
		CompositionDate: rose.RoseDate{Year: 2020},
		Edition:         "Deluxe",
		CatalogNumber:   "CAT-001",
		Genres:          []string{"Rock", "Alternative"},
		SecondaryGenres: []string{"Shoegaze"},
		Descriptors:     []string{"Energetic"},
		Labels:          []string{"Test Label"},
		ReleaseArtists:  rose.ArtistMapping{Main: artists("Album Artist")},
		TrackArtists:    rose.ArtistMapping{Main: artists("Test Artist"), Guest: artists("Featured Artist")},
	}

	if err := want.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(mp3Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.ID != want.ID || got.ReleaseID != want.ReleaseID {
		t.Errorf("IDs = %q/%q, want %q/%q", got.ID, got.ReleaseID, want.ID, want.ReleaseID)
	}
	if got.TrackTitle != want.TrackTitle {
		t.Errorf("TrackTitle = %q, want %q", got.TrackTitle, want.TrackTitle)
	}
	if got.TrackNumber != want.TrackNumber || got.TrackTotal != want.TrackTotal {
		t.Errorf("track num/total = %q/%d, want %q/%d", got.TrackNumber, got.TrackTotal, want.TrackNumber, want.TrackTotal)
	}
	if got.DiscNumber != want.DiscNumber || got.DiscTotal != want.DiscTotal {
		t.Errorf("disc num/total = %q/%d, want %q/%d", got.DiscNumber, got.DiscTotal, want.DiscNumber, want.DiscTotal)
	}
	if got.ReleaseTitle != want.ReleaseTitle {
		t.Errorf("ReleaseTitle = %q, want %q", got.ReleaseTitle, want.ReleaseTitle)
	}
	if got.ReleaseType != want.ReleaseType {
		t.Errorf("ReleaseType = %q, want %q", got.ReleaseType, want.ReleaseType)
	}
	if got.ReleaseDate != want.ReleaseDate {
		t.Errorf("ReleaseDate = %+v, want %+v", got.ReleaseDate, want.ReleaseDate)
	}
	if got.CompositionDate != want.CompositionDate {
		t.Errorf("CompositionDate = %+v, want %+v", got.CompositionDate, want.CompositionDate)
	}
	if got.Edition != want.Edition {
		t.Errorf("Edition = %q, want %q", got.Edition, want.Edition)
	}
	if got.CatalogNumber != want.CatalogNumber {
		t.Errorf("CatalogNumber = %q, want %q", got.CatalogNumber, want.CatalogNumber)
	}
	if !sliceEq(got.Genres, want.Genres) {
		t.Errorf("Genres = %v, want %v", got.Genres, want.Genres)
	}
	if !sliceEq(got.SecondaryGenres, want.SecondaryGenres) {
		t.Errorf("SecondaryGenres = %v, want %v", got.SecondaryGenres, want.SecondaryGenres)
	}
	if !sliceEq(got.Descriptors, want.Descriptors) {
		t.Errorf("Descriptors = %v, want %v", got.Descriptors, want.Descriptors)
	}
	if !sliceEq(got.Labels, want.Labels) {
		t.Errorf("Labels = %v, want %v", got.Labels, want.Labels)
	}
	if FormatArtists(got.ReleaseArtists) != FormatArtists(want.ReleaseArtists) {
		t.Errorf("ReleaseArtists = %q, want %q", FormatArtists(got.ReleaseArtists), FormatArtists(want.ReleaseArtists))
	}
	if FormatArtists(got.TrackArtists) != FormatArtists(want.TrackArtists) {
		t.Errorf("TrackArtists = %q, want %q", FormatArtists(got.TrackArtists), FormatArtists(want.TrackArtists))
	}
}

func TestMP3WriteRejectsUnknownReleaseTypeWhenValidated(t *testing.T) {
	tmpDir := t.TempDir()
	mp3Path := filepath.Join(tmpDir, "test.mp3")
	createMinimalMP3(t, mp3Path)

	tagsToWrite := AudioTags{Path: mp3Path, ReleaseType: rose.ReleaseTypeUnknown}
	if err := tagsToWrite.Write(true); err == nil {
		t.Fatal("Write(validate=true) with unknown release type: want error, got nil")
	}
	if err := tagsToWrite.Write(false); err != nil {
		t.Fatalf("Write(validate=false) with unknown release type: %v", err)
	}
}

func sliceEq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
