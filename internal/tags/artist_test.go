package tags

import (
	"reflect"
	"testing"

	"github.com/azuline/rose-go/internal/rose"
)

func artists(names ...string) []rose.Artist {
	out := make([]rose.Artist, len(names))
	for i, n := range names {
		out[i] = rose.Artist{Name: n}
	}
	return out
}

func TestFormatArtistsMainOnly(t *testing.T) {
	m := rose.ArtistMapping{Main: artists("Boards of Canada")}
	if got := FormatArtists(m); got != "Boards of Canada" {
		t.Fatalf("FormatArtists = %q, want %q", got, "Boards of Canada")
	}
}

func TestFormatArtistsEveryRole(t *testing.T) {
	m := rose.ArtistMapping{
		Main:      artists("Main"),
		Composer:  artists("Composer"),
		DJMixer:   artists("DJ"),
		Conductor: artists("Conductor"),
		Guest:     artists("Guest"),
		Remixer:   artists("Remixer"),
		Producer:  artists("Producer"),
	}
	want := "DJ pres. Composer performed by Main under. Conductor feat. Guest remixed by Remixer produced by Producer"
	if got := FormatArtists(m); got != want {
		t.Fatalf("FormatArtists = %q, want %q", got, want)
	}
}

func TestParseArtistsRoundTrip(t *testing.T) {
	cases := []rose.ArtistMapping{
		{Main: artists("Solo Artist")},
		{Main: artists("Main"), Composer: artists("Composer")},
		{
			Main:      artists("Main"),
			Composer:  artists("Composer"),
			DJMixer:   artists("DJ"),
			Conductor: artists("Conductor"),
			Guest:     artists("Guest"),
			Remixer:   artists("Remixer"),
			Producer:  artists("Producer"),
		},
		{Main: artists("A", "B")},
	}
	for _, m := range cases {
		s := FormatArtists(m)
		got := ParseArtists(s)
		if !reflect.DeepEqual(got, m) {
			t.Errorf("ParseArtists(FormatArtists(%+v)) = %+v, want %+v (string=%q)", m, got, m, s)
		}
	}
}

func TestParseArtistsSeparators(t *testing.T) {
	got := ParseArtists("Artist One / Artist Two; Artist Three\\Artist Four")
	want := artists("Artist One", "Artist Two", "Artist Three", "Artist Four")
	if !reflect.DeepEqual(got.Main, want) {
		t.Fatalf("ParseArtists separators = %+v, want %+v", got.Main, want)
	}
}

func TestParseArtistsEmpty(t *testing.T) {
	got := ParseArtists("")
	if !reflect.DeepEqual(got, rose.ArtistMapping{}) {
		t.Fatalf("ParseArtists(\"\") = %+v, want zero value", got)
	}
}
