package store

import (
	"database/sql"
	"testing"

	"github.com/azuline/rose-go/internal/rose"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRelease() rose.Release {
	return rose.Release{
		ID:          "r1",
		SourcePath:  "/music/Abbey Road",
		AddedAt:     "2024-01-01T00:00:00Z",
		ReleaseTitle: "Abbey Road",
		ReleaseType: rose.ReleaseTypeAlbum,
		Genres:      []string{"Rock"},
		Metahash:    "hash1",
	}
}

func sampleTrack() rose.Track {
	return rose.Track{
		ID:         "t1",
		ReleaseID:  "r1",
		SourcePath: "/music/Abbey Road/01 Come Together.flac",
		TrackTitle: "Come Together",
		Metahash:   "hash1",
	}
}

func TestUpsertAndGetReleaseMetahash(t *testing.T) {
	s := newTestStore(t)
	r := sampleRelease()
	if err := s.WithTx(func(tx *sql.Tx) error { return UpsertRelease(tx, r) }); err != nil {
		t.Fatal(err)
	}
	hash, ok, err := GetReleaseMetahash(s.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || hash != "hash1" {
		t.Fatalf("GetReleaseMetahash = (%q, %v), want (hash1, true)", hash, ok)
	}
}

func TestUpsertTrackAndSearch(t *testing.T) {
	s := newTestStore(t)
	r := sampleRelease()
	tr := sampleTrack()
	if err := s.WithTx(func(tx *sql.Tx) error {
		if err := UpsertRelease(tx, r); err != nil {
			return err
		}
		return UpsertTrack(tx, tr, r)
	}); err != nil {
		t.Fatal(err)
	}

	ids, err := Search(s.DB, FTSColumnsForTags([]string{"tracktitle"}), "Come Together", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "t1" {
		t.Fatalf("Search = %v, want [t1]", ids)
	}
}

func TestDeleteTrackRemovesFTSRow(t *testing.T) {
	s := newTestStore(t)
	r := sampleRelease()
	tr := sampleTrack()
	if err := s.WithTx(func(tx *sql.Tx) error {
		if err := UpsertRelease(tx, r); err != nil {
			return err
		}
		return UpsertTrack(tx, tr, r)
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.WithTx(func(tx *sql.Tx) error { return DeleteTrack(tx, tr.ID) }); err != nil {
		t.Fatal(err)
	}
	ids, err := Search(s.DB, FTSColumnsForTags([]string{"tracktitle"}), "Come Together", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("Search after delete = %v, want none", ids)
	}
}

func TestBuildNearQueryWindowSize(t *testing.T) {
	got := BuildNearQuery("abcd")
	want := `NEAR("a¬b¬c¬d", 2)`
	if got != want {
		t.Fatalf("BuildNearQuery = %q, want %q", got, want)
	}
}

func TestBuildNearQueryShortNeedleHasZeroWindow(t *testing.T) {
	got := BuildNearQuery("a")
	want := `NEAR("a", 0)`
	if got != want {
		t.Fatalf("BuildNearQuery = %q, want %q", got, want)
	}
}

func TestGetReleaseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	r := sampleRelease()
	r.ReleaseArtists.Main = []rose.Artist{{Name: "The Beatles"}}
	r.SecondaryGenres = []string{"Psychedelic Rock"}
	if err := s.WithTx(func(tx *sql.Tx) error { return UpsertRelease(tx, r) }); err != nil {
		t.Fatal(err)
	}

	got, ok, err := GetRelease(s.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("GetRelease ok = false, want true")
	}
	if got.ReleaseTitle != r.ReleaseTitle || got.SourcePath != r.SourcePath {
		t.Fatalf("GetRelease = %+v, want matching %+v", got, r)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "Rock" {
		t.Fatalf("GetRelease.Genres = %v, want [Rock]", got.Genres)
	}
	if len(got.ReleaseArtists.Main) != 1 || got.ReleaseArtists.Main[0].Name != "The Beatles" {
		t.Fatalf("GetRelease.ReleaseArtists.Main = %v, want [The Beatles]", got.ReleaseArtists.Main)
	}
}

func TestGetTrackRoundTrip(t *testing.T) {
	s := newTestStore(t)
	r := sampleRelease()
	tr := sampleTrack()
	tr.TrackArtists.Main = []rose.Artist{{Name: "The Beatles"}}
	if err := s.WithTx(func(tx *sql.Tx) error {
		if err := UpsertRelease(tx, r); err != nil {
			return err
		}
		return UpsertTrack(tx, tr, r)
	}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := GetTrack(s.DB, tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.TrackTitle != "Come Together" {
		t.Fatalf("GetTrack = (%+v, %v), want TrackTitle=Come Together", got, ok)
	}
	if len(got.TrackArtists.Main) != 1 || got.TrackArtists.Main[0].Name != "The Beatles" {
		t.Fatalf("GetTrack.TrackArtists.Main = %v, want [The Beatles]", got.TrackArtists.Main)
	}

	tracks, err := ListTracksForRelease(s.DB, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].ID != tr.ID {
		t.Fatalf("ListTracksForRelease = %v, want [%s]", tracks, tr.ID)
	}
}

func TestGetReleaseMissingReturnsNotOK(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := GetRelease(s.DB, "nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("GetRelease ok = true for nonexistent id, want false")
	}
}
