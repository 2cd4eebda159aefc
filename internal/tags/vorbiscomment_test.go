package tags

import "testing"

func TestVorbisCommentBlockRoundTrip(t *testing.T) {
	comments := []vorbisComment{
		{Key: "TITLE", Value: "Come Together"},
		{Key: "GENRE", Value: "Rock"},
		{Key: "GENRE", Value: "Psychedelic Rock"},
	}
	block := buildVorbisCommentBlock("rose-go", comments)

	vendor, got, err := parseVorbisCommentBlock(block)
	if err != nil {
		t.Fatalf("parseVorbisCommentBlock: %v", err)
	}
	if vendor != "rose-go" {
		t.Fatalf("vendor = %q, want rose-go", vendor)
	}
	if len(got) != len(comments) {
		t.Fatalf("got %d comments, want %d", len(got), len(comments))
	}
	for i, c := range comments {
		if got[i] != c {
			t.Errorf("comment[%d] = %+v, want %+v", i, got[i], c)
		}
	}
}

func TestCommentValuesPreservesOrder(t *testing.T) {
	comments := []vorbisComment{
		{Key: "GENRE", Value: "Rock"},
		{Key: "LABEL", Value: "Apple"},
		{Key: "GENRE", Value: "Pop"},
	}
	got := commentValues(comments, "genre")
	want := []string{"Rock", "Pop"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("commentValues = %v, want %v", got, want)
	}
}

func TestSetCommentListReplacesExisting(t *testing.T) {
	comments := []vorbisComment{
		{Key: "GENRE", Value: "Rock"},
		{Key: "TITLE", Value: "Keep"},
	}
	comments = setCommentList(comments, "GENRE", []string{"Pop", "Dance"})
	if commentValue(comments, "TITLE") != "Keep" {
		t.Fatal("setCommentList disturbed an unrelated key")
	}
	got := commentValues(comments, "GENRE")
	if len(got) != 2 || got[0] != "Pop" || got[1] != "Dance" {
		t.Fatalf("GENRE after replace = %v, want [Pop Dance]", got)
	}
}

func TestSetCommentEmptyValueRemovesKey(t *testing.T) {
	comments := []vorbisComment{{Key: "EDITION", Value: "Deluxe"}}
	comments = setComment(comments, "EDITION", "")
	if commentValue(comments, "EDITION") != "" {
		t.Fatal("setComment with empty value should remove the key")
	}
}
