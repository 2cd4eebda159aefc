package vname

import "testing"

func TestSanitizeStripsForbiddenChars(t *testing.T) {
	got := Sanitize(`AC/DC: "Greatest Hits"?`, 0)
	for _, r := range forbidden {
		if strContains(got, string(r)) {
			t.Fatalf("Sanitize(...) = %q, still contains forbidden rune %q", got, r)
		}
	}
}

func TestSanitizeTruncatesToByteLength(t *testing.T) {
	got := Sanitize("a very long release title that exceeds the limit", 10)
	if len(got) > 10 {
		t.Fatalf("Sanitize truncated to %d bytes, want <= 10", len(got))
	}
}

func TestSanitizeTrimsTrailingDots(t *testing.T) {
	got := Sanitize("Side A...", 0)
	if strContains(got, ".") && got[len(got)-1] == '.' {
		t.Fatalf("Sanitize(%q) left a trailing dot", got)
	}
}

func TestSanitizerRecordAndLookup(t *testing.T) {
	s := NewSanitizer()
	s.Record("/Artists", "ACDC", "AC/DC")
	display, ok := s.Lookup("/Artists", "ACDC")
	if !ok || display != "AC/DC" {
		t.Fatalf("Lookup = (%q, %v), want (AC/DC, true)", display, ok)
	}
}

func TestSanitizerUnsanitizeFallsBackToReaddir(t *testing.T) {
	s := NewSanitizer()
	readdir := func(parent string) ([]struct{ Sanitized, Display string }, error) {
		return []struct{ Sanitized, Display string }{
			{Sanitized: "ACDC", Display: "AC/DC"},
		}, nil
	}
	display, ok := s.Unsanitize("/Artists", "ACDC", readdir)
	if !ok || display != "AC/DC" {
		t.Fatalf("Unsanitize = (%q, %v), want (AC/DC, true)", display, ok)
	}
}

func TestSanitizerUnsanitizeMissIsENOENT(t *testing.T) {
	s := NewSanitizer()
	readdir := func(parent string) ([]struct{ Sanitized, Display string }, error) {
		return nil, nil
	}
	_, ok := s.Unsanitize("/Artists", "Nonexistent", readdir)
	if ok {
		t.Fatal("Unsanitize should miss when readdir doesn't produce the entry")
	}
}

func strContains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
