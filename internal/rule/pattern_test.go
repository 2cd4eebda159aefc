package rule

import "testing"

func TestPatternMatchesContains(t *testing.T) {
	p := Pattern{Needle: "art"}
	if !p.Matches("heart") {
		t.Fatal("expected substring match")
	}
}

func TestPatternMatchesStrictStart(t *testing.T) {
	p := Pattern{Needle: "he", StrictStart: true}
	if !p.Matches("heart") || p.Matches("the heart") {
		t.Fatal("strict_start should require a prefix match")
	}
}

func TestPatternMatchesStrictEnd(t *testing.T) {
	p := Pattern{Needle: "art", StrictEnd: true}
	if !p.Matches("heart") || p.Matches("arthur") {
		t.Fatal("strict_end should require a suffix match")
	}
}

func TestPatternMatchesCaseInsensitive(t *testing.T) {
	p := Pattern{Needle: "ROCK", CaseInsensitive: true}
	if !p.Matches("classic rock") {
		t.Fatal("expected a case-insensitive match")
	}
}

func TestPatternStringRoundTrip(t *testing.T) {
	p := Pattern{Needle: "Track", StrictStart: true, StrictEnd: true, CaseInsensitive: true}
	parsed, err := parsePattern("^Track$")
	if err != nil {
		t.Fatal(err)
	}
	parsed.CaseInsensitive = true
	if parsed != p {
		t.Fatalf("parsePattern round-trip = %+v, want %+v", parsed, p)
	}
}
