package rule

import "testing"

func TestParseMatcherSimple(t *testing.T) {
	m, err := ParseMatcher("tracktitle:Track")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Tags) != 1 || m.Tags[0] != TagTrackTitle {
		t.Fatalf("Tags = %v", m.Tags)
	}
	if m.Pattern.Needle != "Track" {
		t.Fatalf("Needle = %q", m.Pattern.Needle)
	}
}

func TestParseMatcherMultipleTags(t *testing.T) {
	m, err := ParseMatcher("tracktitle,tracknumber:Track")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Tags) != 2 {
		t.Fatalf("Tags = %v", m.Tags)
	}
}

func TestParseMatcherEscapedColonInPattern(t *testing.T) {
	m, err := ParseMatcher("tracktitle,tracknumber:Tr::ck")
	if err != nil {
		t.Fatal(err)
	}
	if m.Pattern.Needle != "Tr:ck" {
		t.Fatalf("Needle = %q, want Tr:ck", m.Pattern.Needle)
	}
}

func TestParseMatcherCaseInsensitiveFlag(t *testing.T) {
	m, err := ParseMatcher("tracktitle:Track:i")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Pattern.CaseInsensitive {
		t.Fatal("expected case_insensitive")
	}
	if m.Pattern.Needle != "Track" {
		t.Fatalf("Needle = %q", m.Pattern.Needle)
	}
}

func TestParseMatcherStrictStartEnd(t *testing.T) {
	m, err := ParseMatcher(`tracktitle:^Track$`)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Pattern.StrictStart || !m.Pattern.StrictEnd {
		t.Fatalf("Pattern = %+v", m.Pattern)
	}
	if m.Pattern.Needle != "Track" {
		t.Fatalf("Needle = %q", m.Pattern.Needle)
	}
}

func TestParseMatcherInvalidTagErrors(t *testing.T) {
	if _, err := ParseMatcher("nonexistenttag:Track"); err == nil {
		t.Fatal("expected an error for an unknown tag")
	}
}

func TestParseMatcherMissingColonErrors(t *testing.T) {
	if _, err := ParseMatcher("tracknumber"); err == nil {
		t.Fatal("expected an error for a matcher missing ':'")
	}
}
