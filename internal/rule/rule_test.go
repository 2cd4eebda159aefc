package rule

import "testing"

func TestParseRuleBasic(t *testing.T) {
	r, err := ParseRule("tracktitle:Track", []string{"releaseartist,genre/replace:lalala"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Actions) != 1 {
		t.Fatalf("Actions = %v", r.Actions)
	}
	want := "matcher=tracktitle:Track action=releaseartist,genre:Track/replace:lalala"
	if got := r.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParseRuleRequiresAtLeastOneAction(t *testing.T) {
	if _, err := ParseRule("tracktitle:Track", nil, nil); err == nil {
		t.Fatal("expected an error for a rule with no actions")
	}
}

func TestParseRuleWithIgnoreMatchers(t *testing.T) {
	r, err := ParseRule("genre:Rock", []string{"replace:Metal"}, []string{"releasetitle:Live"})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Ignore) != 1 || r.Ignore[0].Pattern.Needle != "Live" {
		t.Fatalf("Ignore = %v", r.Ignore)
	}
}

func TestParseRulePropagatesMatcherErrors(t *testing.T) {
	if _, err := ParseRule("notatag:x", []string{"replace:y"}, nil); err == nil {
		t.Fatal("expected the matcher's parse error to propagate")
	}
}
