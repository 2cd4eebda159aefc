package rule

import (
	"strings"
)

// Matcher is `tags:pattern` per §4.2.
type Matcher struct {
	Tags    []Tag
	Pattern Pattern
}

// ParseMatcher parses the text form of a Matcher.
func ParseMatcher(s string) (Matcher, error) {
	tagsPart, rest, found := splitUnescaped(s, ':')
	if !found {
		return Matcher{}, syntaxError(s, len(s), "expected to find ':', found end of string")
	}

	tags, err := parseTagList(s, tagsPart)
	if err != nil {
		return Matcher{}, err
	}

	patternText, caseInsensitive, err := splitFlag(s, rest, len(tagsPart)+1)
	if err != nil {
		return Matcher{}, err
	}

	pat, _ := parsePattern(patternText)
	pat.CaseInsensitive = caseInsensitive
	return Matcher{Tags: tags, Pattern: pat}, nil
}

// String renders the matcher back to its text form.
func (m Matcher) String() string {
	names := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		names[i] = string(t)
	}
	return strings.Join(names, ",") + ":" + patternText(m.Pattern)
}

// patternText renders p for use after a "tags:" prefix: colons in the
// pattern are doubled, while the :i flag keeps its single colon.
func patternText(p Pattern) string {
	ci := p.CaseInsensitive
	p.CaseInsensitive = false
	s := escapeDelim(p.String(), ':')
	if ci {
		s += ":i"
	}
	return s
}

func parseTagList(full, tagsPart string) ([]Tag, error) {
	if tagsPart == "" {
		return nil, syntaxError(full, 0, "invalid tag: must be one of {%s}", vocabularyList())
	}
	var tags []Tag
	for _, raw := range strings.Split(tagsPart, ",") {
		t := Tag(raw)
		if !isValidTag(t) {
			return nil, syntaxError(full, 0, "invalid tag %q: must be one of {%s}", raw, vocabularyList())
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// splitFlag extracts a trailing ":i" flag from a matcher/action pattern
// suffix, erroring if a further unescaped colon leaves unrecognized
// trailing input.
func splitFlag(full, rest string, offset int) (patternText string, caseInsensitive bool, err error) {
	before, after, found := splitUnescaped(rest, ':')
	if !found {
		return before, false, nil
	}
	if after == "i" {
		return before, true, nil
	}
	return "", false, syntaxError(full, offset+len(before)+1, "unrecognized flag: the only supported flag is `i` (case insensitive)")
}
