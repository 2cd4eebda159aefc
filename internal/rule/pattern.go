package rule

import "strings"

// Pattern is the match predicate for a single tag value, per §4.2.
type Pattern struct {
	Needle          string
	CaseInsensitive bool
	StrictStart     bool
	StrictEnd       bool
}

// NewPattern builds a Pattern with the needle as-is (no strict_start/end),
// for callers constructing a Pattern programmatically rather than parsing
// text.
func NewPattern(needle string) Pattern { return Pattern{Needle: needle} }

// Matches reports whether value satisfies the pattern.
func (p Pattern) Matches(value string) bool {
	v, n := value, p.Needle
	if p.CaseInsensitive {
		v, n = strings.ToLower(v), strings.ToLower(n)
	}
	switch {
	case p.StrictStart && p.StrictEnd:
		return v == n
	case p.StrictStart:
		return strings.HasPrefix(v, n)
	case p.StrictEnd:
		return strings.HasSuffix(v, n)
	default:
		return strings.Contains(v, n)
	}
}

// String renders the pattern back to its text form: a leading ^ and/or
// trailing $ for strict_start/strict_end (escaping a literal ^/$ in the
// needle), and a trailing :i flag for case_insensitive.
func (p Pattern) String() string {
	var b strings.Builder
	needle := p.Needle
	if p.StrictStart {
		b.WriteByte('^')
	}
	if strings.HasPrefix(needle, "^") {
		b.WriteString(`\^`)
		needle = needle[1:]
	}
	runes := []rune(needle)
	for i, r := range runes {
		if r == '$' && i == len(runes)-1 {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	if p.StrictEnd {
		b.WriteByte('$')
	}
	if p.CaseInsensitive {
		b.WriteString(":i")
	}
	return b.String()
}

// parsePattern parses the text form of a pattern (without the leading
// "tags:" that the caller already consumed), honoring escaped ^/$. The
// whole of s is consumed; a trailing :i flag must already have been
// removed by the caller (splitFlag), and the returned error is always nil.
func parsePattern(s string) (Pattern, error) {
	p := Pattern{}
	i := 0
	runes := []rune(s)

	if i < len(runes) && runes[i] == '^' {
		p.StrictStart = true
		i++
	} else if i+1 < len(runes) && runes[i] == '\\' && runes[i+1] == '^' {
		i++ // keep the escaped ^ as a literal, consume the backslash only
	}

	var needle []rune
	for i < len(runes) {
		if runes[i] == '\\' && i+1 < len(runes) && (runes[i+1] == '^' || runes[i+1] == '$') {
			needle = append(needle, runes[i+1])
			i += 2
			continue
		}
		if runes[i] == '$' && i == len(runes)-1 {
			p.StrictEnd = true
			i++
			continue
		}
		needle = append(needle, runes[i])
		i++
	}
	p.Needle = string(needle)
	return p, nil
}

// stripCaseInsensitiveFlag detects and removes a trailing ":i" flag,
// returning the pattern text without it and whether it was present.
func stripCaseInsensitiveFlag(s string) (string, bool) {
	if strings.HasSuffix(s, ":i") && !strings.HasSuffix(s, `\:i`) {
		return strings.TrimSuffix(s, ":i"), true
	}
	return s, false
}
