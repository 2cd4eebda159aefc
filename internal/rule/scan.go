package rule

import "strings"

// splitUnescaped finds the first occurrence of delim in s that is not part
// of a doubled pair (the rule grammar's escape convention: "Tr::ck" round-
// trips to the needle "Tr:ck" — a doubled delimiter is a literal one). It
// returns the text before the split, the text after it, and whether a
// split point was found; any doubled delimiter in "before" is collapsed to
// a single literal character.
func splitUnescaped(s string, delim byte) (before, after string, found bool) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == delim {
			if i+1 < len(s) && s[i+1] == delim {
				b.WriteByte(delim)
				i += 2
				continue
			}
			return b.String(), s[i+1:], true
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), "", false
}

// escapeDelim doubles every occurrence of delim in s, the inverse of the
// unescaping splitUnescaped performs — used when rendering a Matcher or
// Action back to its text form.
func escapeDelim(s string, delim byte) string {
	return strings.ReplaceAll(s, string(delim), string(delim)+string(delim))
}
