package tags

import (
	"strings"

	"github.com/azuline/rose-go/internal/rose"
)

// splitNames breaks the value stored for one role into individual artist
// names. The codec recognizes `\`, ` / `, `;`, and ` vs. ` as separators
// within a role, even though format always joins with `;`  — tags edited
// by other tools commonly use one of the others.
func splitNames(s string) []string {
	s = strings.ReplaceAll(s, "\\", ";")
	s = strings.ReplaceAll(s, " / ", ";")
	s = strings.ReplaceAll(s, " vs. ", ";")
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinNames(artists []rose.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ";")
}

func namesToArtists(names []string) []rose.Artist {
	out := make([]rose.Artist, len(names))
	for i, n := range names {
		out[i] = rose.Artist{Name: n}
	}
	return out
}

// FormatArtists renders an ArtistMapping into the single canonical artist
// string of §4.1: `<djmixer> pres. <composer> performed by <main> under.
// <conductor> feat. <guest> remixed by <remixer> produced by <producer>`,
// with every present role optional and absent roles (and their markers)
// dropped entirely.
func FormatArtists(m rose.ArtistMapping) string {
	base := joinNames(m.Composer)
	main := joinNames(m.Main)
	switch {
	case base != "" && main != "":
		base += " performed by " + main
	case main != "":
		base = main
	case base != "":
		// composer with no main artist: render composer alone.
	}

	if dj := joinNames(m.DJMixer); dj != "" {
		if base != "" {
			base = dj + " pres. " + base
		} else {
			base = dj
		}
	}
	if cond := joinNames(m.Conductor); cond != "" {
		base = appendClause(base, "under.", cond)
	}
	if guest := joinNames(m.Guest); guest != "" {
		base = appendClause(base, "feat.", guest)
	}
	if remixer := joinNames(m.Remixer); remixer != "" {
		base = appendClause(base, "remixed by", remixer)
	}
	if producer := joinNames(m.Producer); producer != "" {
		base = appendClause(base, "produced by", producer)
	}
	return base
}

func appendClause(base, marker, names string) string {
	if base == "" {
		return marker + " " + names
	}
	return base + " " + marker + " " + names
}

// ParseArtists inverts FormatArtists, peeling known markers from the right
// (producer, remixer, guest, conductor) and then the left (djmixer), with
// whatever remains split on " performed by " into composer/main.
func ParseArtists(s string) rose.ArtistMapping {
	var m rose.ArtistMapping
	s = strings.TrimSpace(s)

	s, m.Producer = peelSuffix(s, " produced by ")
	s, m.Remixer = peelSuffix(s, " remixed by ")
	s, m.Guest = peelSuffix(s, " feat. ")
	s, m.Conductor = peelSuffix(s, " under. ")
	s, m.DJMixer = peelPrefix(s, " pres. ")

	if idx := strings.Index(s, " performed by "); idx >= 0 {
		m.Composer = namesToArtists(splitNames(s[:idx]))
		m.Main = namesToArtists(splitNames(s[idx+len(" performed by "):]))
	} else if s != "" {
		m.Main = namesToArtists(splitNames(s))
	}
	return m
}

func peelSuffix(s, marker string) (rest string, artists []rose.Artist) {
	if idx := strings.LastIndex(s, marker); idx >= 0 {
		return s[:idx], namesToArtists(splitNames(s[idx+len(marker):]))
	}
	return s, nil
}

func peelPrefix(s, suffix string) (rest string, artists []rose.Artist) {
	if idx := strings.Index(s, suffix); idx >= 0 {
		return s[idx+len(suffix):], namesToArtists(splitNames(s[:idx]))
	}
	return s, nil
}
