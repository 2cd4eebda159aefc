package rose

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// canonicalFields renders a set of named field values into a deterministic,
// field-sorted string suitable for hashing. Multi-valued fields arrive
// pre-joined by the caller with "\x1f" (unit separator) in their stored
// order, so reordering the values of a list changes the digest.
func canonicalFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('\x1e')
	}
	return b.String()
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func joinArtists(artists []Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, "\x1f")
}

func artistMappingFields(prefix string, m ArtistMapping) map[string]string {
	out := map[string]string{}
	for _, r := range AllRoles {
		out[prefix+":"+string(r)] = joinArtists(m.Role(r))
	}
	return out
}

// ReleaseMetahash computes the deterministic content hash described in §3:
// a hash over the canonical, field-sorted serialization of the release's
// attributes (excluding source_path/id/added_at/new/metahash itself, which
// are identity/lifecycle fields, not content).
func ReleaseMetahash(r Release) string {
	fields := map[string]string{
		"releasetitle":     r.ReleaseTitle,
		"releasetype":      string(r.ReleaseType),
		"releasedate":      r.ReleaseDate.String(),
		"originaldate":     r.OriginalDate.String(),
		"compositiondate":  r.CompositionDate.String(),
		"edition":          r.Edition,
		"catalognumber":    r.CatalogNumber,
		"disctotal":        fmt.Sprintf("%d", r.DiscTotal),
		"genres":           strings.Join(DedupStrings(r.Genres), "\x1f"),
		"secondarygenres":  strings.Join(DedupStrings(r.SecondaryGenres), "\x1f"),
		"descriptors":      strings.Join(DedupStrings(r.Descriptors), "\x1f"),
		"labels":           strings.Join(DedupStrings(r.Labels), "\x1f"),
	}
	for k, v := range artistMappingFields("releaseartist", r.ReleaseArtists) {
		fields[k] = v
	}
	return hashString(canonicalFields(fields))
}

// TrackMetahash computes the per-track content hash used to skip no-op
// cache writes (§3, §4.4 step 4).
func TrackMetahash(t Track) string {
	fields := map[string]string{
		"tracktitle":      t.TrackTitle,
		"tracknumber":     t.TrackNumber,
		"tracktotal":      fmt.Sprintf("%d", t.TrackTotal),
		"discnumber":      t.DiscNumber,
		"durationseconds": fmt.Sprintf("%d", t.DurationSeconds),
	}
	for k, v := range artistMappingFields("trackartist", t.TrackArtists) {
		fields[k] = v
	}
	return hashString(canonicalFields(fields))
}
