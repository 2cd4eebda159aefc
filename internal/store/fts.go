package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
)

// ftsSeparator is the tokenizer separator referenced throughout §4.6's
// query shape; it is configured as an extra unicode61 separator in
// schema.go so that every rune becomes its own FTS token.
const ftsSeparator = "¬"

// tokenizeChars joins every rune of s with ftsSeparator so the unicode61
// tokenizer (configured with that separator) yields one token per
// character, per §4.3's "tokenized one character per token."
func tokenizeChars(s string) string {
	runes := []rune(s)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, ftsSeparator)
}

func upsertFTSRow(tx *sql.Tx, t rose.Track, r rose.Release) error {
	if _, err := tx.Exec("DELETE FROM rules_engine_fts WHERE track_id = ?", t.ID); err != nil {
		return roseerr.Unexpected(fmt.Errorf("clear fts row for %s: %w", t.ID, err))
	}
	_, err := tx.Exec(`
		INSERT INTO rules_engine_fts (track_id, tracktitle, releasetitle, trackartist,
			releaseartist, genre, secondarygenre, descriptor, label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		tokenizeChars(t.TrackTitle),
		tokenizeChars(r.ReleaseTitle),
		tokenizeChars(joinNames(t.TrackArtists.All())),
		tokenizeChars(joinNames(r.ReleaseArtists.All())),
		tokenizeChars(strings.Join(r.Genres, "; ")),
		tokenizeChars(strings.Join(r.SecondaryGenres, "; ")),
		tokenizeChars(strings.Join(r.Descriptors, "; ")),
		tokenizeChars(strings.Join(r.Labels, "; ")),
	)
	if err != nil {
		return roseerr.Unexpected(fmt.Errorf("insert fts row for %s: %w", t.ID, err))
	}
	return nil
}

func deleteFTSRow(tx *sql.Tx, trackID string) error {
	if _, err := tx.Exec("DELETE FROM rules_engine_fts WHERE track_id = ?", trackID); err != nil {
		return roseerr.Unexpected(fmt.Errorf("delete fts row for %s: %w", trackID, err))
	}
	return nil
}

func joinNames(artists []rose.Artist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, "; ")
}

// BuildNearQuery renders the `NEAR("c1¬c2¬…¬cn", max(0, n-2))` clause of
// §4.6 step 1 for a given search needle.
func BuildNearQuery(needle string) string {
	tokens := tokenizeChars(needle)
	n := len([]rune(needle))
	window := n - 2
	if window < 0 {
		window = 0
	}
	return fmt.Sprintf(`NEAR("%s", %d)`, escapeFTSString(tokens), window)
}

func escapeFTSString(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// Search runs the candidate search of §4.6 step 1, scoped to columns, and
// returns the matching track ids, capped at limit (0 means unlimited).
func Search(db Queryer, columns []string, needle string, limit int) ([]string, error) {
	if needle == "" || len(columns) == 0 {
		return nil, nil
	}
	colFilter := "{" + strings.Join(columns, " ") + "}"
	query := fmt.Sprintf("%s : %s", colFilter, BuildNearQuery(needle))

	sqlText := "SELECT track_id FROM rules_engine_fts WHERE rules_engine_fts MATCH ?"
	args := []any{query}
	if limit > 0 {
		sqlText += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := db.Query(sqlText, args...)
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("fts search: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FTSColumnsForTags maps the rule grammar's tag names (role suffixes
// stripped) onto rules_engine_fts column names. When the tag set contains
// both a trackartist role and releaseartist, the trackartist column is
// dropped: a matcher naming both is almost always meant as "search the
// release artist, and any track artist that happens to also be a release
// artist role" rather than a literal union of both columns, and searching
// both columns independently would surface tracks whose track artist
// matches but whose release artist doesn't, which is not what callers
// combining the two roles expect.
func FTSColumnsForTags(tags []string) []string {
	hasReleaseArtist := false
	for _, raw := range tags {
		tag := raw
		if i := strings.IndexByte(tag, '['); i != -1 {
			tag = tag[:i]
		}
		if tag == "releaseartist" {
			hasReleaseArtist = true
			break
		}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(col string) {
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}
	for _, raw := range tags {
		tag := raw
		if i := strings.IndexByte(tag, '['); i != -1 {
			tag = tag[:i]
		}
		switch tag {
		case "tracktitle":
			add("tracktitle")
		case "releasetitle":
			add("releasetitle")
		case "trackartist", "artist":
			if hasReleaseArtist {
				continue
			}
			add("trackartist")
		case "releaseartist":
			add("releaseartist")
		case "genre":
			add("genre")
		case "secondarygenre":
			add("secondarygenre")
		case "descriptor":
			add("descriptor")
		case "label":
			add("label")
		}
	}
	return out
}
