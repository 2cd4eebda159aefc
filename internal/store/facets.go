package store

import (
	"fmt"
	"sort"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rose"
)

// The queries in this file back the VFS's facet views (§4.8): "3. Genres",
// "4. Descriptors", "5. Labels", "2. Artists" each need (a) the set of
// distinct facet display names to list as top-level directories, and (b)
// given one name, the set of releases that belong under it. Unlike the
// rules engine's FTS-backed substring search (fts.go), facet browsing is
// exact-match against a join table, so it is answered directly against the
// schema rather than through the rules engine.

// ListDistinctGenreNames returns every genre name that appears as either a
// primary or secondary genre on any cached release, sorted. A release's
// parent genres (rose.ParentGenres) are also browsable, so those are
// folded in too — otherwise "Electronic" would have no directory even
// though every "House" release sits underneath it.
func ListDistinctGenreNames(q Queryer) ([]string, error) {
	direct, err := distinctColumn(q, "releases_genres", "genre")
	if err != nil {
		return nil, err
	}
	secondary, err := distinctColumn(q, "releases_secondary_genres", "genre")
	if err != nil {
		return nil, err
	}
	all := rose.DedupStrings(append(direct, secondary...))
	all = rose.DedupStrings(append(all, rose.ParentGenres(all)...))
	sort.Strings(all)
	return all, nil
}

// ListDistinctDescriptorNames returns every descriptor name in use, sorted.
func ListDistinctDescriptorNames(q Queryer) ([]string, error) {
	names, err := distinctColumn(q, "releases_descriptors", "descriptor")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ListDistinctLabelNames returns every label name in use, sorted.
func ListDistinctLabelNames(q Queryer) ([]string, error) {
	names, err := distinctColumn(q, "releases_labels", "label")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ListDistinctArtistNames returns every artist name appearing in any role,
// at either the release or the track level, sorted.
func ListDistinctArtistNames(q Queryer) ([]string, error) {
	release, err := distinctColumn(q, "releases_artists", "artist")
	if err != nil {
		return nil, err
	}
	track, err := distinctColumn(q, "tracks_artists", "artist")
	if err != nil {
		return nil, err
	}
	all := rose.DedupStrings(append(release, track...))
	sort.Strings(all)
	return all, nil
}

// ListAllReleaseIDs returns every cached release id, sorted, for the plain
// "1. Releases" view.
func ListAllReleaseIDs(q Queryer) ([]string, error) {
	return queryIDs(q, "SELECT id FROM releases ORDER BY id")
}

// ListNewReleaseIDs returns every release id whose sidecar `new` flag is
// set, for "1. Releases - New".
func ListNewReleaseIDs(q Queryer) ([]string, error) {
	return queryIDs(q, "SELECT id FROM releases WHERE new = 1 ORDER BY id")
}

// ListReleaseIDsByAddedAt returns every release id ordered by added_at
// descending (most recently added first), for "1. Releases - Added On".
func ListReleaseIDsByAddedAt(q Queryer) ([]string, error) {
	return queryIDs(q, "SELECT id FROM releases ORDER BY added_at DESC, id")
}

// ListReleaseIDsByReleaseDate returns every release id ordered by
// releasedate descending, for "1. Releases - Released On". Releases with
// no releasedate sort last.
func ListReleaseIDsByReleaseDate(q Queryer) ([]string, error) {
	return queryIDs(q, `
		SELECT id FROM releases
		ORDER BY (releasedate IS NULL OR releasedate = '') ASC, releasedate DESC, id`)
}

// ListReleaseIDsByGenre returns every release whose genres, secondary
// genres, or their transitive parent genres include name.
func ListReleaseIDsByGenre(q Queryer, name string) ([]string, error) {
	return filterReleaseIDs(q, func(r rose.Release) bool {
		return contains(r.Genres, name) || contains(r.SecondaryGenres, name) ||
			contains(r.ParentGenres, name) || contains(r.ParentSecondaryGenres, name)
	})
}

// ListReleaseIDsByDescriptor returns every release tagged with descriptor
// name.
func ListReleaseIDsByDescriptor(q Queryer, name string) ([]string, error) {
	return filterReleaseIDs(q, func(r rose.Release) bool { return contains(r.Descriptors, name) })
}

// ListReleaseIDsByLabel returns every release tagged with label name.
func ListReleaseIDsByLabel(q Queryer, name string) ([]string, error) {
	return filterReleaseIDs(q, func(r rose.Release) bool { return contains(r.Labels, name) })
}

// ListReleaseIDsByArtist returns every release with an artist named name in
// any role at the release level, per the "artist expands to all roles"
// shorthand of §4.1.
func ListReleaseIDsByArtist(q Queryer, name string) ([]string, error) {
	return filterReleaseIDs(q, func(r rose.Release) bool {
		for _, a := range r.ReleaseArtists.All() {
			if a.Name == name {
				return true
			}
		}
		return false
	})
}

func filterReleaseIDs(q Queryer, keep func(rose.Release) bool) ([]string, error) {
	ids, err := ListAllReleaseIDs(q)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, id := range ids {
		r, ok, err := GetRelease(q, id)
		if err != nil {
			return nil, err
		}
		if ok && keep(r) {
			out = append(out, id)
		}
	}
	return out, nil
}

func distinctColumn(q Queryer, table, column string) ([]string, error) {
	rows, err := q.Query(fmt.Sprintf("SELECT DISTINCT %s FROM %s", column, table))
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("distinct %s.%s: %w", table, column, err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryIDs(q Queryer, query string) ([]string, error) {
	rows, err := q.Query(query)
	if err != nil {
		return nil, roseerr.Unexpected(fmt.Errorf("query ids: %w", err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, roseerr.Unexpected(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
