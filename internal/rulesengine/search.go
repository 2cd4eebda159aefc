package rulesengine

import (
	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/store"
)

// prefilterThreshold is §4.6 step 2's ">400" cutoff above which cache rows
// are consulted before ever opening a file.
const prefilterThreshold = 400

// candidateTracks runs §4.6 step 1: an FTS NEAR query scoped to the
// matcher's tags (role suffixes and the "artist" shorthand expanded to
// concrete columns), returning a superset of true matches.
func candidateTracks(q store.Queryer, m rule.Matcher) ([]string, error) {
	tags := tagStrings(rule.ExpandArtistTags(m.Tags))
	for _, t := range tags {
		if len(store.FTSColumnsForTags([]string{t})) == 0 {
			// No FTS column holds this tag (new, numbers, dates, ...), so
			// every cached track is a candidate.
			states, err := store.PreloadTrackStates(q)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(states))
			for id := range states {
				ids = append(ids, id)
			}
			return ids, nil
		}
	}
	cols := store.FTSColumnsForTags(tags)
	return store.Search(q, cols, m.Pattern.Needle, 0)
}

func tagStrings(tags []rule.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// prefilterAgainstCache implements §4.6 step 2: above prefilterThreshold
// candidates, test the matcher against cheap cache rows first so only
// tracks that plausibly match pay the cost of a file read in the
// verification pass. Cache rows can lag behind the files on disk, so
// verifyCandidates always re-checks precisely afterward; this step is
// purely an optimization and is safe to skip for small candidate sets.
func prefilterAgainstCache(q store.Queryer, ids []string, m rule.Matcher, ignores []rule.Matcher) ([]string, error) {
	if len(ids) <= prefilterThreshold {
		return ids, nil
	}
	var out []string
	for _, id := range ids {
		t, ok, err := store.GetTrack(q, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		r, ok, err := store.GetRelease(q, t.ReleaseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		f := fieldsFromCache(r, t)
		if !matchesMatcher(m, f) {
			continue
		}
		if matchesAnyIgnore(ignores, f) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// matchesMatcher reports whether f satisfies m: any one of the matcher's
// (role-expanded) tags having a value (or, for multi-valued tags, any
// element) that matches the pattern.
func matchesMatcher(m rule.Matcher, f fieldSet) bool {
	for _, tag := range rule.ExpandArtistTags(m.Tags) {
		values, _, ok := tagValues(tag, f)
		if !ok {
			continue
		}
		for _, v := range values {
			if m.Pattern.Matches(v) {
				return true
			}
		}
	}
	return false
}

func matchesAnyIgnore(ignores []rule.Matcher, f fieldSet) bool {
	for _, ig := range ignores {
		if matchesMatcher(ig, f) {
			return true
		}
	}
	return false
}

// fastSearchForMatchingReleases runs the same FTS query as candidateTracks
// but joins through to the owning release ids rather than track ids —
// used by release-listing APIs that want a quick "does any track in this
// release match" filter without the full verify pass.
func fastSearchForMatchingReleases(q store.Queryer, m rule.Matcher) ([]string, error) {
	trackIDs, err := candidateTracks(q, m)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var releaseIDs []string
	for _, id := range trackIDs {
		t, ok, err := store.GetTrack(q, id)
		if err != nil {
			return nil, err
		}
		if !ok || seen[t.ReleaseID] {
			continue
		}
		seen[t.ReleaseID] = true
		releaseIDs = append(releaseIDs, t.ReleaseID)
	}
	return releaseIDs, nil
}
