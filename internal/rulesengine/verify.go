package rulesengine

import (
	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/store"
	"github.com/azuline/rose-go/internal/tags"
)

// verifiedTrack is a candidate that survived §4.6 step 3: its full tags
// read from disk, its release's sidecar `new` flag, and the release's
// source directory (for the sidecar rewrite path in Flush).
type verifiedTrack struct {
	Tags           tags.AudioTags
	ReleaseID      string
	ReleaseSource  string
	SidecarIsNew   bool
}

// verifyCandidates implements §4.6 step 3: read each candidate's tags
// precisely, test the matcher (honoring case_insensitive/strict_start/
// strict_end, multi-valued "any element matches"), and drop anything an
// ignore-matcher also hits.
func verifyCandidates(q store.Queryer, ids []string, m rule.Matcher, ignores []rule.Matcher) ([]verifiedTrack, error) {
	var out []verifiedTrack
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

		at, err := tags.Read(t.SourcePath)
		if err != nil {
			return nil, err
		}
		isNew, err := readSidecarNew(r.SourcePath, r.ID)
		if err != nil {
			return nil, err
		}

		f := fieldsFromAudioTags(at, isNew)
		if !matchesMatcher(m, f) {
			continue
		}
		if matchesAnyIgnore(ignores, f) {
			continue
		}
		out = append(out, verifiedTrack{Tags: at, ReleaseID: r.ID, ReleaseSource: r.SourcePath, SidecarIsNew: isNew})
	}
	return out, nil
}
