package rulesengine

import (
	"fmt"
	"strings"

	"github.com/azuline/rose-go/internal/rule"
)

// Plan is the result of §4.6 steps 1-5: every track whose tags would
// actually change, ready for display, confirmation, and Flush.
type Plan struct {
	Tracks []trackPlan
}

// Evaluate runs §4.6 steps 1-5 for r: FTS candidate search, optional cache
// prefilter, precise tag verification, action evaluation, and diffing
// against the original values.
func (e *Engine) Evaluate(r rule.Rule) (*Plan, error) {
	ids, err := candidateTracks(e.Store.DB, r.Matcher)
	if err != nil {
		return nil, err
	}
	ids, err = prefilterAgainstCache(e.Store.DB, ids, r.Matcher, r.Ignore)
	if err != nil {
		return nil, err
	}
	verified, err := verifyCandidates(e.Store.DB, ids, r.Matcher, r.Ignore)
	if err != nil {
		return nil, err
	}

	var plan Plan
	for _, vt := range verified {
		tp, err := evaluateTrack(vt, r.Actions)
		if err != nil {
			return nil, err
		}
		if len(tp.Changes) == 0 && !tp.SidecarChanged {
			continue
		}
		plan.Tracks = append(plan.Tracks, tp)
	}
	return &plan, nil
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool { return len(p.Tracks) == 0 }

// Count is the number of tracks the plan would touch, the figure the
// confirmation prompt shows and, above the retype threshold, asks the user
// to type back.
func (p *Plan) Count() int { return len(p.Tracks) }

// String renders the plan the way the CLI prints a diff: one path line per
// track, followed by its indented "tag: old -> new" lines.
func (p *Plan) String() string {
	var b strings.Builder
	for _, tp := range p.Tracks {
		fmt.Fprintln(&b, tp.Track.Tags.Path)
		for _, c := range tp.Changes {
			fmt.Fprintf(&b, "      %s: %s -> %s\n", c.Tag, c.Old, c.New)
		}
		if tp.SidecarChanged {
			fmt.Fprintf(&b, "      new: %t -> %t\n", tp.Track.SidecarIsNew, tp.NewIsNew)
		}
	}
	return b.String()
}

// releaseSidecarChange is one release's deduplicated `new`-flag write.
type releaseSidecarChange struct {
	sourcePath string
	newFlag    bool
}

// sidecarChangeSet collects one deduplicated new-flag write per release
// touched by the plan, per §4.6 step 5's "keep a separate map of
// (release-dir -> sidecar changes) to deduplicate new-flag writes" — so a
// release with many tracks touched by the same rule only gets one sidecar
// rewrite instead of one per track.
func (p *Plan) sidecarChangeSet() map[string]releaseSidecarChange {
	out := make(map[string]releaseSidecarChange)
	for _, tp := range p.Tracks {
		if tp.SidecarChanged {
			out[tp.Track.ReleaseID] = releaseSidecarChange{sourcePath: tp.Track.ReleaseSource, newFlag: tp.NewIsNew}
		}
	}
	return out
}

// Flush implements §4.6 step 6: write each changed track's tags, rewrite
// each touched release's sidecar once, and trigger a targeted cache
// refresh for every affected release.
func (e *Engine) Flush(p *Plan) error {
	changedDirs := make(map[string]bool)

	for _, tp := range p.Tracks {
		if len(tp.Changes) == 0 {
			continue
		}
		if err := tp.NewTags.Write(true); err != nil {
			return err
		}
		changedDirs[tp.Track.ReleaseSource] = true
		log.WithField("path", tp.Track.Tags.Path).Info("wrote tag changes")
	}

	for releaseID, change := range p.sidecarChangeSet() {
		if err := writeSidecarNew(change.sourcePath, releaseID, change.newFlag); err != nil {
			return err
		}
		changedDirs[change.sourcePath] = true
	}

	if len(changedDirs) == 0 || e.Updater == nil {
		return nil
	}
	dirs := make([]string, 0, len(changedDirs))
	for d := range changedDirs {
		dirs = append(dirs, d)
	}
	return e.Updater.UpdateReleases(dirs, false)
}
