package rulesengine

import (
	"regexp"
	"strings"

	"github.com/azuline/rose-go/internal/rose"
	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rule"
	"github.com/azuline/rose-go/internal/tags"
)

// TagChange is one (tag, old, new) triple surviving the diff in §4.6
// step 5 — only fields whose value actually changed are kept.
type TagChange struct {
	Tag rule.Tag
	Old string
	New string
}

// trackPlan is the in-memory result of evaluating a rule's actions against
// one verified track, per §4.6 steps 4-5.
type trackPlan struct {
	Track          verifiedTrack
	NewTags        tags.AudioTags
	NewIsNew       bool
	SidecarChanged bool
	Changes        []TagChange
}

// evaluateTrack applies every action to a deep-enough copy of vt's tags
// (and its release's sidecar-backed `new` flag), then keeps only the
// fields whose final value differs from the original.
func evaluateTrack(vt verifiedTrack, actions []rule.Action) (trackPlan, error) {
	at := vt.Tags
	isNew := vt.SidecarIsNew

	type change struct{ old, new string }
	touched := make(map[rule.Tag]*change)
	touch := func(tag rule.Tag, old, new string) {
		if c, ok := touched[tag]; ok {
			c.new = new
		} else {
			touched[tag] = &change{old: old, new: new}
		}
	}

	for _, act := range actions {
		for _, rawTag := range act.Tags {
			for _, tag := range expandOne(rawTag) {
				if err := applyOne(&at, &isNew, tag, act); err != nil {
					return trackPlan{}, err
				}
				values, _, _ := tagValues(tag, fieldsFromAudioTags(at, isNew))
				origValues, _, _ := tagValues(tag, fieldsFromAudioTags(vt.Tags, vt.SidecarIsNew))
				touch(tag, strings.Join(origValues, "; "), strings.Join(values, "; "))
			}
		}
	}

	var changes []TagChange
	for tag, c := range touched {
		if c.old != c.new {
			changes = append(changes, TagChange{Tag: tag, Old: c.old, New: c.new})
		}
	}

	return trackPlan{
		Track:          vt,
		NewTags:        at,
		NewIsNew:       isNew,
		SidecarChanged: isNew != vt.SidecarIsNew,
		Changes:        changes,
	}, nil
}

func expandOne(tag rule.Tag) []rule.Tag {
	return rule.ExpandArtistTags([]rule.Tag{tag})
}

// applyOne mutates at (and isNew) for a single resolved tag per one action,
// mirroring execute_single_action/execute_multi_value_action.
func applyOne(at *tags.AudioTags, isNew *bool, tag rule.Tag, act rule.Action) error {
	base, role := rule.SplitRole(tag)

	if base == rule.TagNew {
		cur := boolStr(*isNew)
		if act.Pattern.Needle != "" && !act.Pattern.Matches(cur) {
			return nil
		}
		v, err := applySingle(act, cur)
		if err != nil {
			return err
		}
		if v != "true" && v != "false" {
			return roseerr.New(roseerr.InvalidReplacementValue,
				"failed to assign new value %q to new: value must be the string true or false", v)
		}
		*isNew = v == "true"
		return nil
	}

	if rule.IsSingleValue(tag) {
		return applySingleField(at, tag, act)
	}
	return applyMultiField(at, tag, role, base, act)
}

func applySingleField(at *tags.AudioTags, tag rule.Tag, act rule.Action) error {
	switch tag {
	case rule.TagTrackTitle:
		v, err := applySingle(act, at.TrackTitle)
		at.TrackTitle = v
		return err
	case rule.TagTrackNumber:
		v, err := applySingle(act, at.TrackNumber)
		at.TrackNumber = v
		return err
	case rule.TagDiscNumber:
		v, err := applySingle(act, at.DiscNumber)
		at.DiscNumber = v
		return err
	case rule.TagReleaseTitle:
		v, err := applySingle(act, at.ReleaseTitle)
		at.ReleaseTitle = v
		return err
	case rule.TagReleaseType:
		v, err := applySingle(act, string(at.ReleaseType))
		if v == "" {
			v = string(rose.ReleaseTypeUnknown)
		}
		at.ReleaseType = rose.NormalizeReleaseType(v)
		return err
	case rule.TagEdition:
		v, err := applySingle(act, at.Edition)
		at.Edition = v
		return err
	case rule.TagCatalogNumber:
		v, err := applySingle(act, at.CatalogNumber)
		at.CatalogNumber = v
		return err
	case rule.TagReleaseDate:
		v, err := applySingle(act, at.ReleaseDate.String())
		if err != nil {
			return err
		}
		d, derr := rose.ParseRoseDate(v)
		if derr != nil {
			return roseerr.New(roseerr.InvalidReplacementValue, "failed to assign new value %q to releasedate: value must be a date string", v)
		}
		at.ReleaseDate = d
		return nil
	case rule.TagOriginalDate:
		v, err := applySingle(act, at.OriginalDate.String())
		if err != nil {
			return err
		}
		d, derr := rose.ParseRoseDate(v)
		if derr != nil {
			return roseerr.New(roseerr.InvalidReplacementValue, "failed to assign new value %q to originaldate: value must be a date string", v)
		}
		at.OriginalDate = d
		return nil
	case rule.TagCompositionDate:
		v, err := applySingle(act, at.CompositionDate.String())
		if err != nil {
			return err
		}
		d, derr := rose.ParseRoseDate(v)
		if derr != nil {
			return roseerr.New(roseerr.InvalidReplacementValue, "failed to assign new value %q to compositiondate: value must be a date string", v)
		}
		at.CompositionDate = d
		return nil
	}
	return nil
}

func applyMultiField(at *tags.AudioTags, tag rule.Tag, role rule.ArtistRole, base rule.Tag, act rule.Action) error {
	switch base {
	case rule.TagGenre:
		at.Genres = applyMulti(act, at.Genres)
	case rule.TagSecondaryGenre:
		at.SecondaryGenres = applyMulti(act, at.SecondaryGenres)
	case rule.TagDescriptor:
		at.Descriptors = applyMulti(act, at.Descriptors)
	case rule.TagLabel:
		at.Labels = applyMulti(act, at.Labels)
	case rule.TagTrackArtist:
		rr := rose.ArtistRole(role)
		at.TrackArtists.SetRole(rr, toArtists(applyMulti(act, names(at.TrackArtists.Role(rr)))))
	case rule.TagReleaseArtist:
		rr := rose.ArtistRole(role)
		at.ReleaseArtists.SetRole(rr, toArtists(applyMulti(act, names(at.ReleaseArtists.Role(rr)))))
	}
	return nil
}

func toArtists(names []string) []rose.Artist {
	out := make([]rose.Artist, len(names))
	for i, n := range names {
		out[i] = rose.Artist{Name: n}
	}
	return out
}

// applySingle mirrors execute_single_action: a no-op pattern mismatch
// leaves value unchanged; otherwise replace/sed/delete apply.
func applySingle(act rule.Action, value string) (string, error) {
	if act.Pattern.Needle != "" && !act.Pattern.Matches(value) {
		return value, nil
	}
	switch act.Kind {
	case rule.ActionReplace:
		return act.Replacement, nil
	case rule.ActionSed:
		re, err := regexp.Compile(act.SedSrc)
		if err != nil {
			return value, roseerr.New(roseerr.InvalidReplacementValue, "invalid sed pattern %q: %s", act.SedSrc, err)
		}
		return re.ReplaceAllString(value, act.SedDst), nil
	case rule.ActionDelete:
		return "", nil
	}
	return value, nil
}

// applyMulti mirrors execute_multi_value_action: pattern-filters which
// elements participate, applies the action per matched element (splitting
// ";"-joined replace/sed outputs and delimiter-split split outputs into
// further elements), drops empties, and dedups preserving order.
func applyMulti(act rule.Action, values []string) []string {
	matching := make([]bool, len(values))
	anyMatch := act.Pattern.Needle == ""
	for i, v := range values {
		if act.Pattern.Needle == "" || act.Pattern.Matches(v) {
			matching[i] = true
			anyMatch = true
		}
	}
	if !anyMatch {
		return values
	}

	if act.Kind == rule.ActionAdd {
		return rose.DedupStrings(append(append([]string{}, values...), act.AddValue))
	}

	var out []string
	for i, v := range values {
		if !matching[i] {
			out = append(out, v)
			continue
		}
		var newVals []string
		switch act.Kind {
		case rule.ActionDelete:
			continue
		case rule.ActionReplace:
			newVals = strings.Split(act.Replacement, ";")
		case rule.ActionSed:
			re, err := regexp.Compile(act.SedSrc)
			if err != nil {
				newVals = []string{v}
				break
			}
			newVals = strings.Split(re.ReplaceAllString(v, act.SedDst), ";")
		case rule.ActionSplit:
			newVals = strings.Split(v, act.SplitDelimiter)
		default:
			newVals = []string{v}
		}
		for _, nv := range newVals {
			nv = strings.TrimSpace(nv)
			if nv != "" {
				out = append(out, nv)
			}
		}
	}
	return rose.DedupStrings(out)
}
