package rule

import "strings"

// ActionKind is one of the five action behaviors from §4.2.
type ActionKind string

const (
	ActionReplace ActionKind = "replace"
	ActionSed     ActionKind = "sed"
	ActionSplit   ActionKind = "split"
	ActionAdd     ActionKind = "add"
	ActionDelete  ActionKind = "delete"
)

func isKnownActionKind(k ActionKind) bool {
	switch k {
	case ActionReplace, ActionSed, ActionSplit, ActionAdd, ActionDelete:
		return true
	}
	return false
}

// Action is `[tags[:pattern[:i]]/]kind[:args]` per §4.2.
type Action struct {
	Tags    []Tag
	Pattern Pattern
	Kind    ActionKind

	Replacement    string // replace
	SedSrc, SedDst string // sed
	SplitDelimiter string // split
	AddValue       string // add
}

// ParseAction parses the text form of an Action, defaulting tags/pattern
// from matcher when the action omits them, per §4.2.
func ParseAction(s string, matcher Matcher) (Action, error) {
	prefix, kindPart, hasSlash := splitUnescaped(s, '/')
	if !hasSlash {
		prefix, kindPart = "", s
	}

	tags, pat, explicit, err := parseActionPrefix(s, prefix, matcher)
	if err != nil {
		return Action{}, err
	}

	// Kind names never contain ':', so the kind ends at the first colon and
	// any doubled colons belong to the arguments.
	kindName, argsPart := kindPart, ""
	if i := strings.IndexByte(kindPart, ':'); i >= 0 {
		kindName, argsPart = kindPart[:i], kindPart[i+1:]
	}
	kind := ActionKind(kindName)
	if !isKnownActionKind(kind) {
		return Action{}, syntaxError(s, 0, "invalid action kind %q: must be one of {replace, sed, split, add, delete}", kindName)
	}

	if explicit {
		for _, t := range tags {
			if IsTotalTag(t) {
				return Action{}, syntaxError(s, 0, "tag %q is match-only and cannot be an action target", string(t))
			}
		}
	} else {
		tags = stripTotalTags(tags)
	}

	action := Action{Tags: tags, Pattern: pat, Kind: kind}
	switch kind {
	case ActionReplace:
		if argsPart == "" {
			return Action{}, syntaxError(s, len(s), "replacement not found: must specify a non-empty replacement")
		}
		action.Replacement = argsPart
	case ActionSed:
		src, dst, found := splitUnescaped(argsPart, ':')
		if !found {
			return Action{}, syntaxError(s, len(s), "sed action requires a src:dst pair")
		}
		action.SedSrc, action.SedDst = src, dst
	case ActionSplit:
		if argsPart == "" {
			return Action{}, syntaxError(s, len(s), "split action requires a non-empty delimiter")
		}
		if allSingleValue(tags) {
			return Action{}, syntaxError(s, 0, "split is illegal against single-valued tags")
		}
		action.SplitDelimiter = strings.ReplaceAll(argsPart, "::", ":")
	case ActionAdd:
		if argsPart == "" {
			return Action{}, syntaxError(s, len(s), "add action requires a non-empty value")
		}
		if allSingleValue(tags) {
			return Action{}, syntaxError(s, 0, "add is illegal against single-valued tags")
		}
		action.AddValue = argsPart
	case ActionDelete:
		// no arguments
	}
	return action, nil
}

func parseActionPrefix(full, prefix string, matcher Matcher) (tags []Tag, pat Pattern, explicit bool, err error) {
	if prefix == "" {
		return matcher.Tags, matcher.Pattern, false, nil
	}

	tagsPart, rest, found := splitUnescaped(prefix, ':')
	if !found {
		tagsPart, rest = prefix, ""
	}

	if tagsPart == "matched" {
		tags = matcher.Tags
	} else {
		tags, err = parseTagList(full, tagsPart)
		if err != nil {
			return nil, Pattern{}, true, err
		}
	}

	pat = matcher.Pattern
	if found {
		patternText, ci, ferr := splitFlag(full, rest, 0)
		if ferr != nil {
			return nil, Pattern{}, true, ferr
		}
		p, _ := parsePattern(patternText)
		p.CaseInsensitive = ci
		pat = p
	}
	return tags, pat, true, nil
}

func stripTotalTags(tags []Tag) []Tag {
	var out []Tag
	for _, t := range tags {
		if !IsTotalTag(t) {
			out = append(out, t)
		}
	}
	return out
}

func allSingleValue(tags []Tag) bool {
	for _, t := range tags {
		if !IsSingleValue(t) {
			return false
		}
	}
	return len(tags) > 0
}
