package rule

import (
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
)

// Rule bundles one matcher, one or more actions, and zero or more
// ignore-matchers, per §4.2.
type Rule struct {
	Matcher Matcher
	Actions []Action
	Ignore  []Matcher
}

// ParseRule parses a matcher, its action texts, and optional ignore-matcher
// texts into a Rule.
func ParseRule(matcherText string, actionTexts []string, ignoreTexts []string) (Rule, error) {
	if len(actionTexts) == 0 {
		return Rule{}, roseerr.New(roseerr.InvalidRule, "a rule needs at least one action")
	}

	matcher, err := ParseMatcher(matcherText)
	if err != nil {
		return Rule{}, err
	}

	actions := make([]Action, 0, len(actionTexts))
	for _, raw := range actionTexts {
		a, err := ParseAction(raw, matcher)
		if err != nil {
			return Rule{}, err
		}
		actions = append(actions, a)
	}

	ignore := make([]Matcher, 0, len(ignoreTexts))
	for _, raw := range ignoreTexts {
		m, err := ParseMatcher(raw)
		if err != nil {
			return Rule{}, err
		}
		ignore = append(ignore, m)
	}

	return Rule{Matcher: matcher, Actions: actions, Ignore: ignore}, nil
}

// String renders the rule the way the CLI and stored_metadata_rules print
// it: "matcher=... action=... ignore=..." with one "action=" clause per
// action and one "ignore=" clause per ignore-matcher.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString("matcher=")
	b.WriteString(quoteIfNeeded(r.Matcher.String()))
	for _, a := range r.Actions {
		b.WriteString(" action=")
		b.WriteString(quoteIfNeeded(a.String()))
	}
	for _, ig := range r.Ignore {
		b.WriteString(" ignore=")
		b.WriteString(quoteIfNeeded(ig.String()))
	}
	return b.String()
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " '\"") {
		return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
	}
	return s
}

// String renders an Action back to its text form.
func (a Action) String() string {
	var tagNames []string
	for _, t := range a.Tags {
		tagNames = append(tagNames, string(t))
	}
	prefix := strings.Join(tagNames, ",") + ":" + patternText(a.Pattern) + "/"

	switch a.Kind {
	case ActionReplace:
		return prefix + "replace:" + a.Replacement
	case ActionSed:
		return prefix + "sed:" + a.SedSrc + ":" + a.SedDst
	case ActionSplit:
		return prefix + "split:" + a.SplitDelimiter
	case ActionAdd:
		return prefix + "add:" + a.AddValue
	case ActionDelete:
		return prefix + "delete:"
	}
	return prefix + string(a.Kind)
}
