package rulesengine

import (
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
	"github.com/azuline/rose-go/internal/rule"
)

// RunStored runs every configured stored_metadata_rules entry (§6) in
// sequence, parsing each with parseStoredRule and rule.ParseRule and
// evaluating it exactly like an ad hoc rule. Returns the plan for each
// rule that actually changed anything, in configuration order.
func (e *Engine) RunStored(opts RunOptions) ([]*Plan, error) {
	var plans []*Plan
	for _, raw := range e.Config.StoredMetadataRules {
		r, err := parseStoredRule(raw)
		if err != nil {
			return nil, err
		}
		plan, err := e.Run(r, opts)
		if err != nil {
			return nil, err
		}
		if !plan.Empty() {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

// parseStoredRule parses the "matcher=... action=... action=... ignore=..."
// text form rule.Rule.String renders, the form of stored_metadata_rules
// config entries.
func parseStoredRule(s string) (rule.Rule, error) {
	var matcherText string
	var actionTexts, ignoreTexts []string
	haveMatcher := false

	for _, tok := range scanStoredRuleTokens(s) {
		key, value, found := strings.Cut(tok, "=")
		if !found {
			return rule.Rule{}, roseerr.New(roseerr.RuleSyntax, "malformed rule clause %q: expected key=value", tok)
		}
		switch key {
		case "matcher":
			matcherText, haveMatcher = value, true
		case "action":
			actionTexts = append(actionTexts, value)
		case "ignore":
			ignoreTexts = append(ignoreTexts, value)
		default:
			return rule.Rule{}, roseerr.New(roseerr.RuleSyntax, "unknown rule clause %q", key)
		}
	}
	if !haveMatcher {
		return rule.Rule{}, roseerr.New(roseerr.RuleSyntax, "rule %q is missing a matcher= clause", s)
	}
	return rule.ParseRule(matcherText, actionTexts, ignoreTexts)
}

// scanStoredRuleTokens splits s on whitespace, honoring single-quoted
// values (with \' escaping a literal quote) so a pattern or replacement
// containing a space survives as one token, mirroring quoteIfNeeded's
// quoting convention in rule.Rule.String/Action.String.
func scanStoredRuleTokens(s string) []string {
	var tokens []string
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		for i < len(runes) && runes[i] == ' ' {
			i++
		}
		if i >= len(runes) {
			break
		}
		var b strings.Builder
		for i < len(runes) && runes[i] != ' ' && runes[i] != '\'' {
			b.WriteRune(runes[i])
			i++
		}
		if i < len(runes) && runes[i] == '\'' {
			i++
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == '\'' {
					b.WriteRune('\'')
					i += 2
					continue
				}
				if runes[i] == '\'' {
					i++
					break
				}
				b.WriteRune(runes[i])
				i++
			}
		}
		tokens = append(tokens, b.String())
	}
	return tokens
}
