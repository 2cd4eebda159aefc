package rulesengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azuline/rose-go/internal/rule"
)

func TestScanStoredRuleTokensHandlesQuotedSpaces(t *testing.T) {
	toks := scanStoredRuleTokens(`matcher='tracktitle:foo bar' action=tracktitle/replace:baz`)
	require.Equal(t, []string{"matcher=tracktitle:foo bar", "action=tracktitle/replace:baz"}, toks)
}

func TestScanStoredRuleTokensHandlesEscapedQuote(t *testing.T) {
	toks := scanStoredRuleTokens(`matcher='tracktitle:it\'s here'`)
	require.Equal(t, []string{"matcher=tracktitle:it's here"}, toks)
}

func TestParseStoredRuleRoundTripsRuleString(t *testing.T) {
	r, err := rule.ParseRule("tracktitle:Allegro", []string{"tracktitle/replace:Adagio"}, nil)
	require.NoError(t, err)

	parsed, err := parseStoredRule(r.String())
	require.NoError(t, err)
	require.Equal(t, r.Matcher.Tags, parsed.Matcher.Tags)
	require.Equal(t, r.Matcher.Pattern.Needle, parsed.Matcher.Pattern.Needle)
	require.Len(t, parsed.Actions, 1)
	require.Equal(t, rule.ActionReplace, parsed.Actions[0].Kind)
}

func TestParseStoredRuleRejectsMissingMatcher(t *testing.T) {
	_, err := parseStoredRule("action=tracktitle/replace:Adagio")
	require.Error(t, err)
}

func TestParseStoredRuleRejectsUnknownClause(t *testing.T) {
	_, err := parseStoredRule("matcher=tracktitle:Allegro bogus=1")
	require.Error(t, err)
}

func TestRunStoredRunsEveryConfiguredRule(t *testing.T) {
	e := testEngine(t)
	seedRelease(t, e, "Stored Rules", "Allegro", "Classical")
	e.Config.StoredMetadataRules = []string{
		"matcher=tracktitle:Allegro action=tracktitle/replace:Adagio",
	}

	plans, err := e.RunStored(RunOptions{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, 1, plans[0].Count())
}

func TestRunStoredSkipsRulesThatMatchNothing(t *testing.T) {
	e := testEngine(t)
	seedRelease(t, e, "Stored Rules Empty", "Allegro", "Classical")
	e.Config.StoredMetadataRules = []string{
		"matcher=tracktitle:NoSuchTitle action=tracktitle/replace:Adagio",
	}

	plans, err := e.RunStored(RunOptions{})
	require.NoError(t, err)
	require.Empty(t, plans)
}
