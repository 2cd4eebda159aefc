package rulesengine

import (
	"github.com/azuline/rose-go/internal/rule"
)

// defaultConfirmThreshold is the "enter_number_to_confirm_above_count" of
// §4.6 step 6.
const defaultConfirmThreshold = 25

// RunOptions controls §4.6 step 6's confirm/flush behavior.
type RunOptions struct {
	// DryRun evaluates the plan and returns it without ever calling Flush.
	DryRun bool

	// RequireConfirm gates Flush behind Confirm: when false, a non-empty,
	// non-dry-run plan flushes immediately with no prompt.
	RequireConfirm bool

	// ConfirmThreshold defaults to 25 when zero.
	ConfirmThreshold int

	// Confirm is invoked only when RequireConfirm is set on a non-empty
	// plan; aboveThreshold tells the caller to require the user to retype
	// the count rather than a plain yes/no. A nil Confirm with
	// RequireConfirm set aborts the run (treated as "no").
	Confirm func(count int, aboveThreshold bool) (bool, error)
}

// Run evaluates r, then (unless dry-run, empty, or declined at
// confirmation) flushes the resulting plan. It always returns the
// evaluated plan, even when nothing was flushed, so callers can display it.
func (e *Engine) Run(r rule.Rule, opts RunOptions) (*Plan, error) {
	plan, err := e.Evaluate(r)
	if err != nil {
		return nil, err
	}
	if plan.Empty() || opts.DryRun {
		return plan, nil
	}

	if opts.RequireConfirm {
		threshold := opts.ConfirmThreshold
		if threshold == 0 {
			threshold = defaultConfirmThreshold
		}
		if opts.Confirm == nil {
			return plan, nil
		}
		ok, err := opts.Confirm(plan.Count(), plan.Count() > threshold)
		if err != nil {
			return plan, err
		}
		if !ok {
			return plan, nil
		}
	}

	return plan, e.Flush(plan)
}
