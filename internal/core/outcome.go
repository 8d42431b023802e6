package core

import "fmt"

// ResultStatus is the per-action verdict recorded during dispatch.
type ResultStatus string

const (
	ResultApplied ResultStatus = "applied"
	ResultSkipped ResultStatus = "skipped"
	ResultFailed  ResultStatus = "failed"
)

// ActionResult records how a single planned action fared.
type ActionResult struct {
	// Action names the dispatch step, e.g. "label-add" or "comment".
	Action string
	// Target identifies what the action touched: a label name, a reviewer
	// login, a status context.
	Target string
	Status ResultStatus
	// Reason explains a skip (e.g. "label already present").
	Reason string
	Err    error
}

func (r ActionResult) String() string {
	switch r.Status {
	case ResultSkipped:
		return fmt.Sprintf("%s %q skipped: %s", r.Action, r.Target, r.Reason)
	case ResultFailed:
		return fmt.Sprintf("%s %q failed: %v", r.Action, r.Target, r.Err)
	default:
		return fmt.Sprintf("%s %q applied", r.Action, r.Target)
	}
}

// DispatchOutcome aggregates the per-action results for one delivery. A
// delivery is considered handled once its outcome is produced, regardless of
// how many actions failed.
type DispatchOutcome struct {
	DeliveryID string
	Results    []ActionResult
}

// Record appends a result to the outcome.
func (o *DispatchOutcome) Record(r ActionResult) {
	o.Results = append(o.Results, r)
}

// Counts returns the number of applied, skipped, and failed actions.
func (o *DispatchOutcome) Counts() (applied, skipped, failed int) {
	for _, r := range o.Results {
		switch r.Status {
		case ResultApplied:
			applied++
		case ResultSkipped:
			skipped++
		case ResultFailed:
			failed++
		}
	}
	return applied, skipped, failed
}
