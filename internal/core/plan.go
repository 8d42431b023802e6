package core

import "sort"

// StatusState is the commit status state reported for a pull request head.
type StatusState string

const (
	StatusSuccess StatusState = "success"
	StatusFailure StatusState = "failure"
)

// StatusCheck is a single commit status to set on the event's head commit.
type StatusCheck struct {
	Context     string
	State       StatusState
	Description string
}

// TargetState is the desired open/closed state for an issue or pull request.
type TargetState string

const (
	TargetClosed TargetState = "closed"
	TargetOpen   TargetState = "open"
)

// ActionPlan is the deduplicated set of platform effects derived from one
// event. All slice fields are kept sorted and free of duplicates so that
// identical inputs always build byte-identical plans.
type ActionPlan struct {
	LabelsToAdd    []string
	LabelsToRemove []string
	Reviewers      []string
	Assignees      []string

	// CommentBody is posted last so it can reference the other actions.
	// CommentMarker is a hidden key embedded in the body; the dispatcher uses
	// it to skip re-posting a comment that already exists.
	CommentBody   string
	CommentMarker string

	Status *StatusCheck

	// SetState, when non-empty, closes or reopens the target issue.
	SetState TargetState
}

// IsEmpty reports whether the plan authorizes no actions at all.
func (p *ActionPlan) IsEmpty() bool {
	return p == nil || (len(p.LabelsToAdd) == 0 &&
		len(p.LabelsToRemove) == 0 &&
		len(p.Reviewers) == 0 &&
		len(p.Assignees) == 0 &&
		p.CommentBody == "" &&
		p.Status == nil &&
		p.SetState == "")
}

// MarkerTag renders an idempotency marker as the hidden HTML comment embedded
// in posted bodies. The dispatcher searches prior bot comments for this exact
// tag before posting.
func MarkerTag(marker string) string {
	return "<!-- repo-butler:" + marker + " -->"
}

// SortedSet copies values into a sorted slice with duplicates removed.
// Plan builders use it so that merge order never affects the result.
func SortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
