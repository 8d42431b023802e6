// Package dispatch executes action plans against the platform capability.
// Actions run in a fixed order with the comment last, each attempted
// independently: one failure never blocks the rest, an already-applied action
// is recorded as skipped, and only transient failures are retried.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/repo-butler/internal/core"
)

// Dispatcher applies action plans. It holds no per-delivery state and is safe
// for concurrent use.
type Dispatcher struct {
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher with bounded retry parameters for
// transient platform failures. attempts is the total try count per action.
func NewDispatcher(attempts int, baseDelay time.Duration, logger *slog.Logger) *Dispatcher {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Dispatcher{attempts: attempts, baseDelay: baseDelay, logger: logger}
}

// maxBackoff caps a single retry delay so a burst of rate limits cannot stall
// a worker for longer than the platform's limit window.
const maxBackoff = 8 * time.Second

// Dispatch executes the plan for the event. The per-action results are
// aggregated into a single outcome; the returned error is reserved for a nil
// plan or platform, never for individual action failures.
func (d *Dispatcher) Dispatch(ctx context.Context, platform core.Platform, event *core.Event, p *core.ActionPlan) (*core.DispatchOutcome, error) {
	if platform == nil {
		return nil, fmt.Errorf("platform capability is required")
	}
	outcome := &core.DispatchOutcome{DeliveryID: event.DeliveryID}
	if p.IsEmpty() {
		return outcome, nil
	}

	owner, repo, number := event.RepoOwner, event.RepoName, event.Number

	d.removeLabels(ctx, platform, outcome, owner, repo, number, p.LabelsToRemove)
	d.addLabels(ctx, platform, outcome, owner, repo, number, p.LabelsToAdd)
	d.addAssignees(ctx, platform, outcome, owner, repo, number, p.Assignees)
	d.requestReviewers(ctx, platform, outcome, owner, repo, number, event.Actor, p.Reviewers)
	d.setStatus(ctx, platform, outcome, owner, repo, event.HeadSHA, p.Status)
	d.setState(ctx, platform, outcome, owner, repo, number, p.SetState)
	d.postComment(ctx, platform, outcome, owner, repo, number, p.CommentBody, p.CommentMarker)

	applied, skipped, failed := outcome.Counts()
	d.logger.Info("dispatch finished",
		"delivery", event.DeliveryID,
		"repo", event.RepoFullName,
		"applied", applied,
		"skipped", skipped,
		"failed", failed,
	)
	return outcome, nil
}

func (d *Dispatcher) removeLabels(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, labels []string) {
	if len(labels) == 0 {
		return
	}
	present := d.currentLabelSet(ctx, platform, owner, repo, number)

	for _, label := range labels {
		if present != nil {
			if _, ok := present[label]; !ok {
				outcome.Record(core.ActionResult{Action: "label-remove", Target: label, Status: core.ResultSkipped, Reason: "label not present"})
				continue
			}
		}
		err := d.retry(ctx, func() error {
			return platform.RemoveLabel(ctx, owner, repo, number, label)
		})
		outcome.Record(d.result("label-remove", label, err, "label not present"))
	}
}

func (d *Dispatcher) addLabels(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, labels []string) {
	if len(labels) == 0 {
		return
	}
	present := d.currentLabelSet(ctx, platform, owner, repo, number)

	var missing []string
	for _, label := range labels {
		if present != nil {
			if _, ok := present[label]; ok {
				outcome.Record(core.ActionResult{Action: "label-add", Target: label, Status: core.ResultSkipped, Reason: "label already present"})
				continue
			}
		}
		missing = append(missing, label)
	}
	if len(missing) == 0 {
		return
	}

	err := d.retry(ctx, func() error {
		return platform.AddLabels(ctx, owner, repo, number, missing)
	})
	for _, label := range missing {
		outcome.Record(d.result("label-add", label, err, "label already present"))
	}
}

func (d *Dispatcher) addAssignees(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, assignees []string) {
	if len(assignees) == 0 {
		return
	}
	err := d.retry(ctx, func() error {
		return platform.AddAssignees(ctx, owner, repo, number, assignees)
	})
	for _, a := range assignees {
		outcome.Record(d.result("assignee-add", a, err, "assignee already set"))
	}
}

func (d *Dispatcher) requestReviewers(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, actor string, reviewers []string) {
	if len(reviewers) == 0 {
		return
	}

	requested := make(map[string]struct{})
	if current, err := platform.RequestedReviewers(ctx, owner, repo, number); err == nil {
		for _, r := range current {
			requested[r] = struct{}{}
		}
	} else {
		d.logger.Warn("failed to list requested reviewers, requesting blind", "error", err)
	}

	var missing []string
	for _, r := range reviewers {
		if r == actor {
			outcome.Record(core.ActionResult{Action: "reviewer-request", Target: r, Status: core.ResultSkipped, Reason: "author cannot review own pull request"})
			continue
		}
		if _, ok := requested[r]; ok {
			outcome.Record(core.ActionResult{Action: "reviewer-request", Target: r, Status: core.ResultSkipped, Reason: "reviewer already requested"})
			continue
		}
		missing = append(missing, r)
	}
	if len(missing) == 0 {
		return
	}

	err := d.retry(ctx, func() error {
		return platform.RequestReviewers(ctx, owner, repo, number, missing)
	})
	for _, r := range missing {
		outcome.Record(d.result("reviewer-request", r, err, "reviewer already requested"))
	}
}

func (d *Dispatcher) setStatus(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo, sha string, status *core.StatusCheck) {
	if status == nil {
		return
	}
	if sha == "" {
		outcome.Record(core.ActionResult{Action: "status-check", Target: status.Context, Status: core.ResultSkipped, Reason: "no head commit to report on"})
		return
	}
	err := d.retry(ctx, func() error {
		return platform.SetCommitStatus(ctx, owner, repo, sha, *status)
	})
	outcome.Record(d.result("status-check", status.Context, err, "status already set"))
}

func (d *Dispatcher) setState(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, state core.TargetState) {
	if state == "" {
		return
	}
	err := d.retry(ctx, func() error {
		return platform.SetIssueState(ctx, owner, repo, number, state)
	})
	outcome.Record(d.result("state-change", string(state), err, "state already set"))
}

// postComment posts the plan's comment, unless a prior bot comment already
// carries the plan's idempotency marker. Comments are the one action that is
// not naturally idempotent on the platform side, so the marker lookup is what
// keeps duplicate deliveries from double-posting.
func (d *Dispatcher) postComment(ctx context.Context, platform core.Platform, outcome *core.DispatchOutcome, owner, repo string, number int, body, marker string) {
	if body == "" {
		return
	}

	if marker != "" {
		exists, err := platform.HasBotComment(ctx, owner, repo, number, core.MarkerTag(marker))
		if err != nil {
			d.logger.Warn("idempotency lookup failed, posting anyway", "marker", marker, "error", err)
		} else if exists {
			outcome.Record(core.ActionResult{Action: "comment", Target: marker, Status: core.ResultSkipped, Reason: "comment already posted"})
			return
		}
		body = body + "\n\n" + core.MarkerTag(marker)
	}

	err := d.retry(ctx, func() error {
		return platform.PostComment(ctx, owner, repo, number, body)
	})
	outcome.Record(d.result("comment", marker, err, "comment already posted"))
}

// currentLabelSet fetches the labels present on the issue. A lookup failure
// degrades to applying blind: the platform itself treats duplicate label adds
// as no-ops.
func (d *Dispatcher) currentLabelSet(ctx context.Context, platform core.Platform, owner, repo string, number int) map[string]struct{} {
	labels, err := platform.CurrentLabels(ctx, owner, repo, number)
	if err != nil {
		d.logger.Warn("failed to list current labels, applying blind", "error", err)
		return nil
	}
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

// result turns an action error into the recorded verdict: nil is applied, an
// idempotency conflict is skipped, anything else is failed.
func (d *Dispatcher) result(action, target string, err error, skipReason string) core.ActionResult {
	switch {
	case err == nil:
		return core.ActionResult{Action: action, Target: target, Status: core.ResultApplied}
	case core.IsAlreadyApplied(err):
		return core.ActionResult{Action: action, Target: target, Status: core.ResultSkipped, Reason: skipReason}
	default:
		return core.ActionResult{Action: action, Target: target, Status: core.ResultFailed, Err: err}
	}
}

// retry runs fn, retrying only transient failures with exponential backoff.
// Non-transient errors return immediately so permanent failures are surfaced
// without delay.
func (d *Dispatcher) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			delay := d.baseDelay << (attempt - 1)
			if delay > maxBackoff {
				delay = maxBackoff
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = fn()
		if err == nil || !core.IsTransient(err) {
			return err
		}
		d.logger.Warn("transient platform failure, will retry", "attempt", attempt+1, "error", err)
	}
	return fmt.Errorf("gave up after %d attempts: %w", d.attempts, err)
}
