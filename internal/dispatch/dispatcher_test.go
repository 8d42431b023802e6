package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-butler/internal/core"
)

// fakePlatform records every mutating call and returns configurable errors.
type fakePlatform struct {
	labels         []string
	reviewers      []string
	botComments    []string
	addLabelsErr   error
	postCommentErr error
	setStatusErr   error
	removeLabelErr error

	addLabelsCalls   int
	postCommentCalls int
	posted           []string
	requested        []string
	assigned         []string
	statuses         []core.StatusCheck
	states           []core.TargetState
	removed          []string
}

func (f *fakePlatform) ChangedFiles(context.Context, string, string, int) ([]core.ChangedFile, error) {
	return nil, nil
}

func (f *fakePlatform) HasPriorContribution(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (f *fakePlatform) HasBotComment(_ context.Context, _, _ string, _ int, marker string) (bool, error) {
	for _, c := range f.botComments {
		if strings.Contains(c, marker) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePlatform) CurrentLabels(context.Context, string, string, int) ([]string, error) {
	return f.labels, nil
}

func (f *fakePlatform) RequestedReviewers(context.Context, string, string, int) ([]string, error) {
	return f.reviewers, nil
}

func (f *fakePlatform) RecentMergedPulls(context.Context, string, string, int) ([]core.MergedPull, error) {
	return nil, nil
}

func (f *fakePlatform) AddLabels(_ context.Context, _, _ string, _ int, labels []string) error {
	f.addLabelsCalls++
	if f.addLabelsErr != nil {
		return f.addLabelsErr
	}
	f.labels = append(f.labels, labels...)
	return nil
}

func (f *fakePlatform) RemoveLabel(_ context.Context, _, _ string, _ int, label string) error {
	if f.removeLabelErr != nil {
		return f.removeLabelErr
	}
	f.removed = append(f.removed, label)
	return nil
}

func (f *fakePlatform) RequestReviewers(_ context.Context, _, _ string, _ int, reviewers []string) error {
	f.requested = append(f.requested, reviewers...)
	return nil
}

func (f *fakePlatform) AddAssignees(_ context.Context, _, _ string, _ int, assignees []string) error {
	f.assigned = append(f.assigned, assignees...)
	return nil
}

func (f *fakePlatform) PostComment(_ context.Context, _, _ string, _ int, body string) error {
	f.postCommentCalls++
	if f.postCommentErr != nil {
		return f.postCommentErr
	}
	f.posted = append(f.posted, body)
	f.botComments = append(f.botComments, body)
	return nil
}

func (f *fakePlatform) SetCommitStatus(_ context.Context, _, _, _ string, status core.StatusCheck) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakePlatform) SetIssueState(_ context.Context, _, _ string, _ int, state core.TargetState) error {
	f.states = append(f.states, state)
	return nil
}

func testEvent() *core.Event {
	return &core.Event{
		Kind:         core.PullRequestOpened,
		DeliveryID:   "delivery-1",
		RepoOwner:    "sevigo",
		RepoName:     "demo",
		RepoFullName: "sevigo/demo",
		Actor:        "alice",
		Number:       7,
		HeadSHA:      "abc1234",
	}
}

func newTestDispatcher() *Dispatcher {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewDispatcher(3, time.Millisecond, logger)
}

func TestDispatchAppliesFullPlan(t *testing.T) {
	platform := &fakePlatform{}
	d := newTestDispatcher()

	p := &core.ActionPlan{
		LabelsToAdd: []string{"lang:go", "size:small"},
		Reviewers:   []string{"bob"},
		Status: &core.StatusCheck{
			Context: "security-scan",
			State:   core.StatusSuccess,
		},
		CommentBody:   "**Pull request analysis:**",
		CommentMarker: "pr-report:sevigo/demo#7:abc1234",
	}

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)

	applied, skipped, failed := outcome.Counts()
	assert.Equal(t, 5, applied)
	assert.Zero(t, skipped)
	assert.Zero(t, failed)

	assert.Equal(t, []string{"lang:go", "size:small"}, platform.labels)
	assert.Equal(t, []string{"bob"}, platform.requested)
	assert.Len(t, platform.statuses, 1)
	if assert.Len(t, platform.posted, 1) {
		// The marker tag is appended so a redelivery can find the comment.
		assert.Contains(t, platform.posted[0], core.MarkerTag(p.CommentMarker))
	}
}

func TestDispatchDuplicateDeliverySkipsEverything(t *testing.T) {
	platform := &fakePlatform{}
	d := newTestDispatcher()
	event := testEvent()

	p := &core.ActionPlan{
		LabelsToAdd:   []string{"lang:go"},
		Reviewers:     []string{"bob"},
		CommentBody:   "**Pull request analysis:**",
		CommentMarker: "pr-report:sevigo/demo#7:abc1234",
	}

	first, err := d.Dispatch(context.Background(), platform, event, p)
	assert.NoError(t, err)
	applied, _, _ := first.Counts()
	assert.Equal(t, 3, applied)

	platform.reviewers = []string{"bob"}

	second, err := d.Dispatch(context.Background(), platform, event, p)
	assert.NoError(t, err)
	applied, skipped, failed := second.Counts()
	assert.Zero(t, applied)
	assert.Equal(t, 3, skipped)
	assert.Zero(t, failed)

	assert.Equal(t, 1, platform.postCommentCalls)
	assert.Equal(t, []string{"lang:go"}, platform.labels)
}

func TestDispatchPartialFailure(t *testing.T) {
	platform := &fakePlatform{
		addLabelsErr: fmt.Errorf("boom: %w", core.ErrPermanent),
	}
	d := newTestDispatcher()

	p := &core.ActionPlan{
		LabelsToAdd:   []string{"lang:go"},
		CommentBody:   "analysis",
		CommentMarker: "pr-report:sevigo/demo#7:abc1234",
	}

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)

	applied, skipped, failed := outcome.Counts()
	assert.Equal(t, 1, failed)
	assert.Zero(t, skipped)
	// The comment still lands despite the label failure.
	assert.Equal(t, 1, applied)
	assert.Len(t, platform.posted, 1)
}

func TestDispatchRetriesTransientErrors(t *testing.T) {
	platform := &fakePlatform{
		addLabelsErr: fmt.Errorf("slow down: %w", core.ErrRateLimited),
	}
	d := newTestDispatcher()

	p := &core.ActionPlan{LabelsToAdd: []string{"lang:go"}}

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)

	assert.Equal(t, 3, platform.addLabelsCalls)
	_, _, failed := outcome.Counts()
	assert.Equal(t, 1, failed)
}

func TestDispatchPermanentErrorNotRetried(t *testing.T) {
	platform := &fakePlatform{
		addLabelsErr: fmt.Errorf("forbidden: %w", core.ErrPermanent),
	}
	d := newTestDispatcher()

	p := &core.ActionPlan{LabelsToAdd: []string{"lang:go"}}

	_, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)
	assert.Equal(t, 1, platform.addLabelsCalls)
}

func TestDispatchAlreadyAppliedIsSkipped(t *testing.T) {
	platform := &fakePlatform{
		removeLabelErr: fmt.Errorf("not there: %w", core.ErrAlreadyApplied),
		labels:         []string{"needs-triage"},
	}
	d := newTestDispatcher()

	p := &core.ActionPlan{LabelsToRemove: []string{"needs-triage"}}

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)

	applied, skipped, failed := outcome.Counts()
	assert.Zero(t, applied)
	assert.Equal(t, 1, skipped)
	assert.Zero(t, failed)
}

func TestDispatchAuthorNeverReviewsOwnPull(t *testing.T) {
	platform := &fakePlatform{}
	d := newTestDispatcher()

	p := &core.ActionPlan{Reviewers: []string{"alice", "bob"}}

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)

	assert.Equal(t, []string{"bob"}, platform.requested)
	applied, skipped, _ := outcome.Counts()
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, skipped)
}

func TestDispatchEmptyPlanIsNoop(t *testing.T) {
	platform := &fakePlatform{}
	d := newTestDispatcher()

	outcome, err := d.Dispatch(context.Background(), platform, testEvent(), &core.ActionPlan{})
	assert.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.Zero(t, platform.postCommentCalls)
}

func TestDispatchStateChange(t *testing.T) {
	platform := &fakePlatform{}
	d := newTestDispatcher()

	p := &core.ActionPlan{SetState: core.TargetClosed}

	_, err := d.Dispatch(context.Background(), platform, testEvent(), p)
	assert.NoError(t, err)
	assert.Equal(t, []core.TargetState{core.TargetClosed}, platform.states)
}

func TestDispatchNilPlatform(t *testing.T) {
	d := newTestDispatcher()
	_, err := d.Dispatch(context.Background(), nil, testEvent(), &core.ActionPlan{})
	assert.Error(t, err)
}
