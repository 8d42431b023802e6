package bot

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-butler/internal/classify"
	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
	"github.com/sevigo/repo-butler/internal/dispatch"
)

// stubPlatform serves canned lookups and records mutations.
type stubPlatform struct {
	files        []core.ChangedFile
	priorContrib bool
	botComments  []string
	mergedPulls  []core.MergedPull

	labels    []string
	assignees []string
	reviewers []string
	posted    []string
	statuses  []core.StatusCheck
	states    []core.TargetState
}

func (s *stubPlatform) ChangedFiles(context.Context, string, string, int) ([]core.ChangedFile, error) {
	return s.files, nil
}

func (s *stubPlatform) HasPriorContribution(context.Context, string, string, string) (bool, error) {
	return s.priorContrib, nil
}

func (s *stubPlatform) HasBotComment(_ context.Context, _, _ string, _ int, marker string) (bool, error) {
	for _, c := range s.botComments {
		if strings.Contains(c, marker) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubPlatform) CurrentLabels(context.Context, string, string, int) ([]string, error) {
	return s.labels, nil
}

func (s *stubPlatform) RequestedReviewers(context.Context, string, string, int) ([]string, error) {
	return nil, nil
}

func (s *stubPlatform) RecentMergedPulls(context.Context, string, string, int) ([]core.MergedPull, error) {
	return s.mergedPulls, nil
}

func (s *stubPlatform) AddLabels(_ context.Context, _, _ string, _ int, labels []string) error {
	s.labels = append(s.labels, labels...)
	return nil
}

func (s *stubPlatform) RemoveLabel(_ context.Context, _, _ string, _ int, label string) error {
	return nil
}

func (s *stubPlatform) RequestReviewers(_ context.Context, _, _ string, _ int, reviewers []string) error {
	s.reviewers = append(s.reviewers, reviewers...)
	return nil
}

func (s *stubPlatform) AddAssignees(_ context.Context, _, _ string, _ int, assignees []string) error {
	s.assignees = append(s.assignees, assignees...)
	return nil
}

func (s *stubPlatform) PostComment(_ context.Context, _, _ string, _ int, body string) error {
	s.posted = append(s.posted, body)
	s.botComments = append(s.botComments, body)
	return nil
}

func (s *stubPlatform) SetCommitStatus(_ context.Context, _, _, _ string, status core.StatusCheck) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubPlatform) SetIssueState(_ context.Context, _, _ string, _ int, state core.TargetState) error {
	s.states = append(s.states, state)
	return nil
}

func newTestHandler(platform *stubPlatform) *Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		BotLogin:               "repo-butler[bot]",
		SecurityScanning:       true,
		WelcomeNewContributors: true,
	}
	registry := classify.NewRegistry(config.DefaultRules(), cfg.SecurityScanning, logger)
	dispatcher := dispatch.NewDispatcher(1, time.Millisecond, logger)
	factory := func(context.Context, int64) (core.Platform, error) {
		return platform, nil
	}
	return NewHandler(cfg, registry, dispatcher, factory, nil, logger)
}

func prEvent(kind core.EventKind) *core.Event {
	return &core.Event{
		Kind:         kind,
		DeliveryID:   "d-1",
		RepoOwner:    "sevigo",
		RepoName:     "demo",
		RepoFullName: "sevigo/demo",
		Actor:        "alice",
		Number:       7,
		HeadSHA:      "abc1234",
	}
}

func TestHandlePullRequestOpened(t *testing.T) {
	platform := &stubPlatform{
		priorContrib: true,
		files: []core.ChangedFile{
			{Path: "settings.py", Additions: 20, AddedLines: []string{`API_KEY = "sk_live_abc"`}},
			{Path: "README.md", Additions: 5},
		},
	}
	h := newTestHandler(platform)

	outcome, err := h.Handle(context.Background(), prEvent(core.PullRequestOpened))
	assert.NoError(t, err)
	assert.NotNil(t, outcome)

	assert.Contains(t, platform.labels, "lang:python")
	assert.Contains(t, platform.labels, "documentation")
	assert.Contains(t, platform.labels, "size:small")
	assert.Contains(t, platform.labels, "security:hardcoded-credential")

	if assert.Len(t, platform.statuses, 1) {
		assert.Equal(t, core.StatusFailure, platform.statuses[0].State)
	}

	if assert.Len(t, platform.posted, 1) {
		assert.Contains(t, platform.posted[0], "Pull request analysis")
		// Python changes with no test file: the review notes ask for tests.
		assert.Contains(t, platform.posted[0], "Automated review notes")
		assert.Contains(t, platform.posted[0], "Consider adding tests for your code changes")
		assert.Contains(t, platform.posted[0], "Security scan results")
		// A returning contributor never gets the welcome section.
		assert.NotContains(t, platform.posted[0], "first contribution")
	}
}

func TestHandlePullRequestWelcomesFirstContribution(t *testing.T) {
	platform := &stubPlatform{
		files: []core.ChangedFile{{Path: "main.go", Additions: 3}},
	}
	h := newTestHandler(platform)

	_, err := h.Handle(context.Background(), prEvent(core.PullRequestOpened))
	assert.NoError(t, err)

	if assert.Len(t, platform.posted, 1) {
		assert.Contains(t, platform.posted[0], "Welcome @alice")
	}
}

func TestHandlePullRequestUpdatedSkipsWelcome(t *testing.T) {
	platform := &stubPlatform{
		files: []core.ChangedFile{{Path: "main.go", Additions: 3}},
	}
	h := newTestHandler(platform)

	_, err := h.Handle(context.Background(), prEvent(core.PullRequestUpdated))
	assert.NoError(t, err)

	if assert.Len(t, platform.posted, 1) {
		assert.NotContains(t, platform.posted[0], "Welcome @alice")
	}
}

func TestHandleMergedPullRequest(t *testing.T) {
	platform := &stubPlatform{}
	h := newTestHandler(platform)

	event := prEvent(core.PullRequestUpdated)
	event.Merged = true

	_, err := h.Handle(context.Background(), event)
	assert.NoError(t, err)

	assert.Empty(t, platform.labels)
	if assert.Len(t, platform.posted, 1) {
		assert.Contains(t, platform.posted[0], "Thanks @alice")
	}
}

func TestHandleIssueOpened(t *testing.T) {
	platform := &stubPlatform{}
	h := newTestHandler(platform)

	event := prEvent(core.IssueOpened)
	event.HeadSHA = ""
	event.Title = "URGENT: crash on login"
	event.Body = "Stack trace attached."

	_, err := h.Handle(context.Background(), event)
	assert.NoError(t, err)

	assert.Contains(t, platform.labels, "bug")
	assert.Contains(t, platform.labels, "priority:urgent")
	assert.Empty(t, platform.statuses)
}

func TestHandleComment(t *testing.T) {
	t.Run("Assign command", func(t *testing.T) {
		platform := &stubPlatform{}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "/assign @carol"
		event.CommentID = 42

		_, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		assert.Equal(t, []string{"carol"}, platform.assignees)
	})

	t.Run("Close command", func(t *testing.T) {
		platform := &stubPlatform{}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "/close"
		event.CommentID = 43

		_, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		assert.Equal(t, []core.TargetState{core.TargetClosed}, platform.states)
	})

	t.Run("Changelog fetches merged pulls", func(t *testing.T) {
		platform := &stubPlatform{
			mergedPulls: []core.MergedPull{
				{Number: 5, Title: "Add retries", Author: "alice", MergedAt: time.Now()},
			},
		}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "/changelog"
		event.CommentID = 44

		_, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		if assert.Len(t, platform.posted, 1) {
			assert.Contains(t, platform.posted[0], "Add retries (#5) by @alice")
		}
	})

	t.Run("Unknown command answers with help", func(t *testing.T) {
		platform := &stubPlatform{}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "/frobnicate"
		event.CommentID = 45

		_, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		if assert.Len(t, platform.posted, 1) {
			assert.Contains(t, platform.posted[0], "Unrecognized command")
		}
	})

	t.Run("Plain comment is a no-op", func(t *testing.T) {
		platform := &stubPlatform{}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "Looks good to me."

		outcome, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		assert.Empty(t, platform.posted)
		if assert.Len(t, outcome.Results, 1) {
			assert.Equal(t, core.ResultSkipped, outcome.Results[0].Status)
		}
	})

	t.Run("Duplicate command delivery skips the comment", func(t *testing.T) {
		platform := &stubPlatform{}
		h := newTestHandler(platform)

		event := prEvent(core.IssueCommentCreated)
		event.CommentBody = "/joke"
		event.CommentID = 46

		_, err := h.Handle(context.Background(), event)
		assert.NoError(t, err)
		_, err = h.Handle(context.Background(), event)
		assert.NoError(t, err)

		assert.Len(t, platform.posted, 1)
	})
}

func TestHandleUnsupportedKind(t *testing.T) {
	platform := &stubPlatform{}
	h := newTestHandler(platform)

	event := prEvent(core.EventKind("star_created"))

	outcome, err := h.Handle(context.Background(), event)
	assert.NoError(t, err)
	if assert.Len(t, outcome.Results, 1) {
		assert.Equal(t, core.ResultSkipped, outcome.Results[0].Status)
	}
	assert.Empty(t, platform.posted)
}
