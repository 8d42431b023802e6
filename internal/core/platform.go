package core

import (
	"context"
	"time"
)

// ChangedFile is one file touched by a pull request. It is owned by the PR
// payload and read-only to classifiers.
type ChangedFile struct {
	Path      string
	Additions int
	Deletions int
	// AddedLines holds the raw content of every added line, extracted from
	// the unified diff fragment. This is what the security scanner reads.
	AddedLines []string
}

// Changes returns the total number of changed lines in the file.
func (f ChangedFile) Changes() int {
	return f.Additions + f.Deletions
}

// MergedPull is a minimal view of a recently merged pull request, used to
// render changelogs.
type MergedPull struct {
	Number   int
	Title    string
	Author   string
	MergedAt time.Time
}

// Platform is the capability contract the pipeline has against the code
// hosting platform. Implementations must map their transport errors onto the
// pipeline taxonomy (ErrRateLimited, ErrPermanent) and must be safe for
// concurrent use across deliveries.
type Platform interface {
	// ChangedFiles fetches the file set of a pull request, including the
	// added-line content needed by the security scanner.
	ChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)

	// HasPriorContribution reports whether the actor has a previously merged
	// contribution in the repository.
	HasPriorContribution(ctx context.Context, owner, repo, actor string) (bool, error)

	// HasBotComment reports whether a prior bot comment on the issue carries
	// the given idempotency marker.
	HasBotComment(ctx context.Context, owner, repo string, number int, marker string) (bool, error)

	// CurrentLabels lists the labels currently present on the issue.
	CurrentLabels(ctx context.Context, owner, repo string, number int) ([]string, error)

	// RequestedReviewers lists the logins with a pending review request.
	RequestedReviewers(ctx context.Context, owner, repo string, number int) ([]string, error)

	// RecentMergedPulls lists up to limit recently merged pull requests,
	// newest first.
	RecentMergedPulls(ctx context.Context, owner, repo string, limit int) ([]MergedPull, error)

	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
	RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error
	AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
	SetCommitStatus(ctx context.Context, owner, repo, sha string, status StatusCheck) error
	SetIssueState(ctx context.Context, owner, repo string, number int, state TargetState) error
}

// PlatformFactory builds a Platform bound to a specific App installation.
// The server resolves one per delivery; the CLI substitutes a PAT-backed
// implementation.
type PlatformFactory func(ctx context.Context, installationID int64) (Platform, error)
