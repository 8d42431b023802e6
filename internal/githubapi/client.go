// Package githubapi implements the platform capability contract on top of
// the official go-github client.
package githubapi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-butler/internal/core"
	"github.com/sevigo/repo-butler/internal/diff"
)

type client struct {
	gh       *github.Client
	botLogin string
	logger   *slog.Logger
}

// NewClient wraps an authenticated go-github client as a core.Platform.
// botLogin identifies the bot's own comments for idempotency lookups.
func NewClient(gh *github.Client, botLogin string, logger *slog.Logger) core.Platform {
	return &client{gh: gh, botLogin: botLogin, logger: logger}
}

// ChangedFiles retrieves the file set of a pull request, paginating through
// the API and extracting added-line content from each patch fragment.
func (c *client) ChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error) {
	var files []core.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, mapError(err)
		}

		for _, f := range page {
			cf := core.ChangedFile{
				Path:      f.GetFilename(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
			}
			if patch := f.GetPatch(); patch != "" {
				added, err := diff.AddedLines(cf.Path, patch)
				if err != nil {
					c.logger.Warn("skipping unparseable patch", "file", cf.Path, "error", err)
				} else {
					cf.AddedLines = added
				}
			}
			files = append(files, cf)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// HasPriorContribution reports whether the actor has a previously merged pull
// request in the repository. The currently open pull request never counts.
func (c *client) HasPriorContribution(ctx context.Context, owner, repo, actor string) (bool, error) {
	query := fmt.Sprintf("repo:%s/%s author:%s is:pr is:merged", owner, repo, actor)
	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return false, mapError(err)
	}
	return result.GetTotal() > 0, nil
}

// HasBotComment scans prior bot comments on the issue for the marker tag.
func (c *client) HasBotComment(ctx context.Context, owner, repo string, number int, marker string) (bool, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return false, mapError(err)
		}
		for _, comment := range comments {
			if c.botLogin != "" && comment.GetUser().GetLogin() != c.botLogin {
				continue
			}
			if strings.Contains(comment.GetBody(), marker) {
				return true, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return false, nil
}

func (c *client) CurrentLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var labels []string
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, mapError(err)
		}
		for _, l := range page {
			labels = append(labels, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return labels, nil
}

func (c *client) RequestedReviewers(ctx context.Context, owner, repo string, number int) ([]string, error) {
	reviewers, _, err := c.gh.PullRequests.ListReviewers(ctx, owner, repo, number, nil)
	if err != nil {
		return nil, mapError(err)
	}
	logins := make([]string, 0, len(reviewers.Users))
	for _, u := range reviewers.Users {
		logins = append(logins, u.GetLogin())
	}
	return logins, nil
}

// RecentMergedPulls lists recently merged pull requests, newest first.
func (c *client) RecentMergedPulls(ctx context.Context, owner, repo string, limit int) ([]core.MergedPull, error) {
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 50},
	}
	prs, _, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, mapError(err)
	}

	var merged []core.MergedPull
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		merged = append(merged, core.MergedPull{
			Number:   pr.GetNumber(),
			Title:    pr.GetTitle(),
			Author:   pr.GetUser().GetLogin(),
			MergedAt: pr.GetMergedAt().Time,
		})
		if len(merged) >= limit {
			break
		}
	}
	return merged, nil
}

func (c *client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	return mapError(err)
}

// RemoveLabel removes one label. A 404 means the label is not on the issue,
// which is an idempotency conflict rather than a failure.
func (c *client) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	_, err := c.gh.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label)
	if isNotFound(err) {
		return fmt.Errorf("%w: label %q not present", core.ErrAlreadyApplied, label)
	}
	return mapError(err)
}

func (c *client) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error {
	_, _, err := c.gh.PullRequests.RequestReviewers(ctx, owner, repo, number, github.ReviewersRequest{
		Reviewers: reviewers,
	})
	return mapError(err)
}

func (c *client) AddAssignees(ctx context.Context, owner, repo string, number int, assignees []string) error {
	_, _, err := c.gh.Issues.AddAssignees(ctx, owner, repo, number, assignees)
	return mapError(err)
}

func (c *client) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: &body})
	return mapError(err)
}

func (c *client) SetCommitStatus(ctx context.Context, owner, repo, sha string, status core.StatusCheck) error {
	state := string(status.State)
	_, _, err := c.gh.Repositories.CreateStatus(ctx, owner, repo, sha, &github.RepoStatus{
		State:       &state,
		Context:     &status.Context,
		Description: &status.Description,
	})
	return mapError(err)
}

func (c *client) SetIssueState(ctx context.Context, owner, repo string, number int, state core.TargetState) error {
	s := string(state)
	_, _, err := c.gh.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{State: &s})
	return mapError(err)
}
