// Package core defines the essential data structures and interfaces that form
// the backbone of the automation pipeline: events, findings, commands, action
// plans, dispatch outcomes, and the platform capability contract.
package core

import (
	"fmt"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/google/uuid"
)

// EventKind identifies the webhook event shape carried by an Event.
type EventKind string

const (
	PullRequestOpened          EventKind = "pull_request_opened"
	PullRequestUpdated         EventKind = "pull_request_updated"
	IssueOpened                EventKind = "issue_opened"
	IssueCommentCreated        EventKind = "issue_comment_created"
	PullRequestReviewSubmitted EventKind = "pull_request_review_submitted"
)

// Event is the internal, immutable view of a single webhook delivery. It acts
// as an anti-corruption layer over the raw GitHub payloads: constructors below
// validate the payload shape before anything downstream sees it. One Event is
// created per delivery and discarded after dispatch completes.
type Event struct {
	Kind       EventKind
	DeliveryID string

	RepoOwner    string
	RepoName     string
	RepoFullName string

	Actor      string
	ReceivedAt time.Time

	InstallationID int64

	// Issue or pull request number the event refers to.
	Number int

	// Title and Body are set for issue and pull request payloads.
	Title string
	Body  string

	// CommentBody is set for comment-bearing payloads. CommentID is the
	// platform's identifier for that comment; it is stable across duplicate
	// deliveries and keys comment idempotency markers.
	CommentBody string
	CommentID   int64

	// ReviewState is set for review payloads (approved, changes_requested, commented).
	ReviewState string

	// Pull request details, set for PR payloads.
	HeadSHA string
	Merged  bool
}

// deliveryID returns the given webhook delivery ID, or a generated one when
// the transport did not forward the header.
func deliveryID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func repoParts(repo *github.Repository) (owner, name, full string, err error) {
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return "", "", "", fmt.Errorf("repository or owner information is missing from the event")
	}
	return repo.GetOwner().GetLogin(), repo.GetName(), repo.GetFullName(), nil
}

// EventFromPullRequest transforms a raw PullRequestEvent into an Event.
// Only the "opened", "synchronize", "reopened", and merged "closed" actions
// are of interest; anything else is rejected with a validation error.
func EventFromPullRequest(event *github.PullRequestEvent, delivery string) (*Event, error) {
	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("%w: pull request payload is missing", ErrValidation)
	}

	var kind EventKind
	switch event.GetAction() {
	case "opened":
		kind = PullRequestOpened
	case "synchronize", "reopened":
		kind = PullRequestUpdated
	case "closed":
		if !pr.GetMerged() {
			return nil, fmt.Errorf("%w: closed pull request was not merged", ErrValidation)
		}
		kind = PullRequestUpdated
	default:
		return nil, fmt.Errorf("%w: unsupported pull request action %q", ErrValidation, event.GetAction())
	}

	owner, name, full, err := repoParts(event.GetRepo())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("%w: invalid pull request number: %d", ErrValidation, pr.GetNumber())
	}
	if pr.GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("%w: pull request author is missing", ErrValidation)
	}

	return &Event{
		Kind:           kind,
		DeliveryID:     deliveryID(delivery),
		RepoOwner:      owner,
		RepoName:       name,
		RepoFullName:   full,
		Actor:          pr.GetUser().GetLogin(),
		ReceivedAt:     time.Now().UTC(),
		InstallationID: event.GetInstallation().GetID(),
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.GetBody(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Merged:         pr.GetMerged(),
	}, nil
}

// EventFromIssues transforms a raw IssuesEvent into an Event. Only newly
// opened issues are handled.
func EventFromIssues(event *github.IssuesEvent, delivery string) (*Event, error) {
	if event.GetAction() != "opened" {
		return nil, fmt.Errorf("%w: unsupported issues action %q", ErrValidation, event.GetAction())
	}
	issue := event.GetIssue()
	if issue == nil || issue.GetNumber() <= 0 {
		return nil, fmt.Errorf("%w: issue payload is missing or invalid", ErrValidation)
	}
	owner, name, full, err := repoParts(event.GetRepo())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return &Event{
		Kind:           IssueOpened,
		DeliveryID:     deliveryID(delivery),
		RepoOwner:      owner,
		RepoName:       name,
		RepoFullName:   full,
		Actor:          issue.GetUser().GetLogin(),
		ReceivedAt:     time.Now().UTC(),
		InstallationID: event.GetInstallation().GetID(),
		Number:         issue.GetNumber(),
		Title:          issue.GetTitle(),
		Body:           issue.GetBody(),
	}, nil
}

// EventFromIssueComment transforms a raw IssueCommentEvent into an Event.
// Bot-authored comments are rejected so the bot never reacts to itself.
func EventFromIssueComment(event *github.IssueCommentEvent, delivery, botLogin string) (*Event, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("%w: unsupported issue comment action %q", ErrValidation, event.GetAction())
	}
	comment := event.GetComment()
	if comment == nil || comment.GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("%w: commenter information is missing from the event", ErrValidation)
	}
	if botLogin != "" && comment.GetUser().GetLogin() == botLogin {
		return nil, fmt.Errorf("%w: ignoring our own comment", ErrValidation)
	}
	issue := event.GetIssue()
	if issue == nil || issue.GetNumber() <= 0 {
		return nil, fmt.Errorf("%w: issue payload is missing or invalid", ErrValidation)
	}
	owner, name, full, err := repoParts(event.GetRepo())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return &Event{
		Kind:           IssueCommentCreated,
		DeliveryID:     deliveryID(delivery),
		RepoOwner:      owner,
		RepoName:       name,
		RepoFullName:   full,
		Actor:          comment.GetUser().GetLogin(),
		ReceivedAt:     time.Now().UTC(),
		InstallationID: event.GetInstallation().GetID(),
		Number:         issue.GetNumber(),
		Title:          issue.GetTitle(),
		CommentBody:    comment.GetBody(),
		CommentID:      comment.GetID(),
	}, nil
}

// EventFromPullRequestReview transforms a raw PullRequestReviewEvent into an
// Event. Reviews without a body carry nothing the pipeline can act on.
func EventFromPullRequestReview(event *github.PullRequestReviewEvent, delivery, botLogin string) (*Event, error) {
	if event.GetAction() != "submitted" {
		return nil, fmt.Errorf("%w: unsupported review action %q", ErrValidation, event.GetAction())
	}
	review := event.GetReview()
	if review == nil || review.GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("%w: reviewer information is missing from the event", ErrValidation)
	}
	if botLogin != "" && review.GetUser().GetLogin() == botLogin {
		return nil, fmt.Errorf("%w: ignoring our own review", ErrValidation)
	}
	pr := event.GetPullRequest()
	if pr == nil || pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("%w: pull request payload is missing or invalid", ErrValidation)
	}
	owner, name, full, err := repoParts(event.GetRepo())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return &Event{
		Kind:           PullRequestReviewSubmitted,
		DeliveryID:     deliveryID(delivery),
		RepoOwner:      owner,
		RepoName:       name,
		RepoFullName:   full,
		Actor:          review.GetUser().GetLogin(),
		ReceivedAt:     time.Now().UTC(),
		InstallationID: event.GetInstallation().GetID(),
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		CommentBody:    review.GetBody(),
		CommentID:      review.GetID(),
		ReviewState:    review.GetState(),
		HeadSHA:        pr.GetHead().GetSHA(),
	}, nil
}
