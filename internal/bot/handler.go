// Package bot wires the pipeline stages together: it routes a validated
// event to the right classifier subset or the command path, builds the action
// plan, and dispatches it. Handle is the single entry point per delivery.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/repo-butler/internal/ai"
	"github.com/sevigo/repo-butler/internal/classify"
	"github.com/sevigo/repo-butler/internal/command"
	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
	"github.com/sevigo/repo-butler/internal/dispatch"
	"github.com/sevigo/repo-butler/internal/plan"
)

// changelogLimit is how many merged pull requests /changelog lists.
const changelogLimit = 10

// Handler processes one webhook delivery end to end. It holds no per-event
// state; deliveries can be handled concurrently.
type Handler struct {
	cfg        *config.Config
	registry   *classify.Registry
	dispatcher *dispatch.Dispatcher
	platforms  core.PlatformFactory
	reviewer   *ai.Reviewer
	logger     *slog.Logger
}

// NewHandler builds the delivery handler. reviewer may be nil, which disables
// the AI review supplement.
func NewHandler(cfg *config.Config, registry *classify.Registry, dispatcher *dispatch.Dispatcher, platforms core.PlatformFactory, reviewer *ai.Reviewer, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatcher,
		platforms:  platforms,
		reviewer:   reviewer,
		logger:     logger,
	}
}

// Run implements core.Job for the worker pool.
func (h *Handler) Run(ctx context.Context, event *core.Event) error {
	_, err := h.Handle(ctx, event)
	return err
}

// Handle routes the event, builds its plan, and dispatches it. The returned
// outcome lists every attempted action; an error is returned only when the
// delivery could not be processed at all (e.g. the file set could not be
// fetched), never for per-action failures.
func (h *Handler) Handle(ctx context.Context, event *core.Event) (*core.DispatchOutcome, error) {
	platform, err := h.platforms(ctx, event.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve platform capability: %w", err)
	}

	switch event.Kind {
	case core.PullRequestOpened, core.PullRequestUpdated:
		return h.handlePullRequest(ctx, platform, event)
	case core.IssueOpened:
		return h.handleIssueOpened(ctx, platform, event)
	case core.IssueCommentCreated, core.PullRequestReviewSubmitted:
		return h.handleComment(ctx, platform, event)
	default:
		h.logger.Debug("skipping unsupported event kind", "kind", event.Kind, "delivery", event.DeliveryID)
		outcome := &core.DispatchOutcome{DeliveryID: event.DeliveryID}
		outcome.Record(core.ActionResult{Action: "route", Status: core.ResultSkipped, Reason: "unsupported event kind"})
		return outcome, nil
	}
}

// handlePullRequest classifies the changed file set and dispatches the
// resulting plan. A merged pull request gets only a thank-you comment.
func (h *Handler) handlePullRequest(ctx context.Context, platform core.Platform, event *core.Event) (*core.DispatchOutcome, error) {
	if event.Merged {
		return h.dispatcher.Dispatch(ctx, platform, event, plan.MergedThanks(event))
	}

	files, err := platform.ChangedFiles(ctx, event.RepoOwner, event.RepoName, event.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changed files for %s#%d: %w", event.RepoFullName, event.Number, err)
	}

	findings := h.registry.ClassifyFiles(ctx, files)

	pc := plan.Context{Event: event, Files: files}
	if h.cfg.WelcomeNewContributors && event.Kind == core.PullRequestOpened {
		pc.FirstContribution, pc.WelcomePosted = h.welcomeState(ctx, platform, event)
	}

	outcome, err := h.dispatcher.Dispatch(ctx, platform, event, plan.FromFindings(findings, pc))
	if err != nil {
		return nil, err
	}

	h.maybeReview(ctx, platform, event, files, outcome)
	return outcome, nil
}

// welcomeState resolves whether the actor deserves a welcome and whether one
// was already posted. Lookup failures default to no welcome: a missed
// greeting beats a duplicated one.
func (h *Handler) welcomeState(ctx context.Context, platform core.Platform, event *core.Event) (first, posted bool) {
	prior, err := platform.HasPriorContribution(ctx, event.RepoOwner, event.RepoName, event.Actor)
	if err != nil {
		h.logger.Warn("failed to check prior contributions", "actor", event.Actor, "error", err)
		return false, false
	}
	if prior {
		return false, false
	}

	posted, err = platform.HasBotComment(ctx, event.RepoOwner, event.RepoName, event.Number, core.MarkerTag(plan.WelcomeMarker(event)))
	if err != nil {
		h.logger.Warn("failed to check for prior welcome", "error", err)
		return false, false
	}
	return true, posted
}

// handleIssueOpened runs the keyword classifiers over the issue text.
func (h *Handler) handleIssueOpened(ctx context.Context, platform core.Platform, event *core.Event) (*core.DispatchOutcome, error) {
	findings := h.registry.ClassifyText(ctx, event.Title, event.Body)
	return h.dispatcher.Dispatch(ctx, platform, event, plan.FromFindings(findings, plan.Context{Event: event}))
}

// handleComment runs the command path. Commands are exclusive of passive
// classification: a comment either carries a command or the delivery is a
// no-op.
func (h *Handler) handleComment(ctx context.Context, platform core.Platform, event *core.Event) (*core.DispatchOutcome, error) {
	cmd, err := command.Parse(event.CommentBody, event.Actor)
	if err != nil {
		if errors.Is(err, command.ErrUnknownCommand) {
			h.logger.Debug("unknown command, answering with help hint", "delivery", event.DeliveryID, "error", err)
			return h.dispatcher.Dispatch(ctx, platform, event, plan.UnknownCommandHint(event))
		}
		return nil, err
	}
	if cmd == nil {
		outcome := &core.DispatchOutcome{DeliveryID: event.DeliveryID}
		outcome.Record(core.ActionResult{Action: "route", Status: core.ResultSkipped, Reason: "no command in comment"})
		return outcome, nil
	}

	pc := plan.Context{Event: event}
	if cmd.Name == "changelog" {
		pulls, err := platform.RecentMergedPulls(ctx, event.RepoOwner, event.RepoName, changelogLimit)
		if err != nil {
			h.logger.Warn("failed to list merged pulls for changelog", "error", err)
		} else {
			pc.RecentPulls = pulls
		}
	}

	return h.dispatcher.Dispatch(ctx, platform, event, plan.FromCommand(cmd, pc))
}

// maybeReview posts the optional AI review comment for small pull requests.
// It is best-effort: failures are recorded in the outcome but never returned.
func (h *Handler) maybeReview(ctx context.Context, platform core.Platform, event *core.Event, files []core.ChangedFile, outcome *core.DispatchOutcome) {
	if h.reviewer == nil || !h.cfg.EnableAIReviews {
		return
	}
	if len(files) == 0 || len(files) > ai.MaxReviewFiles {
		return
	}

	marker := fmt.Sprintf("ai-review:%s#%d:%s", event.RepoFullName, event.Number, event.HeadSHA)
	exists, err := platform.HasBotComment(ctx, event.RepoOwner, event.RepoName, event.Number, core.MarkerTag(marker))
	if err == nil && exists {
		outcome.Record(core.ActionResult{Action: "ai-review", Target: marker, Status: core.ResultSkipped, Reason: "comment already posted"})
		return
	}

	review, err := h.reviewer.Review(ctx, files)
	if err != nil {
		h.logger.Warn("AI review failed", "repo", event.RepoFullName, "pr", event.Number, "error", err)
		outcome.Record(core.ActionResult{Action: "ai-review", Target: marker, Status: core.ResultFailed, Err: err})
		return
	}
	if review == "" {
		return
	}

	body := "**AI code review:**\n\n" + review + "\n\n" + core.MarkerTag(marker)
	if err := platform.PostComment(ctx, event.RepoOwner, event.RepoName, event.Number, body); err != nil {
		outcome.Record(core.ActionResult{Action: "ai-review", Target: marker, Status: core.ResultFailed, Err: err})
		return
	}
	outcome.Record(core.ActionResult{Action: "ai-review", Target: marker, Status: core.ResultApplied})
}
