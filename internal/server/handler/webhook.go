// Package handler provides HTTP handlers for the repo-butler server.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// WebhookHandler verifies, parses, and enqueues incoming GitHub webhooks.
// Signature verification and payload parsing happen here; the pipeline only
// ever sees validated events.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes a GitHub webhook request.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHubWebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	raw, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}
	delivery := github.DeliveryID(r)

	var event *core.Event
	switch e := raw.(type) {
	case *github.PullRequestEvent:
		event, err = core.EventFromPullRequest(e, delivery)
	case *github.IssuesEvent:
		event, err = core.EventFromIssues(e, delivery)
	case *github.IssueCommentEvent:
		event, err = core.EventFromIssueComment(e, delivery, h.cfg.BotLogin)
	case *github.PullRequestReviewEvent:
		event, err = core.EventFromPullRequestReview(e, delivery, h.cfg.BotLogin)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
		return
	}

	if err != nil {
		// Validation failures are skips, not errors: the delivery is simply
		// not for us (wrong action, bot-authored comment, missing fields).
		h.logger.Debug("skipping delivery", "delivery", delivery, "reason", err.Error())
		_, _ = fmt.Fprint(w, "Event skipped")
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		h.logger.Error("failed to queue delivery", "delivery", event.DeliveryID, "repo", event.RepoFullName, "error", err)
		http.Error(w, "Failed to queue delivery", http.StatusInternalServerError)
		return
	}

	h.logger.Info("delivery queued", "delivery", event.DeliveryID, "repo", event.RepoFullName, "kind", event.Kind)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Delivery accepted")
}
