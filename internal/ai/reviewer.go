// Package ai provides the optional Gemini-backed review comment for small
// pull requests. It is a best-effort supplement: any failure here is logged
// and never fails the delivery.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sevigo/repo-butler/internal/core"
)

// MaxReviewFiles bounds the review to small pull requests; anything larger
// produces too much context for a useful brief review.
const MaxReviewFiles = 5

// maxPromptLines caps how much added content is sent per file.
const maxPromptLines = 60

// Reviewer generates a short review of a pull request's added lines.
type Reviewer struct {
	client *genai.Client
	model  string
}

// NewReviewer connects to the Gemini API.
func NewReviewer(ctx context.Context, apiKey, model string) (*Reviewer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Reviewer{client: client, model: model}, nil
}

// Close releases the underlying client.
func (r *Reviewer) Close() error {
	return r.client.Close()
}

// Review produces a brief review of the changed files, or an empty string
// when the change set is too large to review.
func (r *Reviewer) Review(ctx context.Context, files []core.ChangedFile) (string, error) {
	if len(files) == 0 || len(files) > MaxReviewFiles {
		return "", nil
	}

	prompt := buildPrompt(files)
	model := r.client.GenerativeModel(r.model)

	var resp *genai.GenerateContentResponse
	err := withRetry(ctx, 3, time.Second, func() error {
		var genErr error
		resp, genErr = model.GenerateContent(ctx, genai.Text(prompt))
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("review generation failed: %w", err)
	}

	return extractText(resp), nil
}

func buildPrompt(files []core.ChangedFile) string {
	var sb strings.Builder
	sb.WriteString("Review this code change briefly. Point out bugs, risks, and improvements in at most five bullet points.\n")
	for _, f := range files {
		fmt.Fprintf(&sb, "\nFile: %s\n", f.Path)
		lines := f.AddedLines
		if len(lines) > maxPromptLines {
			lines = lines[:maxPromptLines]
		}
		for _, line := range lines {
			sb.WriteString("+ ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

// isRetryable reports whether err is a transient Gemini API error. REST
// transport errors surface as *googleapi.Error; 429 and 5xx warrant a retry.
func isRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || (gerr.Code >= 500 && gerr.Code < 600)
	}
	return false
}

// withRetry executes fn with exponential backoff on transient errors only.
func withRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(baseDelay << (attempt - 1)):
			}
		}
		err = fn()
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}
