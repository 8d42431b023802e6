// Package classify implements the rule-based analyzers that turn event
// content into findings. Every classifier is a pure function of its payload;
// the registry runs them concurrently and merges their results as a set, so
// ordering never affects the outcome.
package classify

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
	"github.com/sevigo/repo-butler/internal/security"
)

// FileClassifier analyzes a pull request's changed files.
type FileClassifier func(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error)

// TextClassifier analyzes an issue's title and body.
type TextClassifier func(rules *config.Rules, title, body string) ([]core.Finding, error)

type namedFileClassifier struct {
	name string
	fn   FileClassifier
}

type namedTextClassifier struct {
	name string
	fn   TextClassifier
}

// Registry holds the fixed, ordered set of classifiers. A classifier failure
// is logged and contributes no findings; it never aborts the delivery.
type Registry struct {
	rules  *config.Rules
	logger *slog.Logger

	files []namedFileClassifier
	text  []namedTextClassifier
}

// NewRegistry builds the registry with the full classifier set.
// Security scanning can be switched off repo-wide via configuration.
func NewRegistry(rules *config.Rules, securityScanning bool, logger *slog.Logger) *Registry {
	r := &Registry{rules: rules, logger: logger}

	r.files = []namedFileClassifier{
		{name: "language", fn: ClassifyLanguages},
		{name: "content", fn: ClassifyContent},
		{name: "size", fn: ClassifySize},
		{name: "ownership", fn: ClassifyOwnership},
		{name: "requirements", fn: ClassifyRequirements},
	}
	if securityScanning {
		r.files = append(r.files, namedFileClassifier{name: "security", fn: func(_ *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
			return security.Scan(files)
		}})
	}

	r.text = []namedTextClassifier{
		{name: "triage", fn: ClassifyTriage},
		{name: "priority", fn: ClassifyPriority},
	}
	return r
}

// ClassifyFiles runs all file classifiers over the changed file set and
// merges their findings.
func (r *Registry) ClassifyFiles(ctx context.Context, files []core.ChangedFile) []core.Finding {
	var (
		mu       sync.Mutex
		findings []core.Finding
	)

	g, _ := errgroup.WithContext(ctx)
	for _, c := range r.files {
		g.Go(func() error {
			result, err := c.fn(r.rules, files)
			if err != nil {
				r.logger.Warn("classifier failed, skipping its findings", "classifier", c.name, "error", err)
				return nil
			}
			mu.Lock()
			findings = append(findings, result...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return findings
}

// ClassifyText runs all text classifiers over an issue's title and body and
// merges their findings.
func (r *Registry) ClassifyText(ctx context.Context, title, body string) []core.Finding {
	var (
		mu       sync.Mutex
		findings []core.Finding
	)

	g, _ := errgroup.WithContext(ctx)
	for _, c := range r.text {
		g.Go(func() error {
			result, err := c.fn(r.rules, title, body)
			if err != nil {
				r.logger.Warn("classifier failed, skipping its findings", "classifier", c.name, "error", err)
				return nil
			}
			mu.Lock()
			findings = append(findings, result...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return findings
}
