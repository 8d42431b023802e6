package classify

import (
	"strings"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// triageCategory pairs a keyword list with the label it implies. Category
// priority is fixed: bug beats feature beats question.
type triageCategory struct {
	label    string
	keywords []string
}

// ClassifyTriage scans an issue's title and body against the fixed keyword
// sets and emits at most one classification finding. The first matching
// category wins by priority order; within a category, ties are broken by the
// order keywords appear in the list.
func ClassifyTriage(rules *config.Rules, title, body string) ([]core.Finding, error) {
	text := strings.ToLower(title + "\n" + body)

	categories := []triageCategory{
		{label: "bug", keywords: rules.BugKeywords},
		{label: "enhancement", keywords: rules.FeatureKeywords},
		{label: "question", keywords: rules.QuestionKeywords},
	}

	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return []core.Finding{{
					Category: core.CategoryClassification,
					Severity: core.SeverityInfo,
					Label:    cat.label,
					Evidence: kw,
				}}, nil
			}
		}
	}
	return nil, nil
}

// ClassifyPriority scans for urgency keywords using case-insensitive
// substring matching. Any hit emits a single critical priority finding;
// absence emits nothing, leaving the default priority unlabeled.
func ClassifyPriority(rules *config.Rules, title, body string) ([]core.Finding, error) {
	text := strings.ToLower(title + "\n" + body)

	for _, kw := range rules.UrgencyKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return []core.Finding{{
				Category: core.CategoryPriority,
				Severity: core.SeverityCritical,
				Label:    "priority:urgent",
				Evidence: kw,
			}}, nil
		}
	}
	return nil, nil
}
