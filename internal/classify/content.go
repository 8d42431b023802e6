package classify

import (
	"path"
	"sort"
	"strings"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// ClassifyContent labels file types beyond programming languages:
// documentation, configuration, styling, and similar. A fragment beginning
// with a dot matches anywhere in the full path (so ".github" catches
// workflow files and ".md" catches Markdown), anything else as a substring
// of the base name (so "dockerfile" matches Dockerfile and dockerfile.prod).
func ClassifyContent(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
	matched := make(map[string]struct{})

	for _, f := range files {
		lower := strings.ToLower(f.Path)
		base := path.Base(lower)
		for label, fragments := range rules.ContentLabels {
			for _, frag := range fragments {
				if matchesFragment(lower, base, frag) {
					matched[label] = struct{}{}
					break
				}
			}
		}
	}

	labels := make([]string, 0, len(matched))
	for label := range matched {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	findings := make([]core.Finding, 0, len(labels))
	for _, label := range labels {
		findings = append(findings, core.Finding{
			Category: core.CategoryClassification,
			Severity: core.SeverityInfo,
			Label:    label,
		})
	}
	return findings, nil
}

func matchesFragment(lowerPath, base, frag string) bool {
	if strings.HasPrefix(frag, ".") {
		return strings.Contains(lowerPath, frag)
	}
	return strings.Contains(base, frag)
}
