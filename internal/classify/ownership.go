package classify

import (
	"sort"
	"strings"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// ClassifyOwnership maps each changed file's path prefix onto its owner group
// and emits one finding per distinct reviewer. Ownership findings never carry
// labels; the planner only uses them to populate review requests. The first
// matching prefix wins per file.
func ClassifyOwnership(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
	reviewers := make(map[string]struct{})

	for _, f := range files {
		for _, rule := range rules.Owners {
			if rule.Prefix == "" || !strings.HasPrefix(f.Path, rule.Prefix) {
				continue
			}
			for _, r := range rule.Reviewers {
				if r != "" {
					reviewers[r] = struct{}{}
				}
			}
			break
		}
	}

	logins := make([]string, 0, len(reviewers))
	for r := range reviewers {
		logins = append(logins, r)
	}
	sort.Strings(logins)

	findings := make([]core.Finding, 0, len(logins))
	for _, login := range logins {
		findings = append(findings, core.Finding{
			Category: core.CategoryOwnership,
			Severity: core.SeverityInfo,
			Reviewer: login,
		})
	}
	return findings, nil
}
