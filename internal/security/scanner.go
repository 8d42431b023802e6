// Package security implements the fixed-pattern scanner for changed content.
// The scan is a bounded heuristic: it matches known secret and dangerous-call
// signatures in added lines without parsing the target language, so it can
// both false-positive and miss real issues. Its findings gate a commit status
// but are never a security guarantee.
package security

import (
	"regexp"
	"sort"

	"github.com/sevigo/repo-butler/internal/core"
)

// patternCategory is one entry of the compiled pattern table. The table and
// the category-to-severity mapping are deliberately fixed so scan results
// stay reproducible across deployments.
type patternCategory struct {
	name     string
	severity core.Severity
	patterns []*regexp.Regexp
}

var patternTable = []patternCategory{
	{
		name:     "hardcoded-credential",
		severity: core.SeverityCritical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)password\s*[:=]\s*["'][^"']+["']`),
			regexp.MustCompile(`(?i)api_?key\s*[:=]\s*["'][^"']+["']`),
			regexp.MustCompile(`(?i)secret\s*[:=]\s*["'][^"']+["']`),
			regexp.MustCompile(`(?i)token\s*[:=]\s*["'][^"']+["']`),
		},
	},
	{
		name:     "dangerous-call",
		severity: core.SeverityCritical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\beval\s*\(`),
			regexp.MustCompile(`(?i)\bexec\s*\(`),
			regexp.MustCompile(`(?i)\bsystem\s*\(`),
			regexp.MustCompile(`(?i)\bshell_exec\s*\(`),
		},
	},
	{
		name:     "sql-injection-risk",
		severity: core.SeverityWarn,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)execute\s*\(\s*["'].*["']\s*\+`),
			regexp.MustCompile(`(?i)query\s*\(\s*["'].*["']\s*\+`),
			regexp.MustCompile(`(?i)execute\s*\(\s*["'].*\+.*["']`),
			regexp.MustCompile(`(?i)query\s*\(\s*["'].*\+.*["']`),
		},
	},
}

// Scan matches every file's added lines against the pattern table. Multiple
// hits of one category within one file collapse into a single finding, so a
// leaked credential pasted twice doesn't double the label and comment noise.
func Scan(files []core.ChangedFile) ([]core.Finding, error) {
	type hit struct {
		category string
		severity core.Severity
		file     string
	}
	seen := make(map[[2]string]hit)

	for _, f := range files {
		for _, cat := range patternTable {
			key := [2]string{cat.name, f.Path}
			if _, dup := seen[key]; dup {
				continue
			}
			if matchesCategory(cat, f.AddedLines) {
				seen[key] = hit{category: cat.name, severity: cat.severity, file: f.Path}
			}
		}
	}

	hits := make([]hit, 0, len(seen))
	for _, h := range seen {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].file != hits[j].file {
			return hits[i].file < hits[j].file
		}
		return hits[i].category < hits[j].category
	})

	findings := make([]core.Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, core.Finding{
			Category: core.CategorySecurity,
			Severity: h.severity,
			Label:    "security:" + h.category,
			Evidence: h.file,
		})
	}
	return findings, nil
}

func matchesCategory(cat patternCategory, lines []string) bool {
	for _, line := range lines {
		for _, p := range cat.patterns {
			if p.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// CriticalCount returns the number of critical security findings, used to
// build the security-scan commit status description.
func CriticalCount(findings []core.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Category == core.CategorySecurity && f.Severity == core.SeverityCritical {
			n++
		}
	}
	return n
}
