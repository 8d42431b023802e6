package classify

import (
	"fmt"
	"path"
	"strings"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// Per-file changed-line count above which a file is flagged as large.
const largeFileThreshold = 300

// Change sets above this file count should touch documentation.
const docsFileThreshold = 5

const maxListedFiles = 3

// ClassifyRequirements checks a change set against review hygiene
// expectations and emits one advice finding per unmet expectation: code
// changes without test changes, individual files with too many changed
// lines, and larger change sets that touch no documentation. Advice findings
// carry no label; the planner renders them as review notes in the pull
// request comment.
func ClassifyRequirements(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
	var (
		hasCode    bool
		hasTests   bool
		hasDocs    bool
		largeFiles []string
	)

	docFragments := rules.ContentLabels["documentation"]

	for _, f := range files {
		lower := strings.ToLower(f.Path)
		if _, ok := rules.Languages[path.Ext(lower)]; ok {
			hasCode = true
		}
		if strings.Contains(lower, "test") {
			hasTests = true
		}
		for _, frag := range docFragments {
			if strings.HasSuffix(lower, frag) {
				hasDocs = true
				break
			}
		}
		if f.Changes() > largeFileThreshold {
			largeFiles = append(largeFiles, f.Path)
		}
	}

	var findings []core.Finding
	advise := func(text string) {
		findings = append(findings, core.Finding{
			Category: core.CategoryAdvice,
			Severity: core.SeverityInfo,
			Evidence: text,
		})
	}

	if hasCode && !hasTests {
		advise("Consider adding tests for your code changes")
	}
	if len(largeFiles) > 0 {
		listed := largeFiles
		if len(listed) > maxListedFiles {
			listed = listed[:maxListedFiles]
		}
		advise(fmt.Sprintf("Large files detected: %s - consider splitting", strings.Join(listed, ", ")))
	}
	if len(files) > docsFileThreshold && !hasDocs {
		advise("Consider updating documentation for this change")
	}
	return findings, nil
}
