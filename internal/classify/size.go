package classify

import (
	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// ClassifySize sums added and removed lines across all changed files and
// emits exactly one size-bucket finding. An empty change set still counts as
// small: the bucket is total, not per-file.
func ClassifySize(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
	total := 0
	for _, f := range files {
		total += f.Changes()
	}

	return []core.Finding{{
		Category: core.CategorySize,
		Severity: core.SeverityInfo,
		Label:    "size:" + sizeBucket(rules.Sizes, total),
	}}, nil
}

func sizeBucket(b config.SizeBuckets, total int) string {
	switch {
	case total <= b.Small:
		return "small"
	case total <= b.Medium:
		return "medium"
	case total <= b.Large:
		return "large"
	default:
		return "xlarge"
	}
}
