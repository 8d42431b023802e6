package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

func adviceOf(findings []core.Finding) []string {
	var texts []string
	for _, f := range findings {
		if f.Category == core.CategoryAdvice {
			texts = append(texts, f.Evidence)
		}
	}
	return texts
}

func TestClassifyRequirements(t *testing.T) {
	rules := config.DefaultRules()

	tests := []struct {
		name       string
		files      []core.ChangedFile
		wantAdvice []string
	}{
		{
			name: "Code without tests",
			files: []core.ChangedFile{
				{Path: "internal/server/server.go", Additions: 20},
			},
			wantAdvice: []string{"Consider adding tests for your code changes"},
		},
		{
			name: "Code with matching tests",
			files: []core.ChangedFile{
				{Path: "internal/server/server.go", Additions: 20},
				{Path: "internal/server/server_test.go", Additions: 40},
			},
			wantAdvice: nil,
		},
		{
			name: "Documentation only change",
			files: []core.ChangedFile{
				{Path: "README.md", Additions: 12},
			},
			wantAdvice: nil,
		},
		{
			name: "Oversized file",
			files: []core.ChangedFile{
				{Path: "internal/server/server_test.go", Additions: 280, Deletions: 60},
			},
			wantAdvice: []string{"Large files detected: internal/server/server_test.go - consider splitting"},
		},
		{
			name: "Oversized file list is capped at three",
			files: []core.ChangedFile{
				{Path: "a_test.go", Additions: 400},
				{Path: "b_test.go", Additions: 400},
				{Path: "c_test.go", Additions: 400},
				{Path: "d_test.go", Additions: 400},
			},
			wantAdvice: []string{"Large files detected: a_test.go, b_test.go, c_test.go - consider splitting"},
		},
		{
			name: "Wide change set without documentation",
			files: []core.ChangedFile{
				{Path: "a_test.go", Additions: 1},
				{Path: "b_test.go", Additions: 1},
				{Path: "c_test.go", Additions: 1},
				{Path: "d_test.go", Additions: 1},
				{Path: "e_test.go", Additions: 1},
				{Path: "f_test.go", Additions: 1},
			},
			wantAdvice: []string{"Consider updating documentation for this change"},
		},
		{
			name: "Wide change set touching documentation",
			files: []core.ChangedFile{
				{Path: "a_test.go", Additions: 1},
				{Path: "b_test.go", Additions: 1},
				{Path: "c_test.go", Additions: 1},
				{Path: "d_test.go", Additions: 1},
				{Path: "e_test.go", Additions: 1},
				{Path: "docs/guide.md", Additions: 1},
			},
			wantAdvice: nil,
		},
		{
			name:       "Empty change set",
			files:      nil,
			wantAdvice: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := ClassifyRequirements(rules, tt.files)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAdvice, adviceOf(findings))
		})
	}
}
