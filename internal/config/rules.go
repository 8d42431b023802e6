package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrRulesNotFound = errors.New("rules file not found")
	ErrRulesParsing  = errors.New("rules parsing failed")
)

// OwnerRule maps a directory prefix onto the reviewers that own it.
type OwnerRule struct {
	Prefix    string   `yaml:"prefix"`
	Reviewers []string `yaml:"reviewers"`
}

// SizeBuckets holds the inclusive upper bound of each pull request size
// bucket. Anything above Large is extra-large.
type SizeBuckets struct {
	Small  int `yaml:"small"`
	Medium int `yaml:"medium"`
	Large  int `yaml:"large"`
}

// Rules holds the classification tables. The compiled-in defaults match the
// fixed lists existing repositories depend on; a YAML file can override them,
// but the matching semantics (case-insensitive substring, first-match
// priority order) never change.
type Rules struct {
	// Languages maps a file extension (with dot) onto a language tag.
	Languages map[string]string `yaml:"languages"`
	// Shebangs maps an interpreter name onto a language tag for files
	// without a recognized extension.
	Shebangs map[string]string `yaml:"shebangs"`
	// ContentLabels maps a label onto the filename fragments that imply it.
	ContentLabels map[string][]string `yaml:"content_labels"`

	Sizes SizeBuckets `yaml:"sizes"`

	// Triage keyword lists, matched in the order given. Category priority is
	// fixed: bug beats feature beats question.
	BugKeywords      []string `yaml:"bug_keywords"`
	FeatureKeywords  []string `yaml:"feature_keywords"`
	QuestionKeywords []string `yaml:"question_keywords"`

	// UrgencyKeywords trigger the priority:urgent label.
	UrgencyKeywords []string `yaml:"urgency_keywords"`

	// Owners maps path prefixes onto reviewer groups, first match wins.
	Owners []OwnerRule `yaml:"owners"`
}

// DefaultRules returns the compiled-in rule tables.
func DefaultRules() *Rules {
	return &Rules{
		Languages: map[string]string{
			".py": "python", ".pyx": "python",
			".js": "javascript", ".jsx": "javascript", ".mjs": "javascript",
			".ts": "typescript", ".tsx": "typescript",
			".java": "java",
			".go":   "go",
			".rs":   "rust",
			".rb":   "ruby",
			".php":  "php",
			".swift": "swift",
			".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".c": "cpp", ".h": "cpp", ".hpp": "cpp",
		},
		Shebangs: map[string]string{
			"python": "python", "python3": "python",
			"node": "javascript",
			"ruby": "ruby",
			"php":  "php",
		},
		ContentLabels: map[string][]string{
			"documentation": {".md", ".txt", ".rst", ".adoc"},
			"config":        {".yml", ".yaml", ".json", ".toml", ".ini", ".cfg"},
			"styling":       {".css", ".scss", ".sass", ".less"},
			"frontend":      {".html", ".htm", ".vue", ".svelte"},
			"database":      {".sql"},
			"docker":        {"dockerfile", "docker-compose"},
			"ci/cd":         {".github", ".gitlab-ci", ".travis", ".circleci"},
			"tests":         {"test", ".test.js", "_test.py"},
		},
		Sizes: SizeBuckets{Small: 49, Medium: 300, Large: 1000},
		BugKeywords:      []string{"bug", "error", "broken", "crash"},
		FeatureKeywords:  []string{"feature", "enhancement", "improvement"},
		QuestionKeywords: []string{"question", "how do", "how to"},
		UrgencyKeywords:  []string{"urgent", "critical", "blocker", "asap"},
		Owners:           nil,
	}
}

// LoadRules loads rule tables from a YAML file, falling back to defaults for
// any table the file leaves empty.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRules(), ErrRulesNotFound
		}
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRulesParsing, err)
	}

	rules := DefaultRules()
	if len(loaded.Languages) > 0 {
		rules.Languages = loaded.Languages
	}
	if len(loaded.Shebangs) > 0 {
		rules.Shebangs = loaded.Shebangs
	}
	if len(loaded.ContentLabels) > 0 {
		rules.ContentLabels = loaded.ContentLabels
	}
	if loaded.Sizes != (SizeBuckets{}) {
		rules.Sizes = loaded.Sizes
	}
	if len(loaded.BugKeywords) > 0 {
		rules.BugKeywords = loaded.BugKeywords
	}
	if len(loaded.FeatureKeywords) > 0 {
		rules.FeatureKeywords = loaded.FeatureKeywords
	}
	if len(loaded.QuestionKeywords) > 0 {
		rules.QuestionKeywords = loaded.QuestionKeywords
	}
	if len(loaded.UrgencyKeywords) > 0 {
		rules.UrgencyKeywords = loaded.UrgencyKeywords
	}
	if len(loaded.Owners) > 0 {
		rules.Owners = loaded.Owners
	}
	return rules, nil
}
