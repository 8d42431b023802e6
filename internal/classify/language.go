package classify

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
)

// ClassifyLanguages maps each changed file's extension (or shebang, for
// extensionless scripts) onto a language tag and emits one finding per
// distinct language present in the change set.
func ClassifyLanguages(rules *config.Rules, files []core.ChangedFile) ([]core.Finding, error) {
	langs := make(map[string]struct{})

	for _, f := range files {
		if lang := detectLanguage(rules, f); lang != "" {
			langs[lang] = struct{}{}
		}
	}

	names := make([]string, 0, len(langs))
	for lang := range langs {
		names = append(names, lang)
	}
	sort.Strings(names)

	findings := make([]core.Finding, 0, len(names))
	for _, lang := range names {
		findings = append(findings, core.Finding{
			Category: core.CategoryLanguage,
			Severity: core.SeverityInfo,
			Label:    "lang:" + lang,
		})
	}
	return findings, nil
}

func detectLanguage(rules *config.Rules, f core.ChangedFile) string {
	ext := strings.ToLower(filepath.Ext(f.Path))
	if lang, ok := rules.Languages[ext]; ok {
		return lang
	}
	if ext == "" {
		return languageFromShebang(rules, f.AddedLines)
	}
	return ""
}

// languageFromShebang inspects the first added line for a shebang and maps
// the interpreter onto a language tag.
func languageFromShebang(rules *config.Rules, added []string) string {
	if len(added) == 0 {
		return ""
	}
	first := strings.TrimSpace(added[0])
	if !strings.HasPrefix(first, "#!") {
		return ""
	}

	fields := strings.Fields(strings.TrimPrefix(first, "#!"))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	// "#!/usr/bin/env python3" carries the interpreter in the second field.
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	return rules.Shebangs[interp]
}
