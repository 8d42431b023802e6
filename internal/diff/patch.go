// Package diff extracts line-level information from the unified diff
// fragments the platform returns for changed files.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sevigo/repo-butler/internal/core"
)

// AddedLines parses a GitHub-style patch fragment and returns the content of
// every added line, without the leading '+'. The fragment arrives without
// file headers, so a minimal synthetic header is prepended before parsing.
// A malformed fragment yields an error rather than partial content; callers
// treat that file as unscannable.
func AddedLines(path, patch string) ([]string, error) {
	if strings.TrimSpace(patch) == "" {
		return nil, nil
	}

	raw := fmt.Sprintf("diff --git a/%s b/%s\n--- a/%s\n+++ b/%s\n%s", path, path, path, path, patch)
	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch for %s: %w", path, err)
	}

	var added []string
	for _, f := range files {
		added = append(added, addedFromFile(f)...)
	}
	return added, nil
}

// ParseUnifiedDiff reads a complete unified diff (e.g. `git diff` output) and
// converts it into the pipeline's changed-file representation.
func ParseUnifiedDiff(r io.Reader) ([]core.ChangedFile, error) {
	parsed, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	files := make([]core.ChangedFile, 0, len(parsed))
	for _, f := range parsed {
		name := f.NewName
		if name == "" {
			name = f.OldName
		}
		cf := core.ChangedFile{Path: name, AddedLines: addedFromFile(f)}
		for _, frag := range f.TextFragments {
			cf.Additions += int(frag.LinesAdded)
			cf.Deletions += int(frag.LinesDeleted)
		}
		files = append(files, cf)
	}
	return files, nil
}

func addedFromFile(f *gitdiff.File) []string {
	var added []string
	for _, frag := range f.TextFragments {
		for _, line := range frag.Lines {
			if line.Op == gitdiff.OpAdd {
				added = append(added, strings.TrimSuffix(line.Line, "\n"))
			}
		}
	}
	return added
}
