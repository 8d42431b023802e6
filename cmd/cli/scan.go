package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-butler/internal/diff"
	"github.com/sevigo/repo-butler/internal/security"
)

var scanCmd = &cobra.Command{
	Use:   "scan [diff-file]",
	Short: "Run the security scanner over a local unified diff",
	Long: `Run the security scanner over a local unified diff.

The scan command reads a unified diff (e.g. the output of git diff) from a
file, extracts its added lines, and applies the same security patterns the
webhook pipeline applies to pull requests. It exits with a non-zero status
when a critical finding is present, making it usable as a pre-push check.

Examples:
  git diff origin/main > changes.patch
  butler-cli scan changes.patch`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open diff file: %w", err)
	}
	defer f.Close()

	files, err := diff.ParseUnifiedDiff(f)
	if err != nil {
		return fmt.Errorf("failed to parse diff: %w", err)
	}

	titleColor.Println("Repo-Butler - Security Scan")
	dimColor.Printf("   Files in diff: %d\n\n", len(files))

	findings, err := security.Scan(files)
	if err != nil {
		return fmt.Errorf("security scan failed: %w", err)
	}

	printFindings(findings)

	if critical := security.CriticalCount(findings); critical > 0 {
		warnColor.Printf("%d critical finding(s).\n", critical)
		os.Exit(1)
	}
	return nil
}
