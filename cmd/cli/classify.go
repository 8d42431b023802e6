package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/repo-butler/internal/classify"
	"github.com/sevigo/repo-butler/internal/config"
	"github.com/sevigo/repo-butler/internal/core"
	"github.com/sevigo/repo-butler/internal/githubapi"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var classifyCmd = &cobra.Command{
	Use:   "classify [pr-url]",
	Short: "Preview the findings Repo-Butler would produce for a pull request",
	Long: `Preview the findings Repo-Butler would produce for a pull request.

The classify command fetches the PR's changed files with a personal access
token and runs the full classifier set over them, printing the labels,
reviewers, and security findings the webhook pipeline would act on. Nothing
is written back to GitHub.

Examples:
  butler-cli classify https://github.com/owner/repo/pull/123
  butler-cli classify --rules rules.yaml https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, repo, number, err := parsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set\n\nTip: Set RB_GITHUB_TOKEN or pass --github-token")
	}

	rules, err := loadRules()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	platform := githubapi.NewPATClient(ctx, token, "repo-butler[bot]", logger)

	titleColor.Println("Repo-Butler - PR Classification")
	dimColor.Printf("   Target: %s/%s#%d\n\n", owner, repo, number)

	files, err := platform.ChangedFiles(ctx, owner, repo, number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR files: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	dimColor.Printf("   Files changed: %d\n\n", len(files))

	registry := classify.NewRegistry(rules, true, logger)
	findings := registry.ClassifyFiles(ctx, files)

	printFindings(findings)
	return nil
}

func loadRules() (*config.Rules, error) {
	if rulesPath == "" {
		return config.DefaultRules(), nil
	}
	rules, err := config.LoadRules(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return rules, nil
}

// parsePullRequestURL extracts owner, repository, and PR number from a GitHub
// pull request URL such as https://github.com/owner/repo/pull/123.
func parsePullRequestURL(raw string) (owner, repo string, number int, err error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	trimmed = strings.TrimPrefix(trimmed, "github.com/")
	parts := strings.Split(strings.TrimSuffix(trimmed, "/"), "/")
	if len(parts) != 4 || parts[2] != "pull" {
		return "", "", 0, fmt.Errorf("unrecognized pull request URL %q", raw)
	}
	number, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number %q", parts[3])
	}
	return parts[0], parts[1], number, nil
}

func printFindings(findings []core.Finding) {
	if len(findings) == 0 {
		successColor.Println("No findings.")
		return
	}

	separator := strings.Repeat("=", 60)
	titleColor.Println(separator)
	titleColor.Printf("FINDINGS (%d)\n", len(findings))
	titleColor.Println(separator)

	for _, f := range findings {
		fmt.Println()
		printSeverityBadge(f.Severity)
		boldColor.Printf(" %s", f.Category)
		fmt.Println()
		if f.Label != "" {
			infoColor.Printf("   Label: %s\n", f.Label)
		}
		if f.Reviewer != "" {
			infoColor.Printf("   Reviewer: %s\n", f.Reviewer)
		}
		if f.Evidence != "" {
			dimColor.Printf("   Evidence: %s\n", f.Evidence)
		}
	}
	fmt.Println()
}

func printSeverityBadge(severity core.Severity) {
	switch severity {
	case core.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", severity)
	case core.SeverityWarn:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", severity)
	}
}
