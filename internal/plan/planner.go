// Package plan merges classifier findings or a parsed command into a
// deduplicated, idempotent action plan. Plan construction is a pure function
// of its inputs: building the same plan twice from identical inputs yields a
// byte-identical result, which is what makes duplicate webhook deliveries
// safe downstream.
package plan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sevigo/repo-butler/internal/core"
)

// SecurityStatusContext is the commit status context the scanner reports
// under.
const SecurityStatusContext = "security-scan"

// maxListedFiles caps file lists rendered into comment sections.
const maxListedFiles = 3

// Context carries the event plus the capability lookups the planner needs.
// The handler resolves all platform queries before planning, so the planner
// itself stays free of I/O.
type Context struct {
	Event *core.Event

	// Files backs the pull request summary comment.
	Files []core.ChangedFile

	// FirstContribution is true when the actor has no prior merged
	// contribution in the repository.
	FirstContribution bool

	// WelcomePosted is true when a welcome comment for this actor already
	// exists, regardless of which delivery posted it.
	WelcomePosted bool

	// RecentPulls backs the /changelog command.
	RecentPulls []core.MergedPull
}

// FromFindings builds the plan a classified event authorizes. Every finding's
// label lands in LabelsToAdd, ownership findings populate the review
// requests, and critical security findings flip the security commit status to
// failure.
func FromFindings(findings []core.Finding, pc Context) *core.ActionPlan {
	event := pc.Event
	p := &core.ActionPlan{}

	var labels, reviewers []string
	var securityFindings []core.Finding
	criticalSecurity := 0

	for _, f := range findings {
		if f.Label != "" {
			labels = append(labels, f.Label)
		}
		if f.Category == core.CategoryOwnership && f.Reviewer != "" && f.Reviewer != event.Actor {
			reviewers = append(reviewers, f.Reviewer)
		}
		if f.Category == core.CategorySecurity {
			securityFindings = append(securityFindings, f)
			if f.Severity == core.SeverityCritical {
				criticalSecurity++
			}
		}
	}

	p.LabelsToAdd = core.SortedSet(labels)
	p.Reviewers = core.SortedSet(reviewers)

	isPull := event.Kind == core.PullRequestOpened || event.Kind == core.PullRequestUpdated

	if isPull && event.HeadSHA != "" {
		p.Status = &core.StatusCheck{
			Context:     SecurityStatusContext,
			State:       core.StatusSuccess,
			Description: "no issues found",
		}
		if criticalSecurity > 0 {
			p.Status.State = core.StatusFailure
			p.Status.Description = fmt.Sprintf("%d issue(s) found", criticalSecurity)
		}
	}

	if isPull {
		var sections []string
		if summary := pullSummary(pc.Files, findings); summary != "" {
			sections = append(sections, summary)
		}
		if notes := reviewNotes(findings); notes != "" {
			sections = append(sections, notes)
		}
		if report := securityReport(securityFindings); report != "" {
			sections = append(sections, report)
		}
		if pc.FirstContribution && !pc.WelcomePosted {
			// The welcome section carries its own marker tag inside the body,
			// so later deliveries can see it was posted even though it shares
			// a comment with the analysis report.
			welcome := fmt.Sprintf(welcomeTemplate, event.Actor) + "\n" + core.MarkerTag(WelcomeMarker(event))
			sections = append(sections, welcome)
		}
		if len(sections) > 0 {
			p.CommentBody = strings.Join(sections, "\n\n---\n\n")
			p.CommentMarker = fmt.Sprintf("pr-report:%s#%d:%s", event.RepoFullName, event.Number, event.HeadSHA)
		}
	}

	return p
}

// WelcomeMarker keys the first-contribution welcome for one pull request.
func WelcomeMarker(event *core.Event) string {
	return fmt.Sprintf("welcome:%s#%d", event.RepoFullName, event.Number)
}

// MergedThanks builds the thank-you plan for a merged pull request. Nothing
// is classified; only a single deduplicated comment is planned.
func MergedThanks(event *core.Event) *core.ActionPlan {
	return &core.ActionPlan{
		CommentBody:   fmt.Sprintf("Thanks @%s! Your contribution has been merged. Great work!", event.Actor),
		CommentMarker: fmt.Sprintf("thanks:%s#%d", event.RepoFullName, event.Number),
	}
}

// FromCommand builds the dedicated plan for a recognized command. Command
// plans and classifier plans are mutually exclusive per event.
func FromCommand(cmd *core.Command, pc Context) *core.ActionPlan {
	event := pc.Event
	marker := func(kind string) string {
		return fmt.Sprintf("cmd:%s:%d", kind, event.CommentID)
	}

	switch cmd.Name {
	case "help":
		return &core.ActionPlan{
			CommentBody:   helpText(),
			CommentMarker: marker("help"),
		}
	case "assign":
		assignee := strings.TrimPrefix(cmd.Args[0], "@")
		return &core.ActionPlan{
			Assignees:     []string{assignee},
			CommentBody:   fmt.Sprintf("Assigned to @%s", assignee),
			CommentMarker: marker("assign"),
		}
	case "label":
		return &core.ActionPlan{
			LabelsToAdd: core.SortedSet(cmd.Args[:1]),
		}
	case "close":
		return &core.ActionPlan{
			SetState:      core.TargetClosed,
			CommentBody:   fmt.Sprintf("Closed by @%s", cmd.Invoker),
			CommentMarker: marker("close"),
		}
	case "reopen":
		return &core.ActionPlan{
			SetState:      core.TargetOpen,
			CommentBody:   fmt.Sprintf("Reopened by @%s", cmd.Invoker),
			CommentMarker: marker("reopen"),
		}
	case "changelog":
		return &core.ActionPlan{
			CommentBody:   changelog(pc.RecentPulls),
			CommentMarker: marker("changelog"),
		}
	case "joke":
		key := fmt.Sprintf("%s#%d", event.RepoFullName, event.Number)
		return &core.ActionPlan{
			CommentBody:   pickFrom(jokes, key),
			CommentMarker: marker("joke"),
		}
	case "motivate":
		key := fmt.Sprintf("%s#%d", event.RepoFullName, event.Number)
		return &core.ActionPlan{
			CommentBody:   pickFrom(quotes, key),
			CommentMarker: marker("motivate"),
		}
	default:
		// Parser and planner registries agree; an unknown name here means a
		// command was added to the grammar without a plan.
		return &core.ActionPlan{}
	}
}

// UnknownCommandHint builds the help hint posted when a comment carries a
// slash line with an unrecognized command name.
func UnknownCommandHint(event *core.Event) *core.ActionPlan {
	return &core.ActionPlan{
		CommentBody:   "Unrecognized command. " + helpText(),
		CommentMarker: fmt.Sprintf("cmd:unknown:%d", event.CommentID),
	}
}

// pullSummary renders the analysis header comment for a pull request.
func pullSummary(files []core.ChangedFile, findings []core.Finding) string {
	if len(files) == 0 {
		return ""
	}

	total := 0
	for _, f := range files {
		total += f.Changes()
	}

	var languages, sizeBucket []string
	for _, f := range findings {
		switch {
		case f.Category == core.CategoryLanguage:
			languages = append(languages, strings.TrimPrefix(f.Label, "lang:"))
		case f.Category == core.CategorySize:
			sizeBucket = append(sizeBucket, strings.TrimPrefix(f.Label, "size:"))
		}
	}
	sort.Strings(languages)

	var sb strings.Builder
	sb.WriteString("**Pull request analysis:**\n\n")
	fmt.Fprintf(&sb, "- Files changed: %d\n", len(files))
	fmt.Fprintf(&sb, "- Lines changed: %d\n", total)
	if len(sizeBucket) > 0 {
		fmt.Fprintf(&sb, "- Size: %s\n", sizeBucket[0])
	}
	if len(languages) > 0 {
		fmt.Fprintf(&sb, "- Languages: %s\n", strings.Join(languages, ", "))
	}
	fmt.Fprintf(&sb, "- Complexity: %s\n", complexityRisk(len(files), total))
	if breaking := breakingChanges(files); len(breaking) > 0 {
		fmt.Fprintf(&sb, "- Potential breaking changes in: %s\n", strings.Join(breaking, ", "))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// complexityRisk scores a change set by total changed lines and file count
// and maps the score onto a coarse risk level.
func complexityRisk(fileCount, totalChanges int) string {
	score := 0
	switch {
	case totalChanges > 500:
		score += 3
	case totalChanges > 200:
		score += 2
	case totalChanges > 50:
		score++
	}
	switch {
	case fileCount > 10:
		score += 2
	case fileCount > 5:
		score++
	}

	switch {
	case score >= 4:
		return "high"
	case score >= 2:
		return "medium"
	default:
		return "low"
	}
}

// Added lines matching any of these patterns suggest an interface change
// worth a closer look: new or changed signatures, class definitions,
// imports, and decorators.
var breakingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`def\s+\w+\([^)]*\)\s*->`),
	regexp.MustCompile(`class\s+\w+\([^)]*\):`),
	regexp.MustCompile(`func\s+\w+\([^)]*\)`),
	regexp.MustCompile(`import\s+\w+`),
	regexp.MustCompile(`from\s+\w+\s+import`),
	regexp.MustCompile(`@\w+`),
}

// breakingChanges returns the files whose added lines hit a breaking-change
// pattern, each file listed once, capped at maxListedFiles.
func breakingChanges(files []core.ChangedFile) []string {
	var hits []string
	for _, f := range files {
		if matchesBreakingPattern(f.AddedLines) {
			hits = append(hits, f.Path)
			if len(hits) == maxListedFiles {
				break
			}
		}
	}
	return hits
}

func matchesBreakingPattern(lines []string) bool {
	for _, line := range lines {
		for _, p := range breakingPatterns {
			if p.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// reviewNotes renders the advisory section of the pull request comment, one
// bullet per advice finding.
func reviewNotes(findings []core.Finding) string {
	var notes []string
	for _, f := range findings {
		if f.Category == core.CategoryAdvice && f.Evidence != "" {
			notes = append(notes, f.Evidence)
		}
	}
	if len(notes) == 0 {
		return ""
	}
	sort.Strings(notes)

	var sb strings.Builder
	sb.WriteString("**Automated review notes:**\n\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "- %s\n", n)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// securityReport renders the security scan section of the pull request
// comment, one line per (category, file) finding.
func securityReport(findings []core.Finding) string {
	if len(findings) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("**Security scan results:**\n\n")
	for _, f := range findings {
		category := strings.TrimPrefix(f.Label, "security:")
		fmt.Fprintf(&sb, "- **%s** (%s) in `%s`\n", category, f.Severity, f.Evidence)
	}
	sb.WriteString("\nPlease review these potential issues before merging. This scan is heuristic and may report false positives.")
	return sb.String()
}

// changelog renders the recently merged pull request list.
func changelog(pulls []core.MergedPull) string {
	if len(pulls) == 0 {
		return "# Recent Changes\n\nNo merged pull requests found."
	}

	var sb strings.Builder
	sb.WriteString("# Recent Changes\n\n")
	for _, p := range pulls {
		fmt.Fprintf(&sb, "- %s (#%d) by @%s\n", p.Title, p.Number, p.Author)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
