package core

// Category groups findings by the classifier that produced them.
type Category string

const (
	CategoryLanguage       Category = "language"
	CategorySize           Category = "size"
	CategorySecurity       Category = "security"
	CategoryPriority       Category = "priority"
	CategoryClassification Category = "classification"
	CategoryOwnership      Category = "ownership"
	CategoryAdvice         Category = "advice"
)

// Severity ranks a finding. Most findings are informational; the security
// scanner emits Warn and Critical findings.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// Finding is a single classifier's description of one detected property of an
// event's content. Findings are pure values; label derivation is a pure
// function of category and value, so identical inputs always produce
// identical findings.
type Finding struct {
	Category Category
	Severity Severity

	// Label is the repository label the finding maps to. Empty for ownership
	// and advice findings, which never become labels.
	Label string

	// Reviewer is the owner group member to request a review from. Set only
	// for ownership findings.
	Reviewer string

	// Evidence is optional human-readable context, e.g. the file a security
	// pattern matched in.
	Evidence string
}
