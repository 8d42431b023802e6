package core

// Command is a recognized slash command extracted from a comment body.
// Invalid or unrecognized input yields no Command rather than an error.
type Command struct {
	Name    string
	Args    []string
	Invoker string
}
