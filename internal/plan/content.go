package plan

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/sevigo/repo-butler/internal/command"
)

// Fixed content pools. Selection is pseudo-deterministic (hashed from the
// event target), so duplicate deliveries post the same text.
var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"How many programmers does it take to change a light bulb? None, that's a hardware problem!",
	"Why do Java developers wear glasses? Because they don't C#",
	"There are only 10 types of people: those who understand binary and those who don't",
	"A SQL query goes into a bar, walks up to two tables and asks: 'Can I join you?'",
	"Why did the programmer quit his job? He didn't get arrays!",
}

var quotes = []string{
	"Code is like humor. When you have to explain it, it's bad.",
	"First, solve the problem. Then, write the code.",
	"The best error message is the one that never shows up.",
	"Programming isn't about what you know; it's about what you can figure out.",
	"Clean code always looks like it was written by someone who cares.",
	"Any fool can write code that a computer can understand. Good programmers write code that humans can understand.",
}

// pickFrom selects one entry from the pool based on an FNV hash of the key.
func pickFrom(pool []string, key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return pool[int(h.Sum32()%uint32(len(pool)))]
}

var commandSummaries = map[string]string{
	"help":      "show this command reference",
	"assign":    "`/assign @user` - assign the issue to a user",
	"label":     "`/label <name>` - add a label",
	"close":     "close the issue or pull request",
	"reopen":    "reopen the issue or pull request",
	"changelog": "list recently merged changes",
	"joke":      "programming humor",
	"motivate":  "a motivational quote",
}

// helpText renders the full command reference from the parser's registry, so
// the help output can never drift from the grammar.
func helpText() string {
	var sb strings.Builder
	sb.WriteString("**Available commands:**\n\n")
	for _, name := range command.Names() {
		summary := commandSummaries[name]
		switch {
		case summary == "":
			fmt.Fprintf(&sb, "- `/%s`\n", name)
		case strings.HasPrefix(summary, "`/"):
			fmt.Fprintf(&sb, "- %s\n", summary)
		default:
			fmt.Fprintf(&sb, "- `/%s` - %s\n", name, summary)
		}
	}
	return sb.String()
}

const welcomeTemplate = `Welcome @%s! Thanks for your first contribution to this project!

**Quick checklist:**
- [ ] Tests added/updated
- [ ] Documentation updated
- [ ] Code follows project style

Use ` + "`/help`" + ` for available commands. Thanks for contributing!`
