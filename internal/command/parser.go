// Package command extracts slash commands from comment bodies. The grammar
// is fixed: a command line starts with '/' as its first non-whitespace
// character, the next token is the command name, and the remaining
// whitespace-delimited tokens are arguments.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/repo-butler/internal/core"
)

// ErrUnknownCommand marks a line that looks like a command but names no
// recognized command. Callers respond with a help hint instead of failing.
var ErrUnknownCommand = errors.New("unknown command")

// spec describes one recognized command's argument shape.
type spec struct {
	// exactArgs, when >= 0, is the required argument count. -1 accepts any.
	exactArgs int
	// mentionArg requires the single argument to be an @mention.
	mentionArg bool
}

// registry is the fixed command grammar. Adding a command here is the only
// way to extend it; comment input never defines new commands.
var registry = map[string]spec{
	"help":      {exactArgs: -1},
	"assign":    {exactArgs: 1, mentionArg: true},
	"label":     {exactArgs: 1},
	"close":     {exactArgs: -1},
	"reopen":    {exactArgs: -1},
	"changelog": {exactArgs: -1},
	"joke":      {exactArgs: -1},
	"motivate":  {exactArgs: -1},
}

// Names returns the recognized command names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse extracts a single command from a comment body. The first line whose
// first non-whitespace character is '/' decides the outcome: a recognized,
// well-shaped command yields a Command; an unrecognized name yields
// ErrUnknownCommand; a malformed argument list yields no command at all.
// Bodies without any command line yield (nil, nil), a no-op for the caller.
func Parse(body, invoker string) (*core.Command, error) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") {
			continue
		}

		tokens := strings.Fields(line)
		name := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
		if name == "" {
			return nil, nil
		}
		args := tokens[1:]

		cmdSpec, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
		}
		if cmdSpec.exactArgs >= 0 && len(args) != cmdSpec.exactArgs {
			return nil, nil
		}
		if cmdSpec.mentionArg && !isMention(args[0]) {
			return nil, nil
		}

		return &core.Command{Name: name, Args: args, Invoker: invoker}, nil
	}
	return nil, nil
}

func isMention(arg string) bool {
	return len(arg) > 1 && strings.HasPrefix(arg, "@")
}
