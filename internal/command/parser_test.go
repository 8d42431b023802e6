package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-butler/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCmd  *core.Command
		wantErr  error
		wantNoop bool
	}{
		{
			name:    "Assign with mention",
			body:    "/assign @alice",
			wantCmd: &core.Command{Name: "assign", Args: []string{"@alice"}, Invoker: "bob"},
		},
		{
			name:    "Help without arguments",
			body:    "/help",
			wantCmd: &core.Command{Name: "help", Args: []string{}, Invoker: "bob"},
		},
		{
			name:    "Label with one argument",
			body:    "/label needs-triage",
			wantCmd: &core.Command{Name: "label", Args: []string{"needs-triage"}, Invoker: "bob"},
		},
		{
			name:    "Command on a later line",
			body:    "Thanks for the report!\n\n/close",
			wantCmd: &core.Command{Name: "close", Args: []string{}, Invoker: "bob"},
		},
		{
			name:    "Leading whitespace is trimmed",
			body:    "   /joke",
			wantCmd: &core.Command{Name: "joke", Args: []string{}, Invoker: "bob"},
		},
		{
			name:    "Command name is case-insensitive",
			body:    "/ASSIGN @alice",
			wantCmd: &core.Command{Name: "assign", Args: []string{"@alice"}, Invoker: "bob"},
		},
		{
			name:     "Slash mid-line is not a command",
			body:     "please /assign @alice",
			wantNoop: true,
		},
		{
			name:     "Plain comment",
			body:     "Looks good to me.",
			wantNoop: true,
		},
		{
			name:    "Unknown command name",
			body:    "/unknown foo",
			wantErr: ErrUnknownCommand,
		},
		{
			name:     "Assign without mention is malformed",
			body:     "/assign alice",
			wantNoop: true,
		},
		{
			name:     "Assign with too many arguments is malformed",
			body:     "/assign @alice @bob",
			wantNoop: true,
		},
		{
			name:     "Label without argument is malformed",
			body:     "/label",
			wantNoop: true,
		},
		{
			name:     "Bare slash",
			body:     "/",
			wantNoop: true,
		},
		{
			name:     "Empty body",
			body:     "",
			wantNoop: true,
		},
		{
			name:    "First command line decides, later ones ignored",
			body:    "/joke\n/close",
			wantCmd: &core.Command{Name: "joke", Args: []string{}, Invoker: "bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.body, "bob")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
			case tt.wantNoop:
				assert.NoError(t, err)
				assert.Nil(t, cmd)
			default:
				assert.NoError(t, err)
				if assert.NotNil(t, cmd) {
					assert.Equal(t, tt.wantCmd.Name, cmd.Name)
					assert.Equal(t, tt.wantCmd.Args, cmd.Args)
					assert.Equal(t, tt.wantCmd.Invoker, cmd.Invoker)
				}
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"assign", "changelog", "close", "help", "joke", "label", "motivate", "reopen"}, names)
}
