package automation

import (
	"os/exec"
	"strings"
)

// Clipboard wipes the OS clipboard after a secret passed through it.
// Best-effort defense in depth; failures are logged and ignored.
type Clipboard interface {
	Clear() error
}

// ExecClipboard clears the clipboard by piping an empty payload into a
// platform utility (e.g. "clip" on Windows, "xsel -bc" elsewhere). An
// empty command makes Clear a no-op.
type ExecClipboard struct {
	Command string
}

func NewExecClipboard(command string) *ExecClipboard {
	return &ExecClipboard{Command: command}
}

func (c *ExecClipboard) Clear() error {
	if c.Command == "" {
		return nil
	}
	parts := strings.Fields(c.Command)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader("")
	return cmd.Run()
}
