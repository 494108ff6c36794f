// Package automation switches the running game client to another
// identity: it kills the client, relaunches it, waits for the login
// window and drives the credential form through an external keystroke
// scripting host.
package automation

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/dmarkelov/riotswitch/internal/common"
)

// Action is one scripted step the host understands. The vocabulary is
// fixed; sensitive payloads travel on stdin, never on the command line.
type Action string

const (
	// ActionCheck probes for the login window; stdout contains the
	// literal "Found" marker when it is up.
	ActionCheck Action = "Check"
	// ActionFocus brings the login window to the foreground.
	ActionFocus Action = "Focus"
	// ActionSetSecure loads the stdin payload into the paste buffer.
	ActionSetSecure Action = "SetSecure"
	// ActionPasteTab pastes the buffer and presses Tab.
	ActionPasteTab Action = "PasteTab"
	// ActionClear empties the focused input field.
	ActionClear Action = "Clear"
	// ActionPasteEnter pastes the buffer and presses Enter.
	ActionPasteEnter Action = "PasteEnter"
)

// WindowFoundMarker is scanned for in the host's stdout during the
// window-check phase.
const WindowFoundMarker = "Found"

// ScriptHost runs one action against the foreign application. A non-zero
// exit reports as an error; stdout is returned for marker scanning.
type ScriptHost interface {
	Run(ctx context.Context, action Action, sensitive string) (stdout string, err error)
}

// ExecHost shells out to the configured scripting host binary.
type ExecHost struct {
	Path string
}

func NewExecHost(path string) *ExecHost {
	return &ExecHost{Path: path}
}

// Run invokes the host with the action name as its only argument. The
// sensitive payload goes to stdin so it never appears in the OS process
// list; stdin is closed even when the payload is empty, otherwise a host
// reading to EOF would hang.
func (h *ExecHost) Run(ctx context.Context, action Action, sensitive string) (string, error) {
	cmd := exec.CommandContext(ctx, h.Path, string(action))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stdin pipe: %w", common.ErrScriptFailed, err)
	}

	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return "", fmt.Errorf("%w: start %s: %w", common.ErrScriptFailed, action, err)
	}

	if sensitive != "" {
		_, err = io.WriteString(stdin, sensitive)
	}
	stdin.Close()
	if err != nil {
		_ = cmd.Wait()
		return out.String(), fmt.Errorf("%w: write payload for %s: %w", common.ErrScriptFailed, action, err)
	}

	if err := cmd.Wait(); err != nil {
		return out.String(), fmt.Errorf("%w: %s: %w", common.ErrScriptFailed, action, err)
	}
	return out.String(), nil
}
