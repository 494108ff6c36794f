package automation

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/dmarkelov/riotswitch/internal/common"
)

// ProcessController abstracts OS process control: force-terminating the
// known game executables and spawning the launcher detached.
type ProcessController interface {
	// Kill force-terminates every named executable. Callers ignore the
	// error: nothing running is the common case.
	Kill(ctx context.Context, executables []string) error

	// StartDetached spawns exePath with args, released from the host
	// process so it survives the switcher exiting.
	StartDetached(exePath string, args []string) error
}

// ExecController implements ProcessController with platform commands.
type ExecController struct{}

func NewExecController() *ExecController { return &ExecController{} }

func (c *ExecController) Kill(ctx context.Context, executables []string) error {
	var firstErr error
	for _, exe := range executables {
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "taskkill", "/F", "/IM", exe)
		} else {
			cmd = exec.CommandContext(ctx, "pkill", "-f", exe)
		}
		if err := cmd.Run(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("terminate %s: %w", exe, err)
		}
	}
	return firstErr
}

func (c *ExecController) StartDetached(exePath string, args []string) error {
	cmd := exec.Command(exePath, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %w", common.ErrAutomation, exePath, err)
	}
	// Release so the client is not tied to our lifetime and never
	// becomes a zombie waiting on Wait.
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("release %s: %w", exePath, err)
	}
	return nil
}
