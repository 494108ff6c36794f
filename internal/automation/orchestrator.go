package automation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/logging"
)

// DefaultKillList is the set of related executables force-terminated
// before a relaunch.
var DefaultKillList = []string{
	"RiotClientServices.exe",
	"RiotClientUx.exe",
	"VALORANT.exe",
	"LeagueClient.exe",
}

// DefaultLaunchArgs select the product and patchline the launcher boots
// into.
var DefaultLaunchArgs = []string{
	"--launch-product=valorant",
	"--launch-patchline=live",
}

// Config tunes one Orchestrator.
type Config struct {
	GamePath            string
	LaunchArgs          []string
	KillList            []string
	SettleDelay         time.Duration
	CheckInterval       time.Duration
	CheckAttempts       int
	ClipboardClearDelay time.Duration
}

func (c *Config) withDefaults() {
	if len(c.LaunchArgs) == 0 {
		c.LaunchArgs = DefaultLaunchArgs
	}
	if len(c.KillList) == 0 {
		c.KillList = DefaultKillList
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Second
	}
	if c.CheckAttempts <= 0 {
		c.CheckAttempts = 30
	}
	if c.ClipboardClearDelay <= 0 {
		c.ClipboardClearDelay = 2 * time.Second
	}
}

// Orchestrator executes one identity switch: kill, settle, launch, wait
// for the login window, type credentials. Phases run strictly in
// sequence; there is no mid-flight cancel beyond the context.
type Orchestrator struct {
	host ScriptHost
	proc ProcessController
	clip Clipboard
	cfg  Config
	log  logging.Logger

	// statFn is a test seam for the executable existence check.
	statFn func(string) (os.FileInfo, error)
}

func NewOrchestrator(host ScriptHost, proc ProcessController, clip Clipboard, cfg Config, log logging.Logger) *Orchestrator {
	cfg.withDefaults()
	return &Orchestrator{host: host, proc: proc, clip: clip, cfg: cfg, log: log, statFn: os.Stat}
}

// Switch drives the full sequence for one account. The returned error
// names the stage that failed: a missing executable, window detection
// running out of attempts, or a typing action failing hard.
func (o *Orchestrator) Switch(ctx context.Context, username, password string) error {
	// KILL: fire-and-forget, not verified. Nothing running is fine.
	if err := o.proc.Kill(ctx, o.cfg.KillList); err != nil {
		o.log.Debug(ctx, "kill pass reported errors (ignored)", "error", err)
	}

	// SETTLE before relaunching over half-dead processes.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(o.cfg.SettleDelay):
	}

	// LAUNCH: verify the executable first so the error is precise.
	if _, err := o.statFn(o.cfg.GamePath); err != nil {
		return fmt.Errorf("launch: %w: %s", common.ErrExecutableMissing, o.cfg.GamePath)
	}
	if err := o.proc.StartDetached(o.cfg.GamePath, o.cfg.LaunchArgs); err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	// WAIT_FOR_WINDOW: fixed cadence, bounded attempts, individual
	// check failures swallowed.
	if err := o.waitForWindow(ctx); err != nil {
		return err
	}

	// TYPE_USERNAME then TYPE_PASSWORD: script failures are hard here.
	if err := o.typeCredential(ctx, username, ActionPasteTab); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := o.runAction(ctx, ActionClear); err != nil {
		return fmt.Errorf("clear field: %w", err)
	}
	if err := o.typeCredential(ctx, password, ActionPasteEnter); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	// Deferred clipboard wipe; a secret just passed through it.
	clip := o.clip
	time.AfterFunc(o.cfg.ClipboardClearDelay, func() {
		if err := clip.Clear(); err != nil {
			o.log.Warn(context.Background(), "clipboard clear failed", "error", err)
		}
	})

	return nil
}

func (o *Orchestrator) waitForWindow(ctx context.Context) error {
	for attempt := 1; attempt <= o.cfg.CheckAttempts; attempt++ {
		out, err := o.host.Run(ctx, ActionCheck, "")
		if err == nil && strings.Contains(out, WindowFoundMarker) {
			return nil
		}
		if err != nil {
			o.log.Debug(ctx, "window check failed, retrying", "attempt", attempt, "error", err)
		}
		if attempt == o.cfg.CheckAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.cfg.CheckInterval):
		}
	}
	return fmt.Errorf("wait for window: %w after %d attempts", common.ErrWindowNotDetected, o.cfg.CheckAttempts)
}

// typeCredential focuses the window, loads the secret into the paste
// buffer over stdin, and fires the paste action.
func (o *Orchestrator) typeCredential(ctx context.Context, secret string, paste Action) error {
	if err := o.runAction(ctx, ActionFocus); err != nil {
		return err
	}
	if _, err := o.host.Run(ctx, ActionSetSecure, secret); err != nil {
		return err
	}
	return o.runAction(ctx, paste)
}

func (o *Orchestrator) runAction(ctx context.Context, action Action) error {
	_, err := o.host.Run(ctx, action, "")
	return err
}
