package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	silent := slices.Contains(args, "silent")
	forceNew := slices.Contains(args, "force")

	auth, err := a.Login(ctx, silent, forceNew)
	if err != nil {
		return err
	}
	if auth == nil {
		fmt.Fprintln(a.out, "no session")
		return nil
	}
	fmt.Fprintf(a.out, "logged in as %s (level %d, tier %d, region %s)\n",
		auth.RiotID(), auth.AccountLevel, auth.Rank, auth.Region)
	return nil
}

func (a *App) cmdSessions(ctx context.Context) error {
	sessions := a.sessions.List(ctx)
	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "no saved sessions")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(a.out, "%s  %s#%s  %s  level %d\n", s.PUUID, s.GameName, s.TagLine, s.Region, s.AccountLevel)
	}
	return nil
}

func (a *App) cmdRestore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: restore <puuid>")
	}
	auth, err := a.RestoreSession(ctx, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	if auth == nil {
		fmt.Fprintln(a.out, "session restore did not produce a login")
		return nil
	}
	fmt.Fprintf(a.out, "restored %s\n", auth.RiotID())
	return nil
}

func (a *App) cmdRemoveSession(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rmsession <puuid>")
	}
	removed, err := a.sessions.Remove(ctx, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("unknown session %s", args[0])
	}
	fmt.Fprintln(a.out, "removed")
	return nil
}
