package cli

import (
	"context"
	"fmt"

	"github.com/dmarkelov/riotswitch/internal/party"
)

func (a *App) cmdParty(ctx context.Context, cmd string, args []string) error {
	if a.poller == nil {
		return fmt.Errorf("no active session; login first")
	}

	switch cmd {
	case "party":
		return a.printParty()
	case "ready":
		return a.poller.SetReady(ctx, boolArg(args))
	case "queue":
		if len(args) != 1 {
			return fmt.Errorf("usage: queue <queueId>")
		}
		return a.poller.SetQueue(ctx, args[0])
	case "matchmake":
		if boolWord(args, "start") {
			return a.poller.StartMatchmaking(ctx)
		}
		return a.poller.StopMatchmaking(ctx)
	case "open":
		return a.poller.SetAccessibility(ctx, boolArg(args))
	case "code":
		if boolWord(args, "remove") {
			return a.poller.RemoveCode(ctx)
		}
		code, err := a.poller.GenerateCode(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "invite code: %s\n", code)
		return nil
	case "invite":
		if len(args) != 2 {
			return fmt.Errorf("usage: invite <name> <tag>")
		}
		return a.poller.Invite(ctx, args[0], args[1])
	case "joincode":
		if len(args) != 1 {
			return fmt.Errorf("usage: joincode <code>")
		}
		return a.poller.JoinByCode(ctx, args[0])
	case "leave":
		return a.poller.Leave(ctx)
	}
	return fmt.Errorf("unknown party command %q", cmd)
}

func (a *App) printParty() error {
	snap := a.poller.Snapshot()

	switch snap.Err {
	case party.ErrNotReachable:
		if snap.Countdown >= 0 {
			fmt.Fprintf(a.out, "lobby service not reachable; retrying in %ds\n", snap.Countdown)
		} else {
			fmt.Fprintln(a.out, "lobby service not reachable")
		}
		return nil
	case party.ErrGeneric:
		fmt.Fprintln(a.out, "party state unavailable (last poll failed)")
		return nil
	}

	if snap.Party == nil {
		fmt.Fprintln(a.out, "no party yet")
		return nil
	}

	p := snap.Party
	open := "closed"
	if p.Open {
		open = "open"
	}
	fmt.Fprintf(a.out, "party %s  state=%s queue=%s %s\n", p.ID, p.LobbyState, p.QueueID, open)
	if p.InviteCode != "" {
		fmt.Fprintf(a.out, "invite code: %s\n", p.InviteCode)
	}
	for _, m := range p.Members {
		role := " "
		if m.Leader {
			role = "L"
		}
		ready := " "
		if m.Ready {
			ready = "R"
		}
		fmt.Fprintf(a.out, "%s%s %s#%s  level %d tier %d  pings=%v\n", role, ready, m.GameName, m.TagLine, m.Level, m.RankTier, m.Pings)
	}
	return nil
}

func boolArg(args []string) bool {
	return boolWord(args, "on")
}

func boolWord(args []string, word string) bool {
	return len(args) > 0 && args[0] == word
}
