package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const helpText = `Commands:
  accounts                 list stored accounts
  add                      add an account (interactive)
  fav <id>                 toggle favorite
  del <id>                 delete an account
  creds <id>               show decrypted credentials
  switch <id>              kill+relaunch the client as this account
  login [silent] [force]   run a login capture
  sessions                 list saved sessions
  restore <puuid>          restore a saved session
  rmsession <puuid>        delete a saved session
  party                    show the current lobby
  ready <on|off>           toggle ready state
  queue <queueId>          change queue
  matchmake <start|stop>   enter/leave matchmaking
  open <on|off>            open/close the party
  code [remove]            generate or remove an invite code
  invite <name> <tag>      invite a player
  joincode <code>          join a party by code
  leave                    leave the party
  exit | quit              leave the program`

// RunREPL reads commands and dispatches them until EOF or exit. It
// shares the app's reader with the interactive prompts, so a command
// like add never loses piped input to a second buffer's readahead.
func (a *App) RunREPL(ctx context.Context) error {
	for {
		fmt.Fprint(a.out, "riotswitch> ")
		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		atEOF := err != nil

		if fields := strings.Fields(line); len(fields) > 0 {
			cmd, args := fields[0], fields[1:]
			if cmd == "exit" || cmd == "quit" {
				return nil
			}
			if err := a.dispatch(ctx, cmd, args); err != nil {
				fmt.Fprintf(a.out, "error: %v\n", err)
			}
		}
		if atEOF {
			return nil
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "accounts":
		return a.cmdAccounts(ctx)
	case "add":
		return a.cmdAdd(ctx)
	case "fav":
		return a.cmdFavorite(ctx, args)
	case "del":
		return a.cmdDelete(ctx, args)
	case "creds":
		return a.cmdCreds(ctx, args)
	case "switch":
		return a.cmdSwitch(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "sessions":
		return a.cmdSessions(ctx)
	case "restore":
		return a.cmdRestore(ctx, args)
	case "rmsession":
		return a.cmdRemoveSession(ctx, args)
	case "party", "ready", "queue", "matchmake", "open", "code", "invite", "joincode", "leave":
		return a.cmdParty(ctx, cmd, args)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}
