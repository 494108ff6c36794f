package cli

import (
	"context"
	"fmt"

	"github.com/dmarkelov/riotswitch/internal/vault"
)

func (a *App) cmdAccounts(ctx context.Context) error {
	accounts := a.accounts.Load(ctx)
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "no accounts stored")
		return nil
	}
	for _, acc := range accounts {
		marker := " "
		if acc.IsFavorite {
			marker = "*"
		}
		last := ""
		if acc.ID == a.lastUsed {
			last = " (last used)"
		}
		fmt.Fprintf(a.out, "%s %s  %s  %s  %s%s\n", marker, acc.ID, acc.Name, acc.RiotID, acc.GameType, last)
	}
	return nil
}

func (a *App) cmdAdd(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Display name", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Login username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Login password")
	if err != nil {
		return err
	}
	riotID, err := GetSimpleText(a.reader, "Riot id (name#tag, optional)", a.out)
	if err != nil {
		return err
	}
	gameType, err := GetSimpleText(a.reader, "Game (valorant/league)", a.out)
	if err != nil {
		return err
	}

	acc, err := a.accounts.Add(ctx, vault.Draft{
		Name:     name,
		Username: username,
		Password: password,
		RiotID:   riotID,
		GameType: gameType,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s (%s)\n", acc.Name, acc.ID)
	if acc.Stats == nil && acc.RiotID != "" {
		fmt.Fprintln(a.out, "note: stats lookup did not succeed; cached stats stay empty")
	}
	return nil
}

func (a *App) cmdFavorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fav <id>")
	}
	var target *vault.Account
	for _, acc := range a.accounts.Load(ctx) {
		if acc.ID == args[0] {
			target = &acc
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown account %s", args[0])
	}
	fav := !target.IsFavorite
	_, err := a.accounts.Update(ctx, vault.Patch{ID: args[0], IsFavorite: &fav})
	return err
}

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: del <id>")
	}
	removed, err := a.accounts.Delete(ctx, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("unknown account %s", args[0])
	}
	fmt.Fprintln(a.out, "deleted")
	return nil
}

func (a *App) cmdCreds(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: creds <id>")
	}
	creds, err := a.accounts.DecryptedCredentials(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "username: %s\npassword: %s\n", creds.Username, creds.Password)
	return nil
}

func (a *App) cmdSwitch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: switch <id>")
	}
	if err := a.Switch(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "switch complete")
	return nil
}
