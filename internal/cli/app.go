// Package cli hosts the switcher's interactive surface. It is a thin
// shell over the engine services; every command maps onto one operation
// of the UI contract.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmarkelov/riotswitch/internal/automation"
	"github.com/dmarkelov/riotswitch/internal/browser"
	"github.com/dmarkelov/riotswitch/internal/capture"
	"github.com/dmarkelov/riotswitch/internal/config"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/party"
	"github.com/dmarkelov/riotswitch/internal/riot"
	"github.com/dmarkelov/riotswitch/internal/session"
	"github.com/dmarkelov/riotswitch/internal/vault"
)

// App wires the engine services behind the REPL commands.
type App struct {
	cfg      *config.Config
	log      logging.Logger
	accounts vault.Service
	sessions *session.Vault
	jar      *browser.Jar
	riot     *riot.Client
	orch     *automation.Orchestrator

	reader *bufio.Reader
	out    io.Writer

	// Per-run login state.
	auth   *riot.AuthSession
	poller *party.Poller

	// lastUsed tracks the most recently switched-to account id, kept by
	// the host on behalf of the tray UI.
	lastUsed string
}

func NewApp(cfg *config.Config, log logging.Logger, accounts vault.Service, sessions *session.Vault,
	jar *browser.Jar, riotClient *riot.Client, orch *automation.Orchestrator) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		accounts: accounts,
		sessions: sessions,
		jar:      jar,
		riot:     riotClient,
		orch:     orch,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Switch decrypts the chosen account's credentials, drives the
// automation orchestrator, and records the account as last used.
func (a *App) Switch(ctx context.Context, accountID string) error {
	creds, err := a.accounts.DecryptedCredentials(ctx, accountID)
	if err != nil {
		return err
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("account %s has undecryptable credentials", accountID)
	}
	if err := a.orch.Switch(ctx, creds.Username, creds.Password); err != nil {
		return err
	}
	a.lastUsed = accountID
	return nil
}

// Login runs one token-capture attempt through the headless view. On
// success the session is persisted (cookies included) and the party
// poller starts.
func (a *App) Login(ctx context.Context, silent, forceNew bool) (*riot.AuthSession, error) {
	view := browser.NewHeadlessView(a.jar)
	cap := capture.New(view, a.riot, capture.Options{
		Silent:  silent,
		Timeout: a.cfg.SilentLoginTimeout,
	}, a.log)

	go view.Navigate(ctx, capture.LoginURL(forceNew), cap)

	auth, err := cap.Run(ctx)
	if err != nil {
		return nil, err
	}
	if auth == nil {
		a.log.Info(ctx, "login yielded no session", "state", string(cap.FinalState()))
		return nil, nil
	}

	if _, err := a.sessions.Save(ctx, auth); err != nil {
		a.log.Error(ctx, "saving session failed", "error", err)
	}

	a.setSession(ctx, auth)
	return auth, nil
}

// RestoreSession swaps the partition cookies to the saved identity and
// silently refreshes tokens.
func (a *App) RestoreSession(ctx context.Context, puuid string) (*riot.AuthSession, error) {
	if ok := a.sessions.Restore(ctx, puuid); !ok {
		return nil, fmt.Errorf("no restorable session for %s", puuid)
	}
	return a.Login(ctx, true, false)
}

func (a *App) setSession(ctx context.Context, auth *riot.AuthSession) {
	if a.poller != nil {
		a.poller.Stop()
	}
	a.auth = auth
	a.poller = party.NewPoller(party.NewHTTPClient(a.riot), auth, party.PollerConfig{
		Interval:       a.cfg.PartyPollInterval,
		GracePeriod:    a.cfg.PartyGracePeriod,
		RetryCountdown: a.cfg.PartyRetryCountdown,
	}, a.log)
	a.poller.Start(ctx)
}

// Close stops background work.
func (a *App) Close() {
	if a.poller != nil {
		a.poller.Stop()
	}
}
