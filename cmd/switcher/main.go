package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarkelov/riotswitch/internal/automation"
	"github.com/dmarkelov/riotswitch/internal/browser"
	"github.com/dmarkelov/riotswitch/internal/cli"
	"github.com/dmarkelov/riotswitch/internal/config"
	"github.com/dmarkelov/riotswitch/internal/cryptox"
	"github.com/dmarkelov/riotswitch/internal/filex"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/riot"
	"github.com/dmarkelov/riotswitch/internal/session"
	"github.com/dmarkelov/riotswitch/internal/stats"
	"github.com/dmarkelov/riotswitch/internal/vault"
)

func main() {
	cfg := config.LoadConfig()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
		log.Error(ctx, "cannot prepare data directory", "error", err)
		os.Exit(1)
	}

	cipher := cryptox.New(cryptox.MachineSecret())
	if !cipher.Secure() {
		log.Warn(ctx, "no machine secret available; credentials stored with reversible encoding only")
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	riotClient := riot.NewClient(riot.DefaultEndpoints(), httpClient, limiter, log)

	accountStore := vault.NewStore(filepath.Join(cfg.DataDir, "accounts.json"), log)
	statsProvider := stats.NewHTTPProvider(httpClient)
	accounts := vault.NewService(accountStore, cipher, statsProvider, log, func(all []vault.Account) {
		log.Debug(ctx, "account collection changed", "count", len(all))
	})

	jar := browser.NewJar()
	sessionStore := session.NewStore(filepath.Join(cfg.DataDir, "sessions.json"), log)
	sessions := session.NewVault(sessionStore, cipher, jar, log)

	orch := automation.NewOrchestrator(
		automation.NewExecHost(cfg.ScriptHostPath),
		automation.NewExecController(),
		automation.NewExecClipboard(cfg.ClipboardClearCmd),
		automation.Config{
			GamePath:            cfg.RiotClientPath,
			SettleDelay:         cfg.SettleDelay,
			CheckInterval:       cfg.WindowCheckInterval,
			CheckAttempts:       cfg.WindowCheckAttempts,
			ClipboardClearDelay: cfg.ClipboardClearDelay,
		},
		log,
	)

	app := cli.NewApp(cfg, log, accounts, sessions, jar, riotClient, orch)
	defer app.Close()

	if err := app.RunREPL(ctx); err != nil {
		log.Error(ctx, "repl terminated", "error", err)
		os.Exit(1)
	}
}
