package config

import (
	"flag"
	"os"

	"github.com/dmarkelov/riotswitch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory for the vault documents
//	-r string   path to the Riot client launcher executable
//	-s string   path to the keystroke scripting host
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for vault documents")
	fs.StringVar(&cfg.RiotClientPath, "r", cfg.RiotClientPath, "path to the Riot client launcher")
	fs.StringVar(&cfg.ScriptHostPath, "s", cfg.ScriptHostPath, "path to the keystroke scripting host")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
