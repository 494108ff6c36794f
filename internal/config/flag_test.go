package config

import (
	"flag"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected *Config
		name     string
		args     []string
	}{
		{name: "Test1 all flags", args: []string{"cmd", "-d", "/data", "-r", `C:\Riot\rc.exe`, "-s", "/usr/bin/typer"},
			expected: &Config{DataDir: "/data", RiotClientPath: `C:\Riot\rc.exe`, ScriptHostPath: "/usr/bin/typer"}},
		{name: "Test2 unknown flags filtered", args: []string{"cmd", "-d", "/data", "-test.v"},
			expected: &Config{DataDir: "/data"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
