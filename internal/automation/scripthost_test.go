package automation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarkelov/riotswitch/internal/common"
)

// writeHostScript creates a stand-in scripting host that echoes its
// action argument and whatever arrived on stdin.
func writeHostScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script host stand-in is not runnable on windows")
	}
	path := filepath.Join(t.TempDir(), "host.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecHostPassesActionAndPayload(t *testing.T) {
	path := writeHostScript(t, `read -r payload
echo "$1:$payload"
`)
	host := NewExecHost(path)

	out, err := host.Run(context.Background(), ActionSetSecure, "hunter2")
	require.NoError(t, err)
	require.Contains(t, out, "SetSecure:hunter2")
}

func TestExecHostEmptyPayloadDoesNotHang(t *testing.T) {
	// A host draining stdin to EOF must terminate even with no payload.
	path := writeHostScript(t, `cat > /dev/null
echo "Found"
`)
	host := NewExecHost(path)

	out, err := host.Run(context.Background(), ActionCheck, "")
	require.NoError(t, err)
	require.Contains(t, out, WindowFoundMarker)
}

func TestExecHostNonZeroExit(t *testing.T) {
	path := writeHostScript(t, `echo "no window" >&2
exit 3
`)
	host := NewExecHost(path)

	out, err := host.Run(context.Background(), ActionCheck, "")
	require.ErrorIs(t, err, common.ErrScriptFailed)
	require.Contains(t, out, "no window", "stderr is captured for diagnostics")
}

func TestExecHostMissingBinary(t *testing.T) {
	host := NewExecHost(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := host.Run(context.Background(), ActionCheck, "")
	require.ErrorIs(t, err, common.ErrScriptFailed)
}
