package vault

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/cryptox"
	"github.com/dmarkelov/riotswitch/internal/logging"
)

// ---- fakes ----

type fakeStats struct {
	Ret      json.RawMessage
	Err      error
	Calls    int
	LastID   string
	LastGame string
}

func (f *fakeStats) Fetch(ctx context.Context, riotID, gameType string) (json.RawMessage, error) {
	f.Calls++
	f.LastID = riotID
	f.LastGame = gameType
	return f.Ret, f.Err
}

// ---- helpers ----

type fixture struct {
	svc     Service
	store   *Store
	stats   *fakeStats
	cipher  *cryptox.Cipher
	path    string
	mutated int
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		stats:  &fakeStats{Ret: json.RawMessage(`{"rank":"Gold 2"}`)},
		cipher: cryptox.New([]byte("test-machine")),
		path:   filepath.Join(t.TempDir(), "accounts.json"),
	}
	f.store = NewStore(f.path, logging.NewNoopLogger())
	f.svc = NewService(f.store, f.cipher, f.stats, logging.NewNoopLogger(), func([]Account) { f.mutated++ })
	return f
}

func mustAdd(t *testing.T, f *fixture, draft Draft) *Account {
	t.Helper()
	acc, err := f.svc.Add(context.Background(), draft)
	require.NoError(t, err)
	return acc
}

// ---- tests ----

func TestAddEncryptsCredentials(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	require.NotEqual(t, "u", acc.Username)
	require.NotEqual(t, "p", acc.Password)

	// The on-disk document must not contain the plaintext either.
	raw, err := os.ReadFile(f.path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), `"u"`)
	require.NotContains(t, string(raw), `"p"`)
	require.Equal(t, 1, f.mutated)
}

func TestAddValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, draft := range []Draft{
		{Username: "u", Password: "p"},
		{Name: "n", Password: "p"},
		{Name: "n", Username: "u"},
	} {
		_, err := f.svc.Add(ctx, draft)
		require.ErrorIs(t, err, common.ErrValidation)
	}
	require.Zero(t, f.mutated)
}

func TestAddEnrichesWhenRiotIDPresent(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123", GameType: "valorant"})

	require.Equal(t, 1, f.stats.Calls)
	require.Equal(t, "Foo#123", f.stats.LastID)
	require.JSONEq(t, `{"rank":"Gold 2"}`, string(acc.Stats))
}

func TestAddEnrichmentFailureIsNonFatal(t *testing.T) {
	f := setup(t)
	f.stats.Err = errors.New("tracker down")

	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123", GameType: "valorant"})
	require.Nil(t, acc.Stats)

	// End-to-end shape from the add scenario: everything else intact.
	require.Equal(t, "Foo#123", acc.RiotID)
	require.Equal(t, "valorant", acc.GameType)
	require.NotEqual(t, "u", acc.Username)
}

func TestAddWithoutRiotIDSkipsEnrichment(t *testing.T) {
	f := setup(t)
	mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})
	require.Zero(t, f.stats.Calls)
}

func TestUpdateFavoriteDoesNotRefetchStats(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123"})
	require.Equal(t, 1, f.stats.Calls)

	fav := true
	updated, err := f.svc.Update(context.Background(), Patch{ID: acc.ID, IsFavorite: &fav})
	require.NoError(t, err)
	require.True(t, updated.IsFavorite)
	require.Equal(t, 1, f.stats.Calls, "favorite toggle must not hit the network")
}

func TestUpdateRiotIDRefetchesStats(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123"})

	newID := "Bar#456"
	_, err := f.svc.Update(context.Background(), Patch{ID: acc.ID, RiotID: &newID})
	require.NoError(t, err)
	require.Equal(t, 2, f.stats.Calls)
	require.Equal(t, "Bar#456", f.stats.LastID)
}

func TestUpdateRefetchesWhenStatsAbsent(t *testing.T) {
	f := setup(t)
	f.stats.Err = errors.New("down during add")
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123"})
	require.Nil(t, acc.Stats)

	f.stats.Err = nil
	name := "Renamed"
	updated, err := f.svc.Update(context.Background(), Patch{ID: acc.ID, Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.Stats)
}

func TestUpdateEchoedCiphertextNotReencrypted(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	// The UI echoes the stored (encrypted) value back unchanged.
	echo := acc.Username
	updated, err := f.svc.Update(context.Background(), Patch{ID: acc.ID, Username: &echo})
	require.NoError(t, err)
	require.Equal(t, acc.Username, updated.Username, "unedited field must keep its ciphertext")
}

func TestUpdateNewPlaintextReencrypted(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	newPass := "p2"
	updated, err := f.svc.Update(context.Background(), Patch{ID: acc.ID, Password: &newPass})
	require.NoError(t, err)
	require.NotEqual(t, acc.Password, updated.Password)
	require.NotEqual(t, "p2", updated.Password)

	creds, err := f.svc.DecryptedCredentials(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Equal(t, "p2", creds.Password)
}

func TestUpdateUnknownID(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), Patch{ID: "nope"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	removed, err := f.svc.Delete(context.Background(), acc.ID)
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, f.svc.Load(context.Background()))

	removed, err = f.svc.Delete(context.Background(), acc.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestDecryptedCredentials(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	creds, err := f.svc.DecryptedCredentials(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "u", Password: "p"}, creds)

	_, err = f.svc.DecryptedCredentials(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDecryptedCredentialsForeignCiphertext(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p"})

	// Re-open the vault under a different machine secret: records become
	// undecryptable but the call must not fail.
	otherCipher := cryptox.New([]byte("other-machine"))
	svc := NewService(f.store, otherCipher, f.stats, logging.NewNoopLogger(), nil)

	creds, err := svc.DecryptedCredentials(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Empty(t, creds.Username)
	require.Empty(t, creds.Password)
}

func TestEndToEndAddScenario(t *testing.T) {
	f := setup(t)
	acc := mustAdd(t, f, Draft{Name: "Main", Username: "u", Password: "p", RiotID: "Foo#123", GameType: "valorant"})

	raw, err := os.ReadFile(f.path)
	require.NoError(t, err)
	doc := string(raw)

	require.Contains(t, doc, `"Foo#123"`)
	require.False(t, strings.Contains(doc, `"username": "u"`))
	require.False(t, strings.Contains(doc, `"password": "p"`))
	require.NotNil(t, acc.Stats)
}
