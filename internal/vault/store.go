package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/filex"
	"github.com/dmarkelov/riotswitch/internal/logging"
)

// Store persists the account collection as one JSON array on disk.
type Store struct {
	path string
	log  logging.Logger
}

func NewStore(path string, log logging.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads the full collection. A missing, empty, whitespace-only or
// unparseable document yields an empty collection — load never fails, so
// a corrupt file degrades to "no accounts" instead of a crash.
func (s *Store) Load(ctx context.Context) []Account {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "account vault unreadable, starting empty", "path", s.path, "error", err)
		}
		return []Account{}
	}

	if strings.TrimSpace(string(data)) == "" {
		return []Account{}
	}

	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		s.log.Warn(ctx, "account vault corrupt, starting empty", "path", s.path, "error", err)
		return []Account{}
	}
	if accounts == nil {
		accounts = []Account{}
	}
	// A nil Stats field marshals as the literal "null" and would come back
	// as a non-nil RawMessage, hiding the absence from the enrichment
	// rules. Normalize it on the way in.
	for i := range accounts {
		if len(accounts[i].Stats) == 0 || bytes.Equal(accounts[i].Stats, []byte("null")) {
			accounts[i].Stats = nil
		}
	}
	return accounts
}

// Save rewrites the collection wholesale via a temp file and rename.
// Failures propagate: silent loss of credential data is unacceptable.
func (s *Store) Save(ctx context.Context, accounts []Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal accounts: %w", common.ErrVaultIO, err)
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrVaultIO, err)
	}
	return nil
}
