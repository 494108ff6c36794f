package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/filex"
	"github.com/dmarkelov/riotswitch/internal/logging"
)

// Store persists saved sessions as one JSON array, with the same
// temp-file+rename discipline as the account vault.
type Store struct {
	path string
	log  logging.Logger
}

func NewStore(path string, log logging.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads all saved sessions. Missing or corrupt documents degrade to
// an empty collection.
func (s *Store) Load(ctx context.Context) []SavedSession {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn(ctx, "session vault unreadable, starting empty", "path", s.path, "error", err)
		}
		return []SavedSession{}
	}
	if strings.TrimSpace(string(data)) == "" {
		return []SavedSession{}
	}

	var sessions []SavedSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.log.Warn(ctx, "session vault corrupt, starting empty", "path", s.path, "error", err)
		return []SavedSession{}
	}
	if sessions == nil {
		sessions = []SavedSession{}
	}
	return sessions
}

// Upsert inserts or replaces the record keyed by PUUID.
func (s *Store) Upsert(ctx context.Context, rec SavedSession) error {
	sessions := s.Load(ctx)

	replaced := false
	for i := range sessions {
		if sessions[i].PUUID == rec.PUUID {
			sessions[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, rec)
	}
	return s.save(sessions)
}

// Get returns the record for puuid, or false.
func (s *Store) Get(ctx context.Context, puuid string) (SavedSession, bool) {
	for _, rec := range s.Load(ctx) {
		if rec.PUUID == puuid {
			return rec, true
		}
	}
	return SavedSession{}, false
}

// Delete removes the record for puuid. Returns false when absent.
func (s *Store) Delete(ctx context.Context, puuid string) (bool, error) {
	sessions := s.Load(ctx)

	kept := sessions[:0]
	removed := false
	for _, rec := range sessions {
		if rec.PUUID == puuid {
			removed = true
			continue
		}
		kept = append(kept, rec)
	}
	if !removed {
		return false, nil
	}
	return true, s.save(kept)
}

func (s *Store) save(sessions []SavedSession) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal sessions: %w", common.ErrVaultIO, err)
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrVaultIO, err)
	}
	return nil
}
