package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/cryptox"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/stats"
)

// Observer is notified with the full collection after every successful
// mutation. Registered once at startup; the UI layer uses it to refresh
// tray entries and account lists.
type Observer func(accounts []Account)

// Service defines the account vault operations exposed to the UI surface.
type Service interface {
	Load(ctx context.Context) []Account
	Add(ctx context.Context, draft Draft) (*Account, error)
	Update(ctx context.Context, patch Patch) (*Account, error)
	Delete(ctx context.Context, id string) (bool, error)
	DecryptedCredentials(ctx context.Context, id string) (Credentials, error)
}

type service struct {
	store    *Store
	cipher   *cryptox.Cipher
	stats    stats.Provider
	log      logging.Logger
	onMutate Observer
}

// NewService wires the vault. stats may be nil, which disables enrichment.
// onMutate may be nil.
func NewService(store *Store, cipher *cryptox.Cipher, statsProvider stats.Provider, log logging.Logger, onMutate Observer) Service {
	return &service{store: store, cipher: cipher, stats: statsProvider, log: log, onMutate: onMutate}
}

func (s *service) Load(ctx context.Context) []Account {
	return s.store.Load(ctx)
}

// Add validates, encrypts, enriches (best-effort) and persists a new
// account. Only the persistence step can fail the call.
func (s *service) Add(ctx context.Context, draft Draft) (*Account, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if draft.Username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if draft.Password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	encUser, err := s.cipher.EncryptString(draft.Username)
	if err != nil {
		return nil, fmt.Errorf("encrypt username: %w", err)
	}
	encPass, err := s.cipher.EncryptString(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	acc := Account{
		ID:              uuid.NewString(),
		Name:            draft.Name,
		Username:        encUser,
		Password:        encPass,
		RiotID:          draft.RiotID,
		GameType:        draft.GameType,
		BackgroundImage: draft.BackgroundImage,
		CreatedAt:       time.Now().UTC(),
		IsFavorite:      draft.IsFavorite,
	}

	if acc.RiotID != "" {
		s.enrich(ctx, &acc)
	}

	accounts := s.store.Load(ctx)
	accounts = append(accounts, acc)
	if err := s.store.Save(ctx, accounts); err != nil {
		return nil, err
	}

	s.notify(accounts)
	return &acc, nil
}

// Update merges patch into the stored account. Credential fields are
// re-encrypted only when the supplied value differs from the stored
// ciphertext (an equal value is the UI echoing an unedited field back).
// Stats are re-fetched only when the identity tag or game selector
// changed, or when no stats are cached — a pure favorite toggle never
// touches the network.
func (s *service) Update(ctx context.Context, patch Patch) (*Account, error) {
	accounts := s.store.Load(ctx)

	idx := -1
	for i := range accounts {
		if accounts[i].ID == patch.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: account %s", common.ErrNotFound, patch.ID)
	}

	acc, identityChanged := applyPatch(accounts[idx], patch)

	if patch.Username != nil && *patch.Username != acc.Username {
		enc, err := s.cipher.EncryptString(*patch.Username)
		if err != nil {
			return nil, fmt.Errorf("encrypt username: %w", err)
		}
		acc.Username = enc
	}
	if patch.Password != nil && *patch.Password != acc.Password {
		enc, err := s.cipher.EncryptString(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("encrypt password: %w", err)
		}
		acc.Password = enc
	}

	if acc.RiotID != "" && (identityChanged || acc.Stats == nil) {
		s.enrich(ctx, &acc)
	}

	accounts[idx] = acc
	if err := s.store.Save(ctx, accounts); err != nil {
		return nil, err
	}

	s.notify(accounts)
	return &acc, nil
}

// Delete removes the account with the given id. Returns false when no
// such account exists; deleting nothing is not an error.
func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	accounts := s.store.Load(ctx)

	kept := accounts[:0]
	removed := false
	for _, acc := range accounts {
		if acc.ID == id {
			removed = true
			continue
		}
		kept = append(kept, acc)
	}
	if !removed {
		return false, nil
	}

	if err := s.store.Save(ctx, kept); err != nil {
		return false, err
	}

	s.notify(kept)
	return true, nil
}

// DecryptedCredentials returns the plaintext login pair for an account.
// Decryption failures yield empty fields rather than an error so a caller
// rendering a credential list never crashes on one corrupt record.
func (s *service) DecryptedCredentials(ctx context.Context, id string) (Credentials, error) {
	for _, acc := range s.store.Load(ctx) {
		if acc.ID != id {
			continue
		}
		var creds Credentials
		if plain, ok := s.cipher.DecryptString(acc.Username); ok {
			creds.Username = plain
		} else {
			s.log.Warn(ctx, "username ciphertext undecryptable", "account", id)
		}
		if plain, ok := s.cipher.DecryptString(acc.Password); ok {
			creds.Password = plain
		} else {
			s.log.Warn(ctx, "password ciphertext undecryptable", "account", id)
		}
		return creds, nil
	}
	return Credentials{}, fmt.Errorf("%w: account %s", common.ErrNotFound, id)
}

// enrich fetches the public stats blob for the account's riot id. Failure
// is non-fatal: the stats field simply stays as it was.
func (s *service) enrich(ctx context.Context, acc *Account) {
	if s.stats == nil {
		return
	}
	blob, err := s.stats.Fetch(ctx, acc.RiotID, acc.GameType)
	if err != nil {
		s.log.Warn(ctx, "stats enrichment failed", "riotId", acc.RiotID, "error", err)
		return
	}
	acc.Stats = blob
}

func (s *service) notify(accounts []Account) {
	if s.onMutate != nil {
		s.onMutate(accounts)
	}
}
