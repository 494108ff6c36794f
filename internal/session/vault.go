package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmarkelov/riotswitch/internal/browser"
	"github.com/dmarkelov/riotswitch/internal/cryptox"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/riot"
)

// Vault snapshots and restores the login partition's cookie jar per
// player identity.
type Vault struct {
	store     *Store
	cipher    *cryptox.Cipher
	partition browser.Partition
	log       logging.Logger
}

func NewVault(store *Store, cipher *cryptox.Cipher, partition browser.Partition, log logging.Logger) *Vault {
	return &Vault{store: store, cipher: cipher, partition: partition, log: log}
}

// List returns every saved session.
func (v *Vault) List(ctx context.Context) []SavedSession {
	return v.store.Load(ctx)
}

// Remove deletes one saved session.
func (v *Vault) Remove(ctx context.Context, puuid string) (bool, error) {
	return v.store.Delete(ctx, puuid)
}

// Save reads the partition's current cookie jar, encrypts its serialized
// form, and upserts a record keyed by the session's player id.
func (v *Vault) Save(ctx context.Context, auth *riot.AuthSession) (*SavedSession, error) {
	if auth.PUUID == "" {
		return nil, fmt.Errorf("session has no player id")
	}

	cookies, err := v.partition.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	serialized, err := json.Marshal(cookies)
	if err != nil {
		return nil, fmt.Errorf("serialize cookie jar: %w", err)
	}
	encrypted, err := v.cipher.EncryptString(string(serialized))
	if err != nil {
		return nil, fmt.Errorf("encrypt cookie jar: %w", err)
	}

	rec := SavedSession{
		PUUID:        auth.PUUID,
		GameName:     auth.GameName,
		TagLine:      auth.TagLine,
		Region:       auth.Region,
		AccountLevel: auth.AccountLevel,
		Rank:         auth.Rank,
		PlayerCardID: auth.PlayerCardID,
		Cookies:      encrypted,
		SavedAt:      time.Now().UTC(),
	}
	if err := v.store.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Restore replaces the partition's cookies with the saved jar for puuid.
// Returns false — with no cookie mutation at all — when no record exists,
// decryption fails, or the decrypted payload is empty. On success the
// partition is fully cleared first so one account's cookies can never
// leak into another's session.
func (v *Vault) Restore(ctx context.Context, puuid string) bool {
	rec, ok := v.store.Get(ctx, puuid)
	if !ok {
		return false
	}

	serialized, ok := v.cipher.DecryptString(rec.Cookies)
	if !ok {
		v.log.Warn(ctx, "saved cookie jar undecryptable", "puuid", puuid)
		return false
	}

	var cookies []browser.Cookie
	if err := json.Unmarshal([]byte(serialized), &cookies); err != nil {
		v.log.Warn(ctx, "saved cookie jar unparseable", "puuid", puuid, "error", err)
		return false
	}
	if len(cookies) == 0 {
		return false
	}

	if err := v.partition.Clear(ctx); err != nil {
		v.log.Error(ctx, "clearing login partition failed", "error", err)
		return false
	}

	for _, c := range cookies {
		if err := v.partition.SetCookie(ctx, originURL(c), c); err != nil {
			v.log.Warn(ctx, "cookie injection failed", "cookie", c.Name, "error", err)
		}
	}
	return true
}

// originURL reconstructs the origin a cookie belongs to from its domain
// and secure flag.
func originURL(c browser.Cookie) string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	host := strings.TrimPrefix(c.Domain, ".")
	return scheme + "://" + host + c.Path
}
