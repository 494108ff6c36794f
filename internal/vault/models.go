// Package vault stores the user's gaming identities. Credential fields are
// kept encrypted at rest; the whole collection is a single JSON document
// rewritten atomically on every mutation.
package vault

import (
	"encoding/json"
	"time"
)

// Account is one stored identity. Username and Password hold ciphertext
// produced by cryptox; plaintext never reaches the document on disk.
type Account struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Username        string          `json:"username"`
	Password        string          `json:"password"`
	RiotID          string          `json:"riotId"`
	GameType        string          `json:"gameType"`
	BackgroundImage string          `json:"backgroundImage,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Stats           json.RawMessage `json:"stats"`
	IsFavorite      bool            `json:"isFavorite"`
}

// Draft carries the plaintext values for a new account.
type Draft struct {
	Name            string
	Username        string
	Password        string
	RiotID          string
	GameType        string
	BackgroundImage string
	IsFavorite      bool
}

// Patch is a partial update. Nil fields are untouched; for Username and
// Password a non-nil value equal to the stored ciphertext is treated as
// an unedited echo and left alone, anything else is taken as new
// plaintext and re-encrypted. The caller, not a ciphertext comparison,
// decides whether a credential was edited.
type Patch struct {
	ID              string
	Name            *string
	Username        *string
	Password        *string
	RiotID          *string
	GameType        *string
	BackgroundImage *string
	IsFavorite      *bool
}

// Credentials is the decrypted view of an account's login pair. Fields are
// empty when the stored ciphertext could not be decrypted.
type Credentials struct {
	Username string
	Password string
}

// applyPatch merges the non-credential fields of p into acc and reports
// whether the riot id or game selector changed. Credential and stats
// handling stays in the service, where encryption and enrichment live.
func applyPatch(acc Account, p Patch) (merged Account, identityChanged bool) {
	merged = acc
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.RiotID != nil && *p.RiotID != acc.RiotID {
		merged.RiotID = *p.RiotID
		identityChanged = true
	}
	if p.GameType != nil && *p.GameType != acc.GameType {
		merged.GameType = *p.GameType
		identityChanged = true
	}
	if p.BackgroundImage != nil {
		merged.BackgroundImage = *p.BackgroundImage
	}
	if p.IsFavorite != nil {
		merged.IsFavorite = *p.IsFavorite
	}
	return merged, identityChanged
}
