// Package stats resolves public profile statistics for a riot id. The
// vault uses it to cache a stats blob on account records; lookups are
// always best-effort and a failure leaves the cache empty.
package stats

import (
	"context"
	"encoding/json"
)

// Provider fetches the public stats blob for an identity tag such as
// "Foo#123". Implementations return the raw JSON payload; the vault
// stores it opaquely.
type Provider interface {
	Fetch(ctx context.Context, riotID, gameType string) (json.RawMessage, error)
}
