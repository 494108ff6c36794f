// Package riot talks to the vendor's first-party HTTP APIs: token
// issuance, user info, geo affinity, client metadata and the per-shard
// player-data endpoints. It assembles the in-memory AuthSession that every
// downstream component consumes.
package riot

// AuthSession is the enriched result of a completed login. It lives only
// in memory; its persisted counterpart (with cookies) is session.SavedSession.
type AuthSession struct {
	AccessToken       string
	EntitlementsToken string

	PUUID    string
	GameName string
	TagLine  string

	Region        string
	AccountLevel  int
	Rank          int
	PlayerCardID  string
	ClientVersion string
}

// RiotID renders the "name#tag" identity, or "" when unknown.
func (s *AuthSession) RiotID() string {
	if s.GameName == "" {
		return ""
	}
	return s.GameName + "#" + s.TagLine
}
