// Package session persists completed logins: the player's profile fields
// plus an encrypted copy of the browser partition's cookie jar, so the
// user can hop back into an account without re-typing credentials.
package session

import "time"

// SavedSession is the on-disk record for one player identity. PUUID is
// the primary key; the collection holds exactly one record per player
// (upsert semantics). Cookies holds the encrypted serialized jar.
type SavedSession struct {
	PUUID        string    `json:"puuid"`
	GameName     string    `json:"gameName"`
	TagLine      string    `json:"tagLine"`
	Region       string    `json:"region"`
	AccountLevel int       `json:"accountLevel"`
	Rank         int       `json:"rank"`
	PlayerCardID string    `json:"playerCardId"`
	Cookies      string    `json:"cookies"`
	SavedAt      time.Time `json:"savedAt"`
}
