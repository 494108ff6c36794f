// Package party polls the matchmaking-lobby service and reconciles its
// state for display, with a visible countdown when the service is not
// reachable yet.
package party

// Member is one player in the lobby. The first member in a Party's list
// is the leader by convention. Pings maps server-pod id to latency in
// milliseconds.
type Member struct {
	PUUID    string
	GameName string
	TagLine  string
	CardID   string
	Level    int
	RankTier int
	Ready    bool
	Leader   bool
	Pings    map[string]int
}

// Party is the normalized lobby snapshot. Recomputed on every poll,
// never persisted.
type Party struct {
	ID            string
	Members       []Member
	LobbyState    string
	QueueID       string
	Open          bool
	InviteCode    string
	PreferredPods []string
}

// ErrClass classifies the last poll outcome.
type ErrClass int

const (
	// ErrNone: last poll succeeded (or none ran yet).
	ErrNone ErrClass = iota
	// ErrNotReachable: the lobby service is not there yet — the game
	// client may simply not have started it. Drives the retry countdown.
	ErrNotReachable
	// ErrGeneric: any other failure.
	ErrGeneric
)

// Snapshot is the poller's externally visible state.
type Snapshot struct {
	Party *Party
	Err   ErrClass
	// Countdown is the seconds remaining before the next automatic
	// re-poll; negative when no countdown is active.
	Countdown int
}
