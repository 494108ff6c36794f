package party

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmarkelov/riotswitch/internal/riot"
)

// Client is the lobby-service surface the poller drives. All mutating
// calls are fire-and-forget from the poller's perspective.
type Client interface {
	Fetch(ctx context.Context, auth *riot.AuthSession) (*Party, error)
	SetReady(ctx context.Context, auth *riot.AuthSession, partyID string, ready bool) error
	SetQueue(ctx context.Context, auth *riot.AuthSession, partyID, queueID string) error
	SetPreferredPods(ctx context.Context, auth *riot.AuthSession, partyID string, pods []string) error
	SetAccessibility(ctx context.Context, auth *riot.AuthSession, partyID string, open bool) error
	EnterMatchmaking(ctx context.Context, auth *riot.AuthSession, partyID string) error
	LeaveMatchmaking(ctx context.Context, auth *riot.AuthSession, partyID string) error
	Leave(ctx context.Context, auth *riot.AuthSession, partyID string) error
	GenerateCode(ctx context.Context, auth *riot.AuthSession, partyID string) (string, error)
	RemoveCode(ctx context.Context, auth *riot.AuthSession, partyID string) error
	Invite(ctx context.Context, auth *riot.AuthSession, partyID, name, tag string) error
	JoinByCode(ctx context.Context, auth *riot.AuthSession, code string) error
}

// HTTPClient implements Client against the vendor's per-shard lobby
// endpoints. BaseURL carries a %s verb filled with the session's region.
type HTTPClient struct {
	BaseURL string
	riot    *riot.Client
}

// DefaultPartyBaseURL is the production lobby endpoint template.
const DefaultPartyBaseURL = "https://glz-%s-1.%s.a.pvp.net"

func NewHTTPClient(riotClient *riot.Client) *HTTPClient {
	return &HTTPClient{BaseURL: DefaultPartyBaseURL, riot: riotClient}
}

func (c *HTTPClient) url(auth *riot.AuthSession, path string) string {
	base := c.BaseURL
	// The production template names the region twice (affinity and
	// shard); test servers use a plain URL with a single verb or none.
	switch countVerbs(base) {
	case 2:
		base = fmt.Sprintf(base, auth.Region, auth.Region)
	case 1:
		base = fmt.Sprintf(base, auth.Region)
	}
	return base + path
}

func countVerbs(s string) int {
	n := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '%' && s[i+1] == 's' {
			n++
		}
	}
	return n
}

// rawParty is the wire shape of the vendor's party document.
type rawParty struct {
	ID      string `json:"ID"`
	State   string `json:"State"`
	Members []struct {
		Subject         string `json:"Subject"`
		IsReady         bool   `json:"IsReady"`
		IsOwner         bool   `json:"IsOwner"`
		CompetitiveTier int    `json:"CompetitiveTier"`
		PlayerIdentity  struct {
			AccountLevel int    `json:"AccountLevel"`
			PlayerCardID string `json:"PlayerCardID"`
		} `json:"PlayerIdentity"`
		Pings []struct {
			Ping      int    `json:"Ping"`
			GamePodID string `json:"GamePodID"`
		} `json:"Pings"`
	} `json:"Members"`
	MatchmakingData struct {
		QueueID           string   `json:"QueueID"`
		PreferredGamePods []string `json:"PreferredGamePods"`
	} `json:"MatchmakingData"`
	Accessibility string `json:"Accessibility"`
	InviteCode    string `json:"InviteCode"`
}

// Fetch resolves the player's current party id, retrieves the party
// document, and normalizes it. Display names come from the name service,
// best-effort.
func (c *HTTPClient) Fetch(ctx context.Context, auth *riot.AuthSession) (*Party, error) {
	var player struct {
		CurrentPartyID string `json:"CurrentPartyID"`
	}
	if err := c.riot.DoJSON(ctx, http.MethodGet, c.url(auth, "/parties/v1/players/"+auth.PUUID), riot.BearerHeaders(auth), nil, &player); err != nil {
		return nil, fmt.Errorf("party membership: %w", err)
	}
	if player.CurrentPartyID == "" {
		return nil, fmt.Errorf("no current party")
	}

	var raw rawParty
	if err := c.riot.DoJSON(ctx, http.MethodGet, c.url(auth, "/parties/v1/parties/"+player.CurrentPartyID), riot.BearerHeaders(auth), nil, &raw); err != nil {
		return nil, fmt.Errorf("party document: %w", err)
	}

	party := &Party{
		ID:            raw.ID,
		LobbyState:    raw.State,
		QueueID:       raw.MatchmakingData.QueueID,
		Open:          raw.Accessibility == "OPEN",
		InviteCode:    raw.InviteCode,
		PreferredPods: raw.MatchmakingData.PreferredGamePods,
	}

	// Leadership by convention: owner first, then document order.
	ownerFirst := make([]int, 0, len(raw.Members))
	for i, m := range raw.Members {
		if m.IsOwner {
			ownerFirst = append([]int{i}, ownerFirst...)
		} else {
			ownerFirst = append(ownerFirst, i)
		}
	}

	names := c.resolveNames(ctx, auth, raw)

	for rank, i := range ownerFirst {
		m := raw.Members[i]
		member := Member{
			PUUID:    m.Subject,
			CardID:   m.PlayerIdentity.PlayerCardID,
			Level:    m.PlayerIdentity.AccountLevel,
			RankTier: m.CompetitiveTier,
			Ready:    m.IsReady,
			Leader:   rank == 0,
			Pings:    map[string]int{},
		}
		for _, p := range m.Pings {
			member.Pings[p.GamePodID] = p.Ping
		}
		if n, ok := names[m.Subject]; ok {
			member.GameName = n.GameName
			member.TagLine = n.TagLine
		}
		party.Members = append(party.Members, member)
	}

	return party, nil
}

type resolvedName struct {
	GameName string `json:"GameName"`
	TagLine  string `json:"TagLine"`
}

// resolveNames maps puuids to display names via the name service. A
// failure leaves names empty; the lobby still renders.
func (c *HTTPClient) resolveNames(ctx context.Context, auth *riot.AuthSession, raw rawParty) map[string]resolvedName {
	puuids := make([]string, 0, len(raw.Members))
	for _, m := range raw.Members {
		puuids = append(puuids, m.Subject)
	}

	var out []struct {
		Subject string `json:"Subject"`
		resolvedName
	}
	err := c.riot.DoJSON(ctx, http.MethodPut, c.url(auth, "/name-service/v2/players"), riot.BearerHeaders(auth), puuids, &out)
	if err != nil {
		return nil
	}

	names := make(map[string]resolvedName, len(out))
	for _, n := range out {
		names[n.Subject] = n.resolvedName
	}
	return names
}

func (c *HTTPClient) SetReady(ctx context.Context, auth *riot.AuthSession, partyID string, ready bool) error {
	body := map[string]bool{"ready": ready}
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/members/"+auth.PUUID+"/setReady"), riot.BearerHeaders(auth), body, nil)
}

func (c *HTTPClient) SetQueue(ctx context.Context, auth *riot.AuthSession, partyID, queueID string) error {
	body := map[string]string{"queueID": queueID}
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/queue"), riot.BearerHeaders(auth), body, nil)
}

func (c *HTTPClient) SetPreferredPods(ctx context.Context, auth *riot.AuthSession, partyID string, pods []string) error {
	body := map[string][]string{"GamePodIDs": pods}
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/preferredgamepods"), riot.BearerHeaders(auth), body, nil)
}

func (c *HTTPClient) SetAccessibility(ctx context.Context, auth *riot.AuthSession, partyID string, open bool) error {
	accessibility := "CLOSED"
	if open {
		accessibility = "OPEN"
	}
	body := map[string]string{"accessibility": accessibility}
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/accessibility"), riot.BearerHeaders(auth), body, nil)
}

func (c *HTTPClient) EnterMatchmaking(ctx context.Context, auth *riot.AuthSession, partyID string) error {
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/matchmaking/join"), riot.BearerHeaders(auth), nil, nil)
}

func (c *HTTPClient) LeaveMatchmaking(ctx context.Context, auth *riot.AuthSession, partyID string) error {
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/matchmaking/leave"), riot.BearerHeaders(auth), nil, nil)
}

func (c *HTTPClient) Leave(ctx context.Context, auth *riot.AuthSession, partyID string) error {
	return c.riot.DoJSON(ctx, http.MethodDelete, c.url(auth, "/parties/v1/players/"+auth.PUUID), riot.BearerHeaders(auth), nil, nil)
}

func (c *HTTPClient) GenerateCode(ctx context.Context, auth *riot.AuthSession, partyID string) (string, error) {
	var out struct {
		InviteCode string `json:"InviteCode"`
	}
	err := c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/invitecode"), riot.BearerHeaders(auth), nil, &out)
	if err != nil {
		return "", err
	}
	return out.InviteCode, nil
}

func (c *HTTPClient) RemoveCode(ctx context.Context, auth *riot.AuthSession, partyID string) error {
	return c.riot.DoJSON(ctx, http.MethodDelete, c.url(auth, "/parties/v1/parties/"+partyID+"/invitecode"), riot.BearerHeaders(auth), nil, nil)
}

func (c *HTTPClient) Invite(ctx context.Context, auth *riot.AuthSession, partyID, name, tag string) error {
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/parties/"+partyID+"/invites/name/"+name+"/tag/"+tag), riot.BearerHeaders(auth), nil, nil)
}

func (c *HTTPClient) JoinByCode(ctx context.Context, auth *riot.AuthSession, code string) error {
	return c.riot.DoJSON(ctx, http.MethodPost, c.url(auth, "/parties/v1/players/joinbycode/"+code), riot.BearerHeaders(auth), nil, nil)
}
