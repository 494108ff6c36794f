package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	// DefaultRegion is assumed when no id token was captured or the geo
	// service cannot be reached.
	DefaultRegion = "eu"

	// fallbackClientVersion is a known-good version string used when the
	// public metadata endpoint is down. Player-data calls reject requests
	// without a plausible version header.
	fallbackClientVersion = "release-08.11-shipping-29-2470061"

	defaultAccountLevel = 1
)

// FinishAuth turns a captured bearer token (and optional id token) into a
// full AuthSession by calling the vendor's backend services in sequence.
//
// Only the entitlements fetch is required: its failure aborts the whole
// aggregation with a nil session and no further calls. Every later step
// degrades a single field on failure — user info to empty strings, region
// to DefaultRegion, client version to a hardcoded fallback, level to 1,
// rank to 0, card id to "".
func (c *Client) FinishAuth(ctx context.Context, accessToken, idToken string) (*AuthSession, error) {
	session := &AuthSession{AccessToken: accessToken}

	ent, err := c.fetchEntitlements(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("entitlements token: %w", err)
	}
	session.EntitlementsToken = ent

	if err := c.fetchUserInfo(ctx, session); err != nil {
		c.log.Warn(ctx, "userinfo unavailable", "error", err)
		// Secondary strategy: the access token itself carries the
		// player id in its subject claim.
		if sub, ok := subjectClaim(accessToken); ok {
			session.PUUID = sub
		}
	}

	session.Region = DefaultRegion
	if idToken != "" {
		if region, err := c.fetchRegion(ctx, idToken); err != nil {
			c.log.Warn(ctx, "geo affinity unavailable, assuming default region", "error", err)
		} else if region != "" {
			session.Region = region
		}
	}

	session.ClientVersion = fallbackClientVersion
	if version, err := c.fetchClientVersion(ctx); err != nil {
		c.log.Warn(ctx, "client version metadata unavailable, using fallback", "error", err)
	} else if version != "" {
		session.ClientVersion = version
	}

	session.AccountLevel = defaultAccountLevel
	if session.PUUID != "" {
		if level, err := c.fetchAccountLevel(ctx, session); err != nil {
			c.log.Warn(ctx, "account level unavailable", "error", err)
		} else {
			session.AccountLevel = level
		}

		if tier, err := c.fetchCompetitiveTier(ctx, session); err != nil {
			c.log.Warn(ctx, "competitive tier unavailable", "error", err)
		} else {
			session.Rank = tier
		}

		if card, err := c.fetchPlayerCard(ctx, session); err != nil {
			c.log.Warn(ctx, "loadout unavailable", "error", err)
		} else {
			session.PlayerCardID = card
		}
	}

	return session, nil
}

func (c *Client) fetchEntitlements(ctx context.Context, accessToken string) (string, error) {
	var out struct {
		EntitlementsToken string `json:"entitlements_token"`
	}
	headers := map[string]string{"Authorization": "Bearer " + accessToken}
	if err := c.DoJSON(ctx, http.MethodPost, c.endpoints.Entitlements, headers, struct{}{}, &out); err != nil {
		return "", err
	}
	if out.EntitlementsToken == "" {
		return "", fmt.Errorf("empty entitlements token")
	}
	return out.EntitlementsToken, nil
}

func (c *Client) fetchUserInfo(ctx context.Context, session *AuthSession) error {
	var out struct {
		Sub  string `json:"sub"`
		Acct struct {
			GameName string `json:"game_name"`
			TagLine  string `json:"tag_line"`
		} `json:"acct"`
	}
	headers := map[string]string{"Authorization": "Bearer " + session.AccessToken}
	if err := c.DoJSON(ctx, http.MethodGet, c.endpoints.UserInfo, headers, nil, &out); err != nil {
		return err
	}
	session.PUUID = out.Sub
	session.GameName = out.Acct.GameName
	session.TagLine = out.Acct.TagLine
	return nil
}

func (c *Client) fetchRegion(ctx context.Context, idToken string) (string, error) {
	var out struct {
		Affinities struct {
			Live string `json:"live"`
		} `json:"affinities"`
	}
	body := map[string]string{"id_token": idToken}
	if err := c.DoJSON(ctx, http.MethodPut, c.endpoints.GeoAffinity, nil, body, &out); err != nil {
		return "", err
	}
	return out.Affinities.Live, nil
}

func (c *Client) fetchClientVersion(ctx context.Context) (string, error) {
	var out struct {
		Data struct {
			RiotClientVersion string `json:"riotClientVersion"`
		} `json:"data"`
	}
	if err := c.DoJSON(ctx, http.MethodGet, c.endpoints.Version, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Data.RiotClientVersion, nil
}

func (c *Client) fetchAccountLevel(ctx context.Context, session *AuthSession) (int, error) {
	var out struct {
		Progress struct {
			Level int `json:"Level"`
		} `json:"Progress"`
	}
	url := c.playerDataURL(session.Region, "/account-xp/v1/players/"+session.PUUID)
	if err := c.DoJSON(ctx, http.MethodGet, url, BearerHeaders(session), nil, &out); err != nil {
		return 0, err
	}
	return out.Progress.Level, nil
}

// mmrResponse is the slice of the vendor MMR payload the tier extraction
// needs. SeasonalInfoBySeasonID stays raw so the fallback strategy can
// scan it in document order.
type mmrResponse struct {
	LatestCompetitiveUpdate struct {
		TierAfterUpdate int `json:"TierAfterUpdate"`
	} `json:"LatestCompetitiveUpdate"`
	QueueSkills struct {
		Competitive struct {
			SeasonalInfoBySeasonID json.RawMessage `json:"SeasonalInfoBySeasonID"`
		} `json:"competitive"`
	} `json:"QueueSkills"`
}

func (c *Client) fetchCompetitiveTier(ctx context.Context, session *AuthSession) (int, error) {
	var out mmrResponse
	url := c.playerDataURL(session.Region, "/mmr/v1/players/"+session.PUUID)
	if err := c.DoJSON(ctx, http.MethodGet, url, BearerHeaders(session), nil, &out); err != nil {
		return 0, err
	}
	return extractTier(&out), nil
}

// extractTier tries the tier sources in order: the latest competitive
// update, then the most recent entry of the seasonal history map. Both
// absent means unranked (0).
func extractTier(mmr *mmrResponse) int {
	for _, strategy := range []func(*mmrResponse) (int, bool){
		tierFromLatestUpdate,
		tierFromSeasonalHistory,
	} {
		if tier, ok := strategy(mmr); ok {
			return tier
		}
	}
	return 0
}

func tierFromLatestUpdate(mmr *mmrResponse) (int, bool) {
	if mmr.LatestCompetitiveUpdate.TierAfterUpdate == 0 {
		return 0, false
	}
	return mmr.LatestCompetitiveUpdate.TierAfterUpdate, true
}

// tierFromSeasonalHistory walks SeasonalInfoBySeasonID in document order
// and keeps the last season's CompetitiveTier. The vendor serializes the
// map oldest-first, so the last entry is the most recent season.
func tierFromSeasonalHistory(mmr *mmrResponse) (int, bool) {
	raw := mmr.QueueSkills.Competitive.SeasonalInfoBySeasonID
	if len(raw) == 0 {
		return 0, false
	}

	var seasons map[string]json.RawMessage
	if err := json.Unmarshal(raw, &seasons); err != nil {
		return 0, false
	}

	// Re-scan the raw object to recover document order, which a Go map
	// discards.
	order := keyOrder(raw)

	for i := len(order) - 1; i >= 0; i-- {
		entry, ok := seasons[order[i]]
		if !ok {
			continue
		}
		var season struct {
			CompetitiveTier int `json:"CompetitiveTier"`
		}
		if err := json.Unmarshal(entry, &season); err != nil {
			continue
		}
		if season.CompetitiveTier > 0 {
			return season.CompetitiveTier, true
		}
	}
	return 0, false
}

func (c *Client) fetchPlayerCard(ctx context.Context, session *AuthSession) (string, error) {
	var out struct {
		Identity struct {
			PlayerCardID string `json:"PlayerCardID"`
		} `json:"Identity"`
	}
	url := c.playerDataURL(session.Region, "/personalization/v2/players/"+session.PUUID+"/playerloadout")
	if err := c.DoJSON(ctx, http.MethodGet, url, BearerHeaders(session), nil, &out); err != nil {
		return "", err
	}
	return out.Identity.PlayerCardID, nil
}
