package riot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarkelov/riotswitch/internal/logging"
)

// vendorServer simulates the whole backend surface behind one mux. Fail*
// flags turn individual services into 500s; call counts let tests assert
// which services were consulted.
type vendorServer struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int

	FailEntitlements bool
	FailUserInfo     bool
	FailGeo          bool
	FailVersion      bool
	FailMMR          bool

	MMRBody json.RawMessage
}

func newVendorServer(t *testing.T) *vendorServer {
	t.Helper()
	v := &vendorServer{calls: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/entitlements", v.handler("entitlements", &v.FailEntitlements, func(w http.ResponseWriter) {
		writeJSON(w, map[string]string{"entitlements_token": "ent-token"})
	}))
	mux.HandleFunc("/userinfo", v.handler("userinfo", &v.FailUserInfo, func(w http.ResponseWriter) {
		writeJSON(w, map[string]any{
			"sub":  "puuid-1",
			"acct": map[string]string{"game_name": "Foo", "tag_line": "123"},
		})
	}))
	mux.HandleFunc("/geo", v.handler("geo", &v.FailGeo, func(w http.ResponseWriter) {
		writeJSON(w, map[string]any{"affinities": map[string]string{"live": "na"}})
	}))
	mux.HandleFunc("/version", v.handler("version", &v.FailVersion, func(w http.ResponseWriter) {
		writeJSON(w, map[string]any{"data": map[string]string{"riotClientVersion": "release-09.01-live"}})
	}))
	// Player-data paths arrive under a /pd/<shard>/ prefix, matching how
	// the shard is substituted into the PlayerData endpoint template.
	mux.HandleFunc("/pd/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/account-xp/"):
			v.handler("xp", nil, func(w http.ResponseWriter) {
				writeJSON(w, map[string]any{"Progress": map[string]int{"Level": 57}})
			})(w, r)
		case strings.Contains(r.URL.Path, "/mmr/"):
			v.handler("mmr", &v.FailMMR, func(w http.ResponseWriter) {
				body := v.MMRBody
				if body == nil {
					body = json.RawMessage(`{"LatestCompetitiveUpdate":{"TierAfterUpdate":15}}`)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(body)
			})(w, r)
		case strings.Contains(r.URL.Path, "/personalization/"):
			v.handler("loadout", nil, func(w http.ResponseWriter) {
				writeJSON(w, map[string]any{"Identity": map[string]string{"PlayerCardID": "card-9"}})
			})(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	v.Server = httptest.NewServer(mux)
	t.Cleanup(v.Server.Close)
	return v
}

func (v *vendorServer) handler(name string, fail *bool, ok func(http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v.mu.Lock()
		v.calls[name]++
		v.mu.Unlock()
		if fail != nil && *fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		ok(w)
	}
}

func (v *vendorServer) count(name string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls[name]
}

func (v *vendorServer) client(t *testing.T) *Client {
	t.Helper()
	return NewClient(Endpoints{
		Entitlements: v.URL + "/entitlements",
		UserInfo:     v.URL + "/userinfo",
		GeoAffinity:  v.URL + "/geo",
		Version:      v.URL + "/version",
		PlayerData:   v.URL + "/pd/%s",
	}, v.Server.Client(), nil, logging.NewNoopLogger())
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// unsignedToken builds a JWT-shaped token carrying only a sub claim.
func unsignedToken(t *testing.T, sub string) string {
	t.Helper()
	enc := func(v any) string {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := enc(map[string]string{"alg": "none", "typ": "JWT"})
	payload := enc(map[string]string{"sub": sub})
	return header + "." + payload + "."
}

func TestFinishAuthHappyPath(t *testing.T) {
	v := newVendorServer(t)

	session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
	require.NoError(t, err)

	require.Equal(t, "ent-token", session.EntitlementsToken)
	require.Equal(t, "puuid-1", session.PUUID)
	require.Equal(t, "Foo", session.GameName)
	require.Equal(t, "123", session.TagLine)
	require.Equal(t, "Foo#123", session.RiotID())
	require.Equal(t, "na", session.Region)
	require.Equal(t, "release-09.01-live", session.ClientVersion)
	require.Equal(t, 57, session.AccountLevel)
	require.Equal(t, 15, session.Rank)
	require.Equal(t, "card-9", session.PlayerCardID)
}

func TestFinishAuthEntitlementsFailureAborts(t *testing.T) {
	v := newVendorServer(t)
	v.FailEntitlements = true

	session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
	require.Error(t, err)
	require.Nil(t, session)

	require.Equal(t, 1, v.count("entitlements"))
	require.Zero(t, v.count("userinfo"), "no call may follow a failed entitlements fetch")
	require.Zero(t, v.count("geo"))
	require.Zero(t, v.count("version"))
}

func TestFinishAuthUserInfoFailureFallsBackToTokenSubject(t *testing.T) {
	v := newVendorServer(t)
	v.FailUserInfo = true

	token := unsignedToken(t, "puuid-from-token")
	session, err := v.client(t).FinishAuth(context.Background(), token, "id-token")
	require.NoError(t, err)

	require.Equal(t, "puuid-from-token", session.PUUID)
	require.Empty(t, session.GameName)
	require.Empty(t, session.TagLine)
	// A recovered player id still unlocks the player-data calls.
	require.Equal(t, 57, session.AccountLevel)
}

func TestFinishAuthUserInfoFailureOpaqueTokenSkipsPlayerData(t *testing.T) {
	v := newVendorServer(t)
	v.FailUserInfo = true

	session, err := v.client(t).FinishAuth(context.Background(), "not-a-jwt", "id-token")
	require.NoError(t, err)

	require.Empty(t, session.PUUID)
	require.Equal(t, 1, session.AccountLevel)
	require.Zero(t, session.Rank)
	require.Zero(t, v.count("xp"))
	require.Zero(t, v.count("mmr"))
	require.Zero(t, v.count("loadout"))
}

func TestFinishAuthRegionDefaults(t *testing.T) {
	t.Run("no id token skips the geo service", func(t *testing.T) {
		v := newVendorServer(t)

		session, err := v.client(t).FinishAuth(context.Background(), "access-token", "")
		require.NoError(t, err)
		require.Equal(t, DefaultRegion, session.Region)
		require.Zero(t, v.count("geo"))
	})

	t.Run("geo failure falls back to default", func(t *testing.T) {
		v := newVendorServer(t)
		v.FailGeo = true

		session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
		require.NoError(t, err)
		require.Equal(t, DefaultRegion, session.Region)
		require.Equal(t, 1, v.count("geo"))
	})
}

func TestFinishAuthVersionFallback(t *testing.T) {
	v := newVendorServer(t)
	v.FailVersion = true

	session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
	require.NoError(t, err)
	require.Equal(t, fallbackClientVersion, session.ClientVersion)
}

func TestFinishAuthTierFromSeasonalHistory(t *testing.T) {
	v := newVendorServer(t)
	// No latest update; the most recent season with a positive tier wins,
	// scanning the history object back from its last key.
	v.MMRBody = json.RawMessage(`{
		"LatestCompetitiveUpdate": {"TierAfterUpdate": 0},
		"QueueSkills": {"competitive": {"SeasonalInfoBySeasonID": {
			"season-old": {"CompetitiveTier": 11},
			"season-mid": {"CompetitiveTier": 13},
			"season-new": {"CompetitiveTier": 0}
		}}}
	}`)

	session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
	require.NoError(t, err)
	require.Equal(t, 13, session.Rank)
}

func TestFinishAuthUnranked(t *testing.T) {
	v := newVendorServer(t)
	v.MMRBody = json.RawMessage(`{}`)

	session, err := v.client(t).FinishAuth(context.Background(), "access-token", "id-token")
	require.NoError(t, err)
	require.Zero(t, session.Rank)
}

func TestExtractTierPrefersLatestUpdate(t *testing.T) {
	var mmr mmrResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"LatestCompetitiveUpdate": {"TierAfterUpdate": 20},
		"QueueSkills": {"competitive": {"SeasonalInfoBySeasonID": {
			"s1": {"CompetitiveTier": 5}
		}}}
	}`), &mmr))
	require.Equal(t, 20, extractTier(&mmr))
}

func TestSubjectClaim(t *testing.T) {
	sub, ok := subjectClaim(unsignedToken(t, "p-1"))
	require.True(t, ok)
	require.Equal(t, "p-1", sub)

	_, ok = subjectClaim("garbage")
	require.False(t, ok)

	_, ok = subjectClaim(unsignedToken(t, ""))
	require.False(t, ok)
}
