package riot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/logging"
)

// Endpoints names the vendor services the client calls. Tests point these
// at an httptest server; PlayerData carries a %s verb filled with the
// player's shard.
type Endpoints struct {
	Entitlements string
	UserInfo     string
	GeoAffinity  string
	Version      string
	PlayerData   string
}

// DefaultEndpoints returns the production vendor endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Entitlements: "https://entitlements.auth.riotgames.com/api/token/v1",
		UserInfo:     "https://auth.riotgames.com/userinfo",
		GeoAffinity:  "https://riot-geo.pas.si.riotgames.com/pas/v1/product/valorant",
		Version:      "https://valorant-api.com/v1/version",
		PlayerData:   "https://pd.%s.a.pvp.net",
	}
}

// clientPlatform is the static platform descriptor the vendor expects on
// player-data calls (base64 of a fixed JSON blob).
const clientPlatform = "ew0KCSJwbGF0Zm9ybVR5cGUiOiAiUEMiLA0KCSJwbGF0Zm9ybU9TIjogIldpbmRvd3MiLA0KCSJwbGF0Zm9ybU9TVmVyc2lvbiI6ICIxMC4wLjE5MDQyLjEuMjU2LjY0Yml0IiwNCgkicGxhdGZvcm1DaGlwc2V0IjogIlVua25vd24iDQp9"

// Client is the vendor API client shared by the profile aggregator and
// the party layer. All outbound calls go through one rate limiter.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	limiter   *rate.Limiter
	log       logging.Logger
}

func NewClient(endpoints Endpoints, httpClient *http.Client, limiter *rate.Limiter, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{endpoints: endpoints, http: httpClient, limiter: limiter, log: log}
}

// Limiter exposes the shared rate limiter so the party client can reuse it.
func (c *Client) Limiter() *rate.Limiter { return c.limiter }

// HTTP exposes the underlying http.Client for sibling vendor clients.
func (c *Client) HTTP() *http.Client { return c.http }

func (c *Client) playerDataURL(shard, path string) string {
	return fmt.Sprintf(c.endpoints.PlayerData, shard) + path
}

// DoJSON performs one rate-limited request and decodes the JSON response
// into out (which may be nil). Non-2xx statuses map to the error
// taxonomy: 404 becomes common.ErrServiceUnavailable so callers can tell
// "not there yet" from a genuine failure.
func (c *Client) DoJSON(ctx context.Context, method, url string, headers map[string]string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", common.ErrServiceUnavailable, method, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, url, resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BearerHeaders builds the auth header set for first-party calls.
func BearerHeaders(session *AuthSession) map[string]string {
	return map[string]string{
		"Authorization":           "Bearer " + session.AccessToken,
		"X-Riot-Entitlements-JWT": session.EntitlementsToken,
		"X-Riot-ClientVersion":    session.ClientVersion,
		"X-Riot-ClientPlatform":   clientPlatform,
	}
}
