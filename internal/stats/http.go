package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public tracker API serving account stats as JSON.
const DefaultBaseURL = "https://api.henrikdev.xyz"

// HTTPProvider implements Provider against the public tracker API.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPProvider(client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{BaseURL: DefaultBaseURL, Client: client}
}

// Fetch looks up the stats blob for riotID ("name#tag"). The gameType
// selects the API family; only valorant has a public endpoint today, so
// other selectors return an empty result without a network call.
func (p *HTTPProvider) Fetch(ctx context.Context, riotID, gameType string) (json.RawMessage, error) {
	if gameType != "" && gameType != "valorant" {
		return nil, fmt.Errorf("no stats source for game %q", gameType)
	}

	name, tag, ok := strings.Cut(riotID, "#")
	if !ok || name == "" || tag == "" {
		return nil, fmt.Errorf("malformed riot id %q", riotID)
	}

	endpoint := fmt.Sprintf("%s/valorant/v1/account/%s/%s",
		p.BaseURL, url.PathEscape(name), url.PathEscape(tag))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats lookup: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("stats lookup: invalid JSON payload")
	}
	return json.RawMessage(body), nil
}
