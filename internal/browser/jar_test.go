package browser

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestJarSetAndEnumerate(t *testing.T) {
	jar := NewJar()
	ctx := context.Background()

	require.NoError(t, jar.SetCookie(ctx, "https://auth.riotgames.com/", Cookie{Name: "ssid", Value: "v1", Domain: ".riotgames.com", Path: "/"}))
	require.NoError(t, jar.SetCookie(ctx, "https://auth.riotgames.com/login", Cookie{Name: "csid", Value: "v2"}))

	cookies, err := jar.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	// Defaults derived from the origin URL.
	var csid Cookie
	for _, c := range cookies {
		if c.Name == "csid" {
			csid = c
		}
	}
	require.Equal(t, "auth.riotgames.com", csid.Domain)
	require.Equal(t, "/", csid.Path)
}

func TestJarSetCookieReplaces(t *testing.T) {
	jar := NewJar()
	ctx := context.Background()

	c := Cookie{Name: "ssid", Value: "old", Domain: ".riotgames.com", Path: "/"}
	require.NoError(t, jar.SetCookie(ctx, "", c))
	c.Value = "new"
	require.NoError(t, jar.SetCookie(ctx, "", c))

	cookies, err := jar.Cookies(ctx)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	require.Equal(t, "new", cookies[0].Value)
}

func TestJarClear(t *testing.T) {
	jar := NewJar()
	ctx := context.Background()

	require.NoError(t, jar.SetCookie(ctx, "", Cookie{Name: "ssid", Domain: "x", Path: "/"}))
	require.NoError(t, jar.Clear(ctx))

	cookies, err := jar.Cookies(ctx)
	require.NoError(t, err)
	require.Empty(t, cookies)
}

func TestHTTPJarRoundtrip(t *testing.T) {
	jar := NewJar()
	hj := jar.HTTPJar()
	origin := mustURL(t, "https://auth.riotgames.com/login")

	hj.SetCookies(origin, []*http.Cookie{
		{Name: "ssid", Value: "v1", Domain: ".riotgames.com", Secure: true},
		{Name: "local", Value: "v2"},
	})

	// Both stores see the same cookies.
	cookies, err := jar.Cookies(context.Background())
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	got := hj.Cookies(mustURL(t, "https://auth.riotgames.com/login"))
	require.Len(t, got, 2)
}

func TestHTTPJarDomainScoping(t *testing.T) {
	jar := NewJar()
	hj := jar.HTTPJar()

	hj.SetCookies(mustURL(t, "https://auth.riotgames.com/"), []*http.Cookie{
		{Name: "wide", Value: "v", Domain: ".riotgames.com"},
		{Name: "narrow", Value: "v"},
	})

	names := func(cookies []*http.Cookie) []string {
		out := make([]string, 0, len(cookies))
		for _, c := range cookies {
			out = append(out, c.Name)
		}
		return out
	}

	// The subdomain cookie stays on its host; the domain cookie follows
	// every riotgames.com host.
	require.ElementsMatch(t, []string{"wide", "narrow"}, names(hj.Cookies(mustURL(t, "https://auth.riotgames.com/"))))
	require.ElementsMatch(t, []string{"wide"}, names(hj.Cookies(mustURL(t, "https://playvalorant.riotgames.com/"))))
	require.Empty(t, hj.Cookies(mustURL(t, "https://example.com/")))
}

func TestHTTPJarSecureCookies(t *testing.T) {
	jar := NewJar()
	hj := jar.HTTPJar()

	hj.SetCookies(mustURL(t, "https://auth.riotgames.com/"), []*http.Cookie{
		{Name: "ssid", Value: "v", Secure: true},
	})

	require.Len(t, hj.Cookies(mustURL(t, "https://auth.riotgames.com/")), 1)
	require.Empty(t, hj.Cookies(mustURL(t, "http://auth.riotgames.com/")), "secure cookie must not go over http")
}

func TestHTTPJarExpiry(t *testing.T) {
	jar := NewJar()
	hj := jar.HTTPJar()
	origin := mustURL(t, "https://auth.riotgames.com/")

	hj.SetCookies(origin, []*http.Cookie{
		{Name: "live", Value: "v", Expires: time.Now().Add(time.Hour)},
	})
	require.Len(t, hj.Cookies(origin), 1)

	// MaxAge<0 is an explicit delete.
	hj.SetCookies(origin, []*http.Cookie{
		{Name: "live", Value: "", MaxAge: -1},
	})
	require.Empty(t, hj.Cookies(origin))
}

func TestDomainMatch(t *testing.T) {
	tests := []struct {
		host, domain string
		want         bool
	}{
		{"auth.riotgames.com", ".riotgames.com", true},
		{"auth.riotgames.com", "riotgames.com", true},
		{"auth.riotgames.com", "auth.riotgames.com", true},
		{"riotgames.com", ".riotgames.com", true},
		{"evilriotgames.com", ".riotgames.com", false},
		{"riotgames.com.evil.net", "riotgames.com", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, domainMatch(tt.host, tt.domain), "%s vs %s", tt.host, tt.domain)
	}
}
