package browser

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Jar is an enumerable in-memory cookie store. It implements Partition
// directly and adapts to net/http's CookieJar via HTTPJar, so the same
// store backs both the session vault and the headless view's HTTP client.
type Jar struct {
	mu      sync.Mutex
	cookies map[string]Cookie // keyed by domain|path|name
}

func NewJar() *Jar {
	return &Jar{cookies: map[string]Cookie{}}
}

func cookieKey(c Cookie) string {
	return c.Domain + "|" + c.Path + "|" + c.Name
}

// Cookies implements Partition.
func (j *Jar) Cookies(ctx context.Context) ([]Cookie, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return cookieKey(out[a]) < cookieKey(out[b]) })
	return out, nil
}

// SetCookie implements Partition. The origin URL supplies defaults for
// cookies without an explicit domain.
func (j *Jar) SetCookie(ctx context.Context, originURL string, c Cookie) error {
	if c.Domain == "" {
		if u, err := url.Parse(originURL); err == nil {
			c.Domain = u.Hostname()
		}
	}
	if c.Path == "" {
		c.Path = "/"
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies[cookieKey(c)] = c
	return nil
}

// Clear implements Partition.
func (j *Jar) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = map[string]Cookie{}
	return nil
}

// HTTPJar adapts the store to http.CookieJar.
func (j *Jar) HTTPJar() http.CookieJar {
	return (*httpJar)(j)
}

type httpJar Jar

func (h *httpJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j := (*Jar)(h)
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, hc := range cookies {
		c := Cookie{
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   hc.Domain,
			Path:     hc.Path,
			Secure:   hc.Secure,
			HTTPOnly: hc.HttpOnly,
		}
		if c.Domain == "" {
			c.Domain = u.Hostname()
		}
		if c.Path == "" {
			c.Path = "/"
		}
		if !hc.Expires.IsZero() {
			c.ExpirationDate = float64(hc.Expires.Unix())
		}

		key := cookieKey(c)
		if hc.MaxAge < 0 || (c.ExpirationDate > 0 && hc.Expires.Before(time.Now())) {
			delete(j.cookies, key)
			continue
		}
		j.cookies[key] = c
	}
}

func (h *httpJar) Cookies(u *url.URL) []*http.Cookie {
	j := (*Jar)(h)
	j.mu.Lock()
	defer j.mu.Unlock()

	host := u.Hostname()
	now := time.Now()

	keys := make([]string, 0, len(j.cookies))
	for k := range j.cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*http.Cookie
	for _, k := range keys {
		c := j.cookies[k]
		if !domainMatch(host, c.Domain) {
			continue
		}
		if !strings.HasPrefix(u.Path, c.Path) && !(u.Path == "" && c.Path == "/") {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		if c.ExpirationDate > 0 && time.Unix(int64(c.ExpirationDate), 0).Before(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func domainMatch(host, domain string) bool {
	domain = strings.TrimPrefix(domain, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
