package browser

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// NavigationHandler receives the lifecycle events a View host forwards.
// The token-capture state machine satisfies this.
type NavigationHandler interface {
	HandleReady()
	HandleNavigation(ctx context.Context, url string) bool
	HandleLoadFinished(url string)
	HandleLoadFailed()
}

// HeadlessView is a browserless View: it performs the login navigation
// as plain HTTP requests against a cookie jar. With a restored session
// jar the vendor redirects straight to the token fragment, so silent
// refresh works without any embedded browser. Interactive logins (which
// need the rendered credential form) fail the load, which the capture
// machine settles as usual.
type HeadlessView struct {
	jar       *Jar
	client    *http.Client
	destroyed atomic.Bool
}

func NewHeadlessView(jar *Jar) *HeadlessView {
	v := &HeadlessView{jar: jar}
	v.client = &http.Client{
		Jar:     jar.HTTPJar(),
		Timeout: 30 * time.Second,
	}
	return v
}

func (v *HeadlessView) Show()                  {}
func (v *HeadlessView) Close()                 { v.destroyed.Store(true) }
func (v *HeadlessView) Destroyed() bool        { return v.destroyed.Load() }
func (v *HeadlessView) InjectCSS(string) error { return nil }

// errNavigationSuppressed aborts the redirect chain once the handler
// captured a token.
var errNavigationSuppressed = errors.New("navigation suppressed")

// Navigate loads rawURL and reports every redirect hop to the handler,
// mirroring the navigation events an embedded view would emit.
func (v *HeadlessView) Navigate(ctx context.Context, rawURL string, h NavigationHandler) {
	h.HandleReady()

	client := *v.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if h.HandleNavigation(ctx, req.URL.String()) {
			return errNavigationSuppressed
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		h.HandleLoadFailed()
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, errNavigationSuppressed) {
			return
		}
		h.HandleLoadFailed()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		h.HandleLoadFailed()
		return
	}

	finalURL := resp.Request.URL.String()
	if h.HandleNavigation(ctx, finalURL) {
		return
	}
	h.HandleLoadFinished(finalURL)
}
