// Package capture drives one embedded-browser login attempt against the
// vendor's web flow and harvests the bearer token from the redirect URL.
//
// Each login attempt gets its own Capture; nothing is shared between
// attempts. The machine settles exactly once, whichever of these fires
// first: a token-bearing navigation completes aggregation, the silent
// timer expires, the user closes the window, or the page fails to load in
// silent mode.
package capture

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmarkelov/riotswitch/internal/browser"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/riot"
)

// State names the phases of a login attempt.
type State string

const (
	StateOpen         State = "open"
	StateShown        State = "shown"
	StateHidden       State = "hidden"
	StateNavigating   State = "navigating"
	StateTokenFound   State = "token_found"
	StateAggregating  State = "aggregating"
	StateResolved     State = "resolved"
	StateTimedOut     State = "timed_out"
	StateClosedByUser State = "closed_by_user"
)

// DefaultSilentTimeout bounds a hidden login attempt waiting for the
// vendor page to redirect on its own.
const DefaultSilentTimeout = 10 * time.Second

// vendorLoginHost is the page that receives cosmetic branding injection.
const vendorLoginHost = "auth.riotgames.com"

// brandingCSS is injected into the vendor's own login page. Best-effort
// cosmetics only.
const brandingCSS = `
body { --rs-accent: #fa4454; }
.theme-dark .login-footer::after { content: "riotswitch"; opacity: .35; }
`

// Aggregator turns a captured token pair into a full session. Satisfied
// by *riot.Client.
type Aggregator interface {
	FinishAuth(ctx context.Context, accessToken, idToken string) (*riot.AuthSession, error)
}

// Options configures one login attempt.
type Options struct {
	// Silent hides the view and arms the timeout; used for background
	// session refresh.
	Silent bool

	// Timeout overrides DefaultSilentTimeout when positive. Only
	// meaningful in silent mode.
	Timeout time.Duration
}

// Capture is the per-attempt state machine.
type Capture struct {
	view browser.View
	agg  Aggregator
	opts Options
	log  logging.Logger

	mu    sync.Mutex
	state State
	timer *time.Timer

	settle  sync.Once
	done    chan struct{}
	session *riot.AuthSession
}

func New(view browser.View, agg Aggregator, opts Options, log logging.Logger) *Capture {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSilentTimeout
	}
	return &Capture{
		view:  view,
		agg:   agg,
		opts:  opts,
		log:   log,
		state: StateOpen,
		done:  make(chan struct{}),
	}
}

// LoginURL is the vendor login entry point for a capture attempt.
// forceNew appends a re-authentication prompt so the vendor ignores any
// live web session and shows the credential form.
func LoginURL(forceNew bool) string {
	v := url.Values{}
	v.Set("redirect_uri", "https://playvalorant.com/opt_in")
	v.Set("client_id", "play-valorant-web-prod")
	v.Set("response_type", "token id_token")
	v.Set("nonce", "1")
	v.Set("scope", "account openid")
	if forceNew {
		v.Set("prompt", "login")
	}
	return "https://" + vendorLoginHost + "/authorize?" + v.Encode()
}

// Run blocks until the attempt settles and returns the session, or nil
// when the attempt yielded no session (timeout, user close, load failure,
// aggregation failure). A nil session is never paired with partial state.
func (c *Capture) Run(ctx context.Context) (*riot.AuthSession, error) {
	if c.opts.Silent {
		c.mu.Lock()
		c.timer = time.AfterFunc(c.opts.Timeout, func() {
			c.log.Info(context.Background(), "silent login timed out")
			c.resolve(StateTimedOut, nil)
		})
		c.mu.Unlock()
	}

	select {
	case <-ctx.Done():
		c.resolve(StateResolved, nil)
		return nil, ctx.Err()
	case <-c.done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, nil
}

// FinalState reports the terminal state after Run returns.
func (c *Capture) FinalState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HandleReady is called by the host when the view finished initializing.
// In non-silent mode the view becomes visible here; a silent view never
// shows.
func (c *Capture) HandleReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return
	}
	if c.opts.Silent {
		c.state = StateHidden
		return
	}
	c.view.Show()
	c.state = StateShown
}

// HandleNavigation inspects one redirect/navigation event. It returns
// true when the event carried a token and default navigation must be
// suppressed; token-less events pass through unmodified.
func (c *Capture) HandleNavigation(ctx context.Context, rawURL string) bool {
	accessToken, idToken := tokensFromURL(rawURL)
	if accessToken == "" {
		c.mu.Lock()
		if c.state == StateShown || c.state == StateHidden {
			c.state = StateNavigating
		}
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	if c.state == StateTokenFound || c.state == StateAggregating ||
		c.state == StateResolved || c.state == StateTimedOut || c.state == StateClosedByUser {
		c.mu.Unlock()
		return true
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.state = StateTokenFound
	c.mu.Unlock()

	go c.aggregate(ctx, accessToken, idToken)
	return true
}

// HandleLoadFinished injects branding when the vendor's own login page
// finished loading. Injection failure is logged, never fatal.
func (c *Capture) HandleLoadFinished(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != vendorLoginHost {
		return
	}
	if err := c.view.InjectCSS(brandingCSS); err != nil {
		c.log.Warn(context.Background(), "branding injection failed", "error", err)
	}
}

// HandleLoadFailed settles a silent attempt whose page never came up. A
// visible attempt keeps the window open so the user sees the vendor's
// error page.
func (c *Capture) HandleLoadFailed() {
	if c.opts.Silent {
		c.resolve(StateTimedOut, nil)
	}
}

// HandleClosed settles the attempt when the user closed the window.
func (c *Capture) HandleClosed() {
	c.resolve(StateClosedByUser, nil)
}

func (c *Capture) aggregate(ctx context.Context, accessToken, idToken string) {
	c.mu.Lock()
	// The attempt may have settled (window closed, silent timeout) between
	// the token handoff and this goroutine running. A settled state is
	// final and must not be overwritten.
	if c.state != StateTokenFound {
		c.mu.Unlock()
		return
	}
	c.state = StateAggregating
	c.mu.Unlock()

	session, err := c.agg.FinishAuth(ctx, accessToken, idToken)
	if err != nil {
		c.log.Error(ctx, "profile aggregation failed", "error", err)
		c.resolve(StateResolved, nil)
		return
	}
	c.resolve(StateResolved, session)
}

// resolve settles the attempt exactly once. Later triggers are no-ops.
// The view is always closed here, guarded against double destruction.
func (c *Capture) resolve(state State, session *riot.AuthSession) {
	c.settle.Do(func() {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.state = state
		c.session = session
		c.mu.Unlock()

		if !c.view.Destroyed() {
			c.view.Close()
		}
		close(c.done)
	})
}

// tokensFromURL extracts the bearer and id tokens from a redirect URL
// fragment of the form ...#access_token=...&id_token=...
func tokensFromURL(rawURL string) (accessToken, idToken string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	fragment := u.Fragment
	if fragment == "" && strings.Contains(rawURL, "#") {
		fragment = rawURL[strings.Index(rawURL, "#")+1:]
	}
	if fragment == "" {
		return "", ""
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return "", ""
	}
	return values.Get("access_token"), values.Get("id_token")
}
