package party

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmarkelov/riotswitch/internal/common"
	"github.com/dmarkelov/riotswitch/internal/logging"
	"github.com/dmarkelov/riotswitch/internal/riot"
)

// PollerConfig tunes the poll cadence. Zero values take the defaults.
type PollerConfig struct {
	// Interval between regular polls.
	Interval time.Duration
	// GracePeriod after Start during which "not reachable" is not
	// surfaced as an error — the game client may still be booting the
	// lobby service.
	GracePeriod time.Duration
	// RetryCountdown is the visible wait entered on a "not reachable"
	// result; hitting zero triggers an immediate re-poll.
	RetryCountdown time.Duration
	// Tick is the countdown resolution. Tests shorten it.
	Tick time.Duration
	// LeaveRecheckDelay is how long after a leave the confirming
	// re-poll runs.
	LeaveRecheckDelay time.Duration
}

func (c *PollerConfig) withDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.RetryCountdown <= 0 {
		c.RetryCountdown = 10 * time.Second
	}
	if c.Tick <= 0 {
		c.Tick = time.Second
	}
	if c.LeaveRecheckDelay <= 0 {
		c.LeaveRecheckDelay = 2 * time.Second
	}
}

// Poller maintains the current party snapshot for one authenticated
// session.
type Poller struct {
	client Client
	auth   *riot.AuthSession
	cfg    PollerConfig
	log    logging.Logger

	mu         sync.Mutex
	party      *Party
	errClass   ErrClass
	countdown  int // ticks remaining; -1 when idle
	inFlight   bool
	podHistory map[string]map[string]int
	startedAt  time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(client Client, auth *riot.AuthSession, cfg PollerConfig, log logging.Logger) *Poller {
	cfg.withDefaults()
	return &Poller{
		client:     client,
		auth:       auth,
		cfg:        cfg,
		log:        log,
		countdown:  -1,
		podHistory: map[string]map[string]int{},
	}
}

// Start launches the poll loop. Stop (or ctx cancellation) ends it.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.startedAt = time.Now()

	go p.loop(ctx)
}

// Stop ends the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Snapshot returns the current externally visible state. Countdown is in
// whole ticks (seconds at the default resolution).
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Party: p.party, Err: p.errClass, Countdown: p.countdown}
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	p.pollOnce(ctx)

	pollTicker := time.NewTicker(p.cfg.Interval)
	defer pollTicker.Stop()
	countTicker := time.NewTicker(p.cfg.Tick)
	defer countTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.pollOnce(ctx)
		case <-countTicker.C:
			if p.tickCountdown() {
				p.pollOnce(ctx)
			}
		}
	}
}

// tickCountdown advances the visible countdown by one tick and reports
// whether it hit zero. The countdown holds still while a poll is running.
func (p *Poller) tickCountdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.countdown < 0 || p.inFlight {
		return false
	}
	p.countdown--
	if p.countdown > 0 {
		return false
	}
	p.countdown = -1
	return true
}

// pollOnce runs a single fetch/reconcile cycle.
func (p *Poller) pollOnce(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	party, err := p.client.Fetch(ctx, p.auth)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false

	if err != nil {
		p.party = nil
		switch {
		case errors.Is(err, common.ErrServiceUnavailable):
			if time.Since(p.startedAt) < p.cfg.GracePeriod {
				// Lobby service likely not started yet; keep quiet.
				p.errClass = ErrNone
				return
			}
			p.errClass = ErrNotReachable
			if p.countdown < 0 {
				p.countdown = int(p.cfg.RetryCountdown / p.cfg.Tick)
			}
		default:
			p.log.Error(ctx, "party poll failed", "error", err)
			p.errClass = ErrGeneric
			p.countdown = -1
		}
		return
	}

	p.errClass = ErrNone
	p.countdown = -1
	p.mergePings(party)
	p.party = party
}

// mergePings overlays each member's reported pings onto the known-pod
// history, so a pod missing from one response is not dropped from the UI.
func (p *Poller) mergePings(party *Party) {
	for i := range party.Members {
		m := &party.Members[i]
		known := p.podHistory[m.PUUID]
		if known == nil {
			known = map[string]int{}
			p.podHistory[m.PUUID] = known
		}
		for pod, ping := range m.Pings {
			known[pod] = ping
		}
		merged := make(map[string]int, len(known))
		for pod, ping := range known {
			merged[pod] = ping
		}
		m.Pings = merged
	}
}

// partyID returns the current party id, or "" when no snapshot exists.
func (p *Poller) partyID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.party == nil {
		return ""
	}
	return p.party.ID
}
