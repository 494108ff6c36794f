package party

import (
	"context"
	"fmt"
	"time"
)

// Mutating lobby actions. Each fires the remote call and immediately
// re-polls so the snapshot reflects the new state; the remote error is
// returned for display but never blocks the re-poll.

func (p *Poller) SetReady(ctx context.Context, ready bool) error {
	return p.act(ctx, func(id string) error {
		return p.client.SetReady(ctx, p.auth, id, ready)
	})
}

func (p *Poller) SetQueue(ctx context.Context, queueID string) error {
	return p.act(ctx, func(id string) error {
		return p.client.SetQueue(ctx, p.auth, id, queueID)
	})
}

func (p *Poller) SetPreferredPods(ctx context.Context, pods []string) error {
	return p.act(ctx, func(id string) error {
		return p.client.SetPreferredPods(ctx, p.auth, id, pods)
	})
}

func (p *Poller) SetAccessibility(ctx context.Context, open bool) error {
	return p.act(ctx, func(id string) error {
		return p.client.SetAccessibility(ctx, p.auth, id, open)
	})
}

func (p *Poller) StartMatchmaking(ctx context.Context) error {
	return p.act(ctx, func(id string) error {
		return p.client.EnterMatchmaking(ctx, p.auth, id)
	})
}

func (p *Poller) StopMatchmaking(ctx context.Context) error {
	return p.act(ctx, func(id string) error {
		return p.client.LeaveMatchmaking(ctx, p.auth, id)
	})
}

func (p *Poller) GenerateCode(ctx context.Context) (string, error) {
	id := p.partyID()
	if id == "" {
		return "", fmt.Errorf("no active party")
	}
	code, err := p.client.GenerateCode(ctx, p.auth, id)
	p.pollOnce(ctx)
	return code, err
}

func (p *Poller) RemoveCode(ctx context.Context) error {
	return p.act(ctx, func(id string) error {
		return p.client.RemoveCode(ctx, p.auth, id)
	})
}

func (p *Poller) Invite(ctx context.Context, name, tag string) error {
	return p.act(ctx, func(id string) error {
		return p.client.Invite(ctx, p.auth, id, name, tag)
	})
}

// JoinByCode needs no current party.
func (p *Poller) JoinByCode(ctx context.Context, code string) error {
	err := p.client.JoinByCode(ctx, p.auth, code)
	p.pollOnce(ctx)
	return err
}

// Leave clears the local snapshot immediately and pessimistically, then
// confirms via a delayed re-poll.
func (p *Poller) Leave(ctx context.Context) error {
	id := p.partyID()
	if id == "" {
		return fmt.Errorf("no active party")
	}

	p.mu.Lock()
	p.party = nil
	p.mu.Unlock()

	err := p.client.Leave(ctx, p.auth, id)
	time.AfterFunc(p.cfg.LeaveRecheckDelay, func() {
		p.pollOnce(ctx)
	})
	return err
}

func (p *Poller) act(ctx context.Context, call func(partyID string) error) error {
	id := p.partyID()
	if id == "" {
		return fmt.Errorf("no active party")
	}
	err := call(id)
	if err != nil {
		p.log.Warn(ctx, "party action failed", "error", err)
	}
	p.pollOnce(ctx)
	return err
}
