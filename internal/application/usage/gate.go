package usage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	domain "github.com/bryanwahyu/medinsight/internal/domain/usage"
)

// ErrLimitReached means the anonymous session has used its free quota.
var ErrLimitReached = errors.New("usage limit reached")

// Gate enforces the anonymous quota. A slot is taken atomically up front
// with Reserve and handed back with Release when the action does not
// complete, so concurrent requests from one session cannot overrun it.
type Gate struct {
	counter domain.Counter
	quota   int
}

func NewGate(counter domain.Counter, quota int) *Gate {
	if quota <= 0 {
		quota = domain.DefaultAnonymousQuota
	}
	return &Gate{counter: counter, quota: quota}
}

func (g *Gate) Quota() int { return g.quota }

// Reservation is one held slot of the anonymous quota. The zero value
// (authenticated callers) holds nothing.
type Reservation struct {
	counter domain.Counter
	key     string
	done    atomic.Bool
}

// Release gives the slot back. Only the first call has any effect.
func (r *Reservation) Release(ctx context.Context) error {
	if r == nil || r.counter == nil || !r.done.CompareAndSwap(false, true) {
		return nil
	}
	return r.counter.Decrement(ctx, r.key)
}

// Keep marks the slot as consumed; a later Release is a no-op.
func (r *Reservation) Keep() {
	if r != nil {
		r.done.Store(true)
	}
}

// Reserve takes one slot for an anonymous session, or returns
// ErrLimitReached without holding anything. Authenticated callers bypass
// the counter entirely.
func (g *Gate) Reserve(ctx context.Context, authenticated bool, sessionToken string) (*Reservation, error) {
	if authenticated {
		return &Reservation{}, nil
	}
	key := domain.SessionKey(sessionToken)
	n, err := g.counter.Increment(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reserve usage slot: %w", err)
	}
	if n > g.quota {
		if err := g.counter.Decrement(ctx, key); err != nil {
			return nil, fmt.Errorf("undo usage slot: %w", err)
		}
		return nil, ErrLimitReached
	}
	return &Reservation{counter: g.counter, key: key}, nil
}

// RecordUser bumps the per-user usage count.
func (g *Gate) RecordUser(ctx context.Context, userID string) (int, error) {
	return g.counter.Increment(ctx, domain.UserKey(userID))
}

// Status is what the caller has left.
type Status struct {
	Authenticated bool `json:"authenticated"`
	Used          int  `json:"used"`
	Quota         int  `json:"quota"`
	Remaining     int  `json:"remaining"`
}

// Status reports quota use. Authenticated callers have no limit, so Quota
// and Remaining are -1.
func (g *Gate) Status(ctx context.Context, authenticated bool, sessionToken, userID string) (Status, error) {
	if authenticated {
		used, err := g.counter.Get(ctx, domain.UserKey(userID))
		if err != nil {
			return Status{}, err
		}
		return Status{Authenticated: true, Used: used, Quota: -1, Remaining: -1}, nil
	}
	used, err := g.counter.Get(ctx, domain.SessionKey(sessionToken))
	if err != nil {
		return Status{}, err
	}
	// a rejected Reserve briefly pushes the count past the quota
	if used > g.quota {
		used = g.quota
	}
	return Status{Used: used, Quota: g.quota, Remaining: g.quota - used}, nil
}
