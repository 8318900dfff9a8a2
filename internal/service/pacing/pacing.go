// Package pacing provides advisory spacing between calls to rate-limited
// upstreams. It is pacing only: it never holds a lock across a request and
// must not serialize unrelated work.
package pacing

import (
	"context"
	"sync"
	"time"
)

// Delay reports how long a caller should wait before issuing the next call,
// given the previous call time and the configured cooldown. Pure function of
// its inputs.
func Delay(now, last time.Time, cooldown time.Duration) time.Duration {
	if last.IsZero() || cooldown <= 0 {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

// Pacer tracks the last call time for one upstream, per process.
type Pacer struct {
	mu       sync.Mutex
	last     time.Time
	cooldown time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

// New builds a pacer with the given cooldown between calls.
func New(cooldown time.Duration) *Pacer {
	return &Pacer{cooldown: cooldown, now: time.Now, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Wait sleeps out any remaining cooldown and records the call. The lock only
// guards the timestamp read/update, not the sleep itself.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	d := Delay(p.now(), p.last, p.cooldown)
	p.last = p.now().Add(d)
	p.mu.Unlock()
	if d <= 0 {
		return nil
	}
	return p.sleep(ctx, d)
}
