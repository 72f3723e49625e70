// Package rollout runs the discover, inspect, resolve and deploy pipeline.
// This is part of the Imperative Shell - it drives the AWS collaborators.
package rollout

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// MinRequestDelay is the smallest gap allowed between two CreateDeployment
// calls.
const MinRequestDelay = time.Second

// Pacer spaces out successive dispatches so that at least Interval passes
// between any two of them. It is the only backpressure the rollout applies to
// CodeDeploy. A Pacer is not safe for concurrent use.
type Pacer struct {
	clock    clockwork.Clock
	interval time.Duration
	last     time.Time
	started  bool
}

// NewPacer creates a pacer. A nil clock uses the real clock.
func NewPacer(clock clockwork.Clock, interval time.Duration) *Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pacer{clock: clock, interval: interval}
}

// Wait blocks until the next dispatch is allowed. The first call returns
// immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.started {
		if wait := p.interval - p.clock.Since(p.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(wait):
			}
		}
	}
	p.last = p.clock.Now()
	p.started = true
	return nil
}
