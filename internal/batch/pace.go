package batch

import (
	"context"
	"time"
)

// Pacer enforces a minimum interval between consecutive engine invocations.
// It sits strictly in front of engine calls; skip decisions and probes are
// never paced.
type Pacer struct {
	interval time.Duration
	last     time.Time
	clock    func() time.Time
	sleeper  func(time.Duration)
}

// NewPacer builds a pacer with the given interval in seconds. A non-positive
// interval disables pacing.
func NewPacer(seconds int) *Pacer {
	return &Pacer{
		interval: time.Duration(seconds) * time.Second,
		clock:    time.Now,
		sleeper:  time.Sleep,
	}
}

// Wait blocks until the interval since the previous engine call has elapsed,
// then marks the current call.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.interval > 0 && !p.last.IsZero() {
		if remaining := p.interval - p.clock().Sub(p.last); remaining > 0 {
			p.sleeper(remaining)
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	p.last = p.clock()
	return nil
}
