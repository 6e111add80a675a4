package poller

import (
	"context"
	"time"
)

// Run polls once immediately, then on every tick until ctx is done.
// A tick that arrives while another cycle is still running is skipped.
func (p *Poller) Run(ctx context.Context) {
	go p.PollNow(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick starts a timer-driven cycle unless one is outstanding. It reports
// whether a cycle was started.
func (p *Poller) tick(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(0, 1) {
		p.log.Debug("tick skipped, poll in flight")
		return false
	}
	go p.run(ctx)
	return true
}
