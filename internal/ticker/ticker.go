// Package ticker drives the game clock when the server owns its own time.
package ticker

import (
	"context"
	"time"
)

// Ticker invokes the handler with the measured elapsed time between ticks,
// so a delayed wakeup still advances the game by real wall time.
type Ticker struct {
	period  time.Duration
	handler func(dt time.Duration)
}

func New(period time.Duration, handler func(dt time.Duration)) *Ticker {
	return &Ticker{period: period, handler: handler}
}

// Run blocks until the context is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	tick := time.NewTicker(t.period)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			t.handler(now.Sub(last))
			last = now
		}
	}
}
