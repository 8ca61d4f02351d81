// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Runner drives one device on a fixed interval.
type Runner struct {
	ID       string
	Device   *Device
	Interval time.Duration
	Now      func() time.Time
}

// Run polls once immediately, then on every tick, and emits each PollResult on out.
// One goroutine per device. No overlap. No retries.
func (r *Runner) Run(ctx context.Context, out chan<- PollResult) {
	now := r.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	emit := func() bool {
		res := PollResult{DeviceID: r.ID, At: now(), Readings: r.Device.Poll()}
		select {
		case out <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
