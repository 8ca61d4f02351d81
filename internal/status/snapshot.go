// internal/status/snapshot.go
package status

import (
	"time"

	"github.com/tamzrod/transformer-monitor/internal/poller"
)

// Snapshot is the device health derived from the latest poll.
type Snapshot struct {
	Health         uint16
	Failed         int
	LastFailure    poller.FailureKind
	SecondsInError uint16
}

// Tracker carries health across polls for one device.
// Not safe for concurrent use; one orchestrator goroutine owns it.
type Tracker struct {
	snap       Snapshot
	errorSince time.Time
}

// Current returns the last computed snapshot (HealthUnknown before the first poll).
func (t *Tracker) Current() Snapshot { return t.snap }

// Observe folds one poll into the tracker and returns the new snapshot.
func (t *Tracker) Observe(set poller.ReadingSet, at time.Time) Snapshot {
	failed := 0
	last := poller.FailureNone
	for _, r := range set {
		if !r.OK() {
			failed++
			last = r.Failure
		}
	}

	switch {
	case failed == 0:
		t.snap = Snapshot{Health: HealthOK}
		t.errorSince = time.Time{}
		return t.snap
	case failed == len(set):
		t.snap.Health = HealthError
	default:
		t.snap.Health = HealthDegraded
	}

	t.snap.Failed = failed
	t.snap.LastFailure = last

	if t.errorSince.IsZero() {
		t.errorSince = at
	}
	secs := at.Sub(t.errorSince) / time.Second
	if secs > MaxSecondsInError {
		secs = MaxSecondsInError
	}
	if secs < 0 {
		secs = 0
	}
	t.snap.SecondsInError = uint16(secs)

	return t.snap
}
