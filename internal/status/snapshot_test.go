// internal/status/snapshot_test.go
package status

import (
	"testing"
	"time"

	"github.com/tamzrod/transformer-monitor/internal/poller"
)

func ok(key string) poller.Reading {
	return poller.Reading{Key: key, Value: 1}
}

func failed(key string, k poller.FailureKind) poller.Reading {
	return poller.Reading{Key: key, Failure: k}
}

func TestTracker_StartsUnknown(t *testing.T) {
	var tr Tracker
	if tr.Current().Health != HealthUnknown {
		t.Fatalf("expected unknown health before first poll")
	}
}

func TestTracker_Transitions(t *testing.T) {
	var tr Tracker
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s := tr.Observe(poller.ReadingSet{ok("a"), ok("b")}, t0)
	if s.Health != HealthOK || s.Failed != 0 || s.SecondsInError != 0 {
		t.Fatalf("ok snapshot = %+v", s)
	}

	s = tr.Observe(poller.ReadingSet{ok("a"), failed("b", poller.FailureModbus)}, t0.Add(10*time.Second))
	if s.Health != HealthDegraded || s.Failed != 1 || s.LastFailure != poller.FailureModbus {
		t.Fatalf("degraded snapshot = %+v", s)
	}
	if s.SecondsInError != 0 {
		t.Fatalf("error clock should start at first failing poll, got %d", s.SecondsInError)
	}

	s = tr.Observe(poller.ReadingSet{failed("a", poller.FailureIO), failed("b", poller.FailureIO)}, t0.Add(25*time.Second))
	if s.Health != HealthError || s.Failed != 2 || s.SecondsInError != 15 {
		t.Fatalf("error snapshot = %+v", s)
	}

	s = tr.Observe(poller.ReadingSet{ok("a"), ok("b")}, t0.Add(30*time.Second))
	if s != (Snapshot{Health: HealthOK}) {
		t.Fatalf("recovery should reset, got %+v", s)
	}
}

func TestTracker_SecondsSaturate(t *testing.T) {
	var tr Tracker
	t0 := time.Now()
	bad := poller.ReadingSet{failed("a", poller.FailureIO)}

	tr.Observe(bad, t0)
	s := tr.Observe(bad, t0.Add(48*time.Hour))
	if s.SecondsInError != MaxSecondsInError {
		t.Fatalf("expected saturation, got %d", s.SecondsInError)
	}
}

func TestHealthName(t *testing.T) {
	cases := map[uint16]string{
		HealthUnknown:  "unknown",
		HealthOK:       "ok",
		HealthDegraded: "degraded",
		HealthError:    "error",
		99:             "unknown",
	}
	for code, want := range cases {
		if got := HealthName(code); got != want {
			t.Fatalf("HealthName(%d) = %q, want %q", code, got, want)
		}
	}
}
