// internal/poller/runner_test.go
package poller

import (
	"context"
	"testing"
	"time"
)

func TestRunner_EmitsImmediatelyAndOnTick(t *testing.T) {
	d := &fakeDialer{}
	dev := newDevice(t, d, selLike(), nil)

	r := &Runner{ID: "sel-1", Device: dev, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	done := make(chan struct{})
	go func() {
		r.Run(ctx, out)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case res := <-out:
			if res.DeviceID != "sel-1" || len(res.Readings) != 5 || res.At.IsZero() {
				t.Fatalf("unexpected result: %+v", res)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no poll result %d", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop on cancel")
	}
}

func TestRunner_StopsWhenConsumerGone(t *testing.T) {
	d := &fakeDialer{}
	dev := newDevice(t, d, selLike(), nil)
	r := &Runner{ID: "x", Device: dev, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, make(chan PollResult)) // nobody reads
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner blocked on send after cancel")
	}
}
