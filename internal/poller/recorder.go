// internal/poller/recorder.go
package poller

import "time"

// Recorder receives poll observations. Implementations must be safe for
// concurrent use across devices.
type Recorder interface {
	ObserveRead(device, measurement, outcome string, d time.Duration)
	SetSessionOpen(device string, open bool)
	ObservePoll(device string, failed int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) ObserveRead(string, string, string, time.Duration) {}
func (NopRecorder) SetSessionOpen(string, bool)                       {}
func (NopRecorder) ObservePoll(string, int)                           {}
