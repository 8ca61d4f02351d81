// internal/poller/types.go
package poller

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/tamzrod/transformer-monitor/internal/decode"
)

// FailureKind classifies why a reading has no value.
type FailureKind uint8

const (
	FailureNone FailureKind = iota
	FailureIO
	FailureConfigure
	FailureModbus
	FailureOther
)

// Sentinel is the string rendered in place of a value for this failure.
// FailureNone renders as "".
func (k FailureKind) Sentinel() string {
	switch k {
	case FailureNone:
		return ""
	case FailureIO:
		return "I/O error"
	case FailureConfigure:
		return "configure"
	case FailureModbus:
		return "modbus error"
	default:
		return "error"
	}
}

// String is the metric/log label for the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "ok"
	case FailureIO:
		return "io"
	case FailureConfigure:
		return "configure"
	case FailureModbus:
		return "modbus"
	default:
		return "other"
	}
}

// PostProcess is applied to a successfully decoded value.
type PostProcess func(float64) float64

// Measurement is one named value read from the device.
type Measurement struct {
	Key   string // output key, stable across polls
	Label string // human readable name used in logs
	Spec  decode.RegisterSpec
	Post  PostProcess
}

func (m Measurement) label() string {
	if m.Label != "" {
		return m.Label
	}
	return m.Key
}

// Reading is either a value or a failure, never both.
type Reading struct {
	Key     string
	Label   string
	Value   float64
	Failure FailureKind
	Err     error
}

func (r Reading) OK() bool { return r.Failure == FailureNone }

// Render returns the value as float64, or the failure sentinel string.
func (r Reading) Render() any {
	if r.OK() {
		return r.Value
	}
	return r.Failure.Sentinel()
}

// ReadingSet keeps readings in configured measurement order.
type ReadingSet []Reading

func (s ReadingSet) Get(key string) (Reading, bool) {
	for _, r := range s {
		if r.Key == key {
			return r, true
		}
	}
	return Reading{}, false
}

func (s ReadingSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, r := range s {
		keys = append(keys, r.Key)
	}
	return keys
}

// Failed counts readings that carry a failure.
func (s ReadingSet) Failed() int {
	n := 0
	for _, r := range s {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Map renders the set into the key -> value|sentinel form callers expect.
func (s ReadingSet) Map() map[string]any {
	out := make(map[string]any, len(s))
	for _, r := range s {
		out[r.Key] = r.Render()
	}
	return out
}

// MarshalJSON writes an object whose keys keep measurement order.
func (s ReadingSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(r.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Render())
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DeviceID string
	At       time.Time
	Readings ReadingSet
}
