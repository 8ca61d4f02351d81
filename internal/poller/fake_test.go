// internal/poller/fake_test.go
package poller

import (
	"bytes"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/decode"
)

// ---- fake transport ----

type readCall struct {
	unitID uint8
	addr   uint16
	qty    uint16
}

type fakeTransport struct {
	id         int
	connectErr error
	closeErr   error
	regs       map[uint16][]uint16 // by start address
	failAddr   map[uint16]error

	connects int
	closes   int
	reads    []readCall
}

func (f *fakeTransport) Connect() error {
	f.connects++
	return f.connectErr
}

func (f *fakeTransport) Close() error {
	f.closes++
	return f.closeErr
}

func (f *fakeTransport) ReadInputRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) {
	f.reads = append(f.reads, readCall{unitID: unitID, addr: addr, qty: qty})
	if err, ok := f.failAddr[addr]; ok {
		return nil, err
	}
	words, ok := f.regs[addr]
	if !ok {
		return make([]uint16, qty), nil
	}
	return append([]uint16(nil), words...), nil
}

// ---- fake dialer ----

type fakeDialer struct {
	// template is copied into every new transport
	template fakeTransport
	dialed   []*fakeTransport
	eps      []Endpoint
}

func (d *fakeDialer) dial(ep Endpoint) Transport {
	t := d.template
	t.id = len(d.dialed) + 1
	t.reads = nil
	d.dialed = append(d.dialed, &t)
	d.eps = append(d.eps, ep)
	return &t
}

func (d *fakeDialer) last() *fakeTransport {
	if len(d.dialed) == 0 {
		return nil
	}
	return d.dialed[len(d.dialed)-1]
}

// ---- fake recorder ----

type fakeRecorder struct {
	reads   map[string]int // "measurement|outcome"
	open    []bool
	lastBad int
	polls   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{reads: map[string]int{}}
}

func (r *fakeRecorder) ObserveRead(device, measurement, outcome string, d time.Duration) {
	r.reads[measurement+"|"+outcome]++
}

func (r *fakeRecorder) SetSessionOpen(device string, open bool) {
	r.open = append(r.open, open)
}

func (r *fakeRecorder) ObservePoll(device string, failed int) {
	r.polls++
	r.lastBad = failed
}

// ---- helpers ----

func bufLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}

func temp32(key string, addr uint16) Measurement {
	return Measurement{
		Key:   key,
		Label: key,
		Spec:  decode.RegisterSpec{Address: addr, Width: decode.Width32, Scaling: 1000},
	}
}

func temp16(key string, addr uint16) Measurement {
	return Measurement{
		Key:   key,
		Label: key,
		Spec:  decode.RegisterSpec{Address: addr, Width: decode.Width16, Scaling: 10},
	}
}

var errBoom = errors.New("boom")

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
