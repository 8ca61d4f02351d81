// internal/poller/fetch.go
package poller

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/decode"
)

// ErrInvalidParameter marks a request the client refuses to send.
var ErrInvalidParameter = errors.New("poller: invalid request parameter")

// ReadError carries the context of one failed measurement.
type ReadError struct {
	Measurement string
	Address     uint16
	Kind        FailureKind
	Err         error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s (addr=%d): %s: %v", e.Measurement, e.Address, e.Kind, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Fetcher reads one measurement through the session manager.
type Fetcher struct {
	device   string
	sessions *SessionManager
	log      zerolog.Logger
	rec      Recorder
	now      func() time.Time
}

func NewFetcher(device string, sessions *SessionManager, log zerolog.Logger, rec Recorder) *Fetcher {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Fetcher{
		device:   device,
		sessions: sessions,
		log:      log,
		rec:      rec,
		now:      time.Now,
	}
}

// Fetch never fails: any problem is returned as a classified Reading.
func (f *Fetcher) Fetch(m Measurement) Reading {
	start := f.now()
	r := f.fetch(m)
	f.rec.ObserveRead(f.device, m.Key, r.Failure.String(), f.now().Sub(start))

	if !r.OK() {
		f.log.Error().
			Err(r.Err).
			Str("measurement", m.label()).
			Uint16("address", m.Spec.Address).
			Str("kind", r.Failure.String()).
			Msg("modbus read failed")
	}
	return r
}

func (f *Fetcher) fetch(m Measurement) Reading {
	r := Reading{Key: m.Key, Label: m.label()}

	fail := func(err error) Reading {
		kind := Classify(err)
		r.Failure = kind
		r.Err = &ReadError{Measurement: m.label(), Address: m.Spec.Address, Kind: kind, Err: err}
		return r
	}

	if err := m.Spec.Validate(); err != nil {
		return fail(err)
	}

	sess, err := f.sessions.EnsureOpen()
	if err != nil {
		return fail(err)
	}

	words, err := sess.ReadInputRegisters(f.sessions.Endpoint().UnitID, m.Spec.Address, m.Spec.Count())
	if err != nil {
		return fail(err)
	}
	if len(words) != int(m.Spec.Count()) {
		return fail(fmt.Errorf("poller: got %d registers, want %d", len(words), m.Spec.Count()))
	}

	r.Value = decode.Decode(words, m.Spec.Width, m.Spec.Scaling)
	return r
}

// Classify maps a fetch error onto the four failure kinds.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	switch {
	case errors.Is(err, decode.ErrInvalidSpec), errors.Is(err, ErrInvalidParameter):
		return FailureConfigure
	case errors.Is(err, ErrSessionUnavailable):
		return FailureIO
	}

	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		switch mbErr.ExceptionCode {
		case modbus.ExceptionCodeIllegalDataAddress, modbus.ExceptionCodeIllegalDataValue:
			return FailureConfigure
		default:
			return FailureModbus
		}
	}

	if isIOError(err) {
		return FailureIO
	}

	// goburrow reports client-side and framing problems as plain "modbus: ..." errors.
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "modbus: quantity"):
		return FailureConfigure
	case strings.HasPrefix(msg, "modbus: "):
		return FailureModbus
	}

	return FailureOther
}

func isIOError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
