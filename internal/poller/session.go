// internal/poller/session.go
package poller

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrSessionUnavailable is returned when no session could be opened for a read.
var ErrSessionUnavailable = errors.New("poller: modbus session unavailable")

// Endpoint identifies one Modbus TCP slave.
type Endpoint struct {
	Address string
	Port    int
	UnitID  uint8
}

func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

// Transport is one Modbus TCP connection.
// Calls are never concurrent; the owning Device serializes them.
type Transport interface {
	Connect() error
	ReadInputRegisters(unitID uint8, address, quantity uint16) ([]uint16, error)
	Close() error
}

// Dialer builds an unconnected transport for an endpoint.
type Dialer func(Endpoint) Transport

// OpenError reports a failed session open.
type OpenError struct {
	Endpoint Endpoint
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("poller: open %s: %v", e.Endpoint.HostPort(), e.Err)
}

func (e *OpenError) Unwrap() []error { return []error{ErrSessionUnavailable, e.Err} }

// Session wraps one open transport.
type Session struct {
	tr Transport
}

func (s *Session) ReadInputRegisters(unitID uint8, address, quantity uint16) ([]uint16, error) {
	return s.tr.ReadInputRegisters(unitID, address, quantity)
}

// SessionManager owns at most one session for one endpoint.
// It is not safe for concurrent use on its own.
type SessionManager struct {
	ep   Endpoint
	dial Dialer
	log  zerolog.Logger

	sess *Session

	// failed caches an open failure until the next cycle so one poll dials once.
	failed error
}

func NewSessionManager(ep Endpoint, dial Dialer, log zerolog.Logger) *SessionManager {
	return &SessionManager{ep: ep, dial: dial, log: log}
}

func (m *SessionManager) Endpoint() Endpoint { return m.ep }

func (m *SessionManager) IsOpen() bool { return m.sess != nil }

// BeginCycle forgets a cached open failure so the next EnsureOpen dials again.
func (m *SessionManager) BeginCycle() {
	m.failed = nil
}

// EnsureOpen returns the live session, opening one if none is held.
// A live session is returned unchanged and never reopened.
func (m *SessionManager) EnsureOpen() (*Session, error) {
	if m.sess != nil {
		return m.sess, nil
	}
	if m.failed != nil {
		return nil, m.failed
	}

	tr := m.dial(m.ep)
	if err := tr.Connect(); err != nil {
		_ = tr.Close()
		oerr := &OpenError{Endpoint: m.ep, Err: err}
		m.failed = oerr
		m.log.Warn().
			Err(err).
			Str("address", m.ep.Address).
			Int("port", m.ep.Port).
			Msg("modbus tcp connection failed")
		return nil, oerr
	}

	m.sess = &Session{tr: tr}
	m.log.Info().
		Str("address", m.ep.Address).
		Int("port", m.ep.Port).
		Msg("modbus tcp client connected")
	return m.sess, nil
}

// Close releases the held session, if any.
// The reference is dropped even when the transport fails to close.
func (m *SessionManager) Close() (bool, error) {
	if m.sess == nil {
		return false, nil
	}
	sess := m.sess
	m.sess = nil
	m.failed = nil

	if err := sess.tr.Close(); err != nil {
		return true, fmt.Errorf("poller: close %s: %w", m.ep.HostPort(), err)
	}
	return true, nil
}
