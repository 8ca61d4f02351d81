// internal/poller/poller.go
package poller

import (
	"errors"
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// Round rounds to the nearest integer, halves to even.
func Round(v float64) float64 { return math.RoundToEven(v) }

// Config is the immutable wiring of one device instance.
type Config struct {
	Name         string
	Endpoint     Endpoint
	Measurements []Measurement
	Dialer       Dialer
	Logger       zerolog.Logger
	Recorder     Recorder
}

// Device polls one Modbus endpoint through a single long-lived session.
// Poll, Shutdown and Reconfigure are serialized.
type Device struct {
	mu sync.Mutex

	name     string
	ms       []Measurement
	dial     Dialer
	log      zerolog.Logger
	rec      Recorder
	sessions *SessionManager
	fetcher  *Fetcher
}

// New creates a device. No connection is opened until the first Poll.
func New(cfg Config) (*Device, error) {
	if cfg.Name == "" {
		return nil, errors.New("poller: device name required")
	}
	if cfg.Dialer == nil {
		return nil, errors.New("poller: dialer required")
	}
	if len(cfg.Measurements) == 0 {
		return nil, errors.New("poller: at least one measurement required")
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}

	d := &Device{
		name: cfg.Name,
		dial: cfg.Dialer,
		log:  cfg.Logger.With().Str("device", cfg.Name).Logger(),
		rec:  cfg.Recorder,
	}
	d.bind(cfg.Endpoint, cfg.Measurements)
	return d, nil
}

func (d *Device) bind(ep Endpoint, ms []Measurement) {
	d.ms = append([]Measurement(nil), ms...)
	d.sessions = NewSessionManager(ep, d.dial, d.log)
	d.fetcher = NewFetcher(d.name, d.sessions, d.log, d.rec)
}

func (d *Device) Name() string { return d.name }

func (d *Device) Endpoint() Endpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions.Endpoint()
}

func (d *Device) SessionOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions.IsOpen()
}

// Poll performs exactly one poll cycle.
// It always returns one reading per measurement, in configured order;
// a failed measurement never stops the others.
func (d *Device) Poll() ReadingSet {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions.BeginCycle()

	// Surface connectivity once per cycle; fetches reuse the outcome.
	if d.sessions.IsOpen() {
		d.log.Debug().Msg("reusing modbus session")
	} else {
		_, _ = d.sessions.EnsureOpen()
	}
	d.rec.SetSessionOpen(d.name, d.sessions.IsOpen())

	out := make(ReadingSet, 0, len(d.ms))
	for _, m := range d.ms {
		r := d.fetcher.Fetch(m)
		if r.OK() && m.Post != nil {
			r.Value = m.Post(r.Value)
		}
		out = append(out, r)
	}

	d.rec.ObservePoll(d.name, out.Failed())
	return out
}

// Shutdown closes the session if one is open. It is safe to call repeatedly.
// A failure to close is the only error the device reports to its caller.
func (d *Device) Shutdown() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	closed, err := d.sessions.Close()
	d.rec.SetSessionOpen(d.name, false)
	if err != nil {
		d.log.Error().Err(err).Msg("modbus client close failed")
		return "", err
	}
	if closed {
		d.log.Info().Msg("modbus client connection closed")
		return d.name + " Modbus client connection closed.", nil
	}
	return d.name + " plugin shut down.", nil
}

// Reconfigure discards the current session and rebinds the device.
func (d *Device) Reconfigure(ep Endpoint, ms []Measurement) error {
	if len(ms) == 0 {
		return errors.New("poller: at least one measurement required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.sessions.Close()
	d.rec.SetSessionOpen(d.name, false)
	d.bind(ep, ms)
	if err != nil {
		d.log.Warn().Err(err).Msg("closing previous session during reconfigure")
	}
	d.log.Info().
		Str("address", ep.Address).
		Int("port", ep.Port).
		Int("measurements", len(ms)).
		Msg("device reconfigured")
	return err
}
