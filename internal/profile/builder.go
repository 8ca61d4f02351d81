// internal/profile/builder.go
package profile

import (
	"fmt"
	"time"

	"github.com/tamzrod/transformer-monitor/internal/config"
	"github.com/tamzrod/transformer-monitor/internal/poller"
)

// Build constructs a device and its runner from a validated, normalized config entry.
// Nothing is dialed here; the first poll opens the session.
func Build(dc config.DeviceConfig, o Options) (*poller.Device, *poller.Runner, error) {
	if o.Name == "" {
		o.Name = dc.ID
	}
	if o.Timeout == 0 {
		o.Timeout = time.Duration(dc.TimeoutMs) * time.Millisecond
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = time.Duration(dc.IdleTimeoutMs) * time.Millisecond
	}

	ep := endpoint(dc.Endpoint.Address, dc.Endpoint.Port)
	if dc.Endpoint.UnitID != nil {
		ep.UnitID = *dc.Endpoint.UnitID
	}

	var ms []poller.Measurement
	switch dc.Profile {
	case config.ProfileB100:
		ms = B100Measurements()
	case config.ProfileSEL:
		if dc.Registers == nil {
			return nil, nil, fmt.Errorf("profile: device %q: sel registers missing", dc.ID)
		}
		ms = SELMeasurements(selRegisters(dc.Registers))
	default:
		return nil, nil, fmt.Errorf("profile: device %q: unknown profile %q", dc.ID, dc.Profile)
	}

	d, err := newDevice(dc.Profile, ep, ms, o)
	if err != nil {
		return nil, nil, fmt.Errorf("profile: device %q: %w", dc.ID, err)
	}

	interval := time.Duration(dc.Poll.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Duration(config.DefaultIntervalMs) * time.Millisecond
	}

	return d, &poller.Runner{ID: dc.ID, Device: d, Interval: interval}, nil
}

func selRegisters(r *config.SELRegistersConfig) SELRegisters {
	addr := func(rc *config.RegisterConfig) uint16 {
		if rc == nil {
			return 0
		}
		return rc.Address
	}
	return SELRegisters{
		B100LTCTankTemp:      addr(r.B100LTCTankTemp),
		B100TopOilTemp:       addr(r.B100TopOilTemp),
		QualitrolTopOil:      addr(r.QualitrolTopOil),
		QualitrolLTCTank:     addr(r.QualitrolLTCTank),
		QualitrolTapPosition: addr(r.QualitrolTapPosition),
	}
}
