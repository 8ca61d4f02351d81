// internal/profile/profile.go
package profile

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/decode"
	"github.com/tamzrod/transformer-monitor/internal/poller"
	pmodbus "github.com/tamzrod/transformer-monitor/internal/poller/modbus"
)

// Fixed device constants.
const (
	UnitID = 1

	B100Scaling      = 1000
	QualitrolScaling = 10

	B100LTCTankTempRegister = 216
	B100TopOilTempRegister  = 268
)

// SELRegisters are the per-deployment gateway register addresses.
type SELRegisters struct {
	B100LTCTankTemp      uint16
	B100TopOilTemp       uint16
	QualitrolTopOil      uint16
	QualitrolLTCTank     uint16
	QualitrolTapPosition uint16
}

// Options tune transport and observability. Zero values are usable.
type Options struct {
	Name        string // device name in logs and metrics; defaults to the profile name
	Timeout     time.Duration
	IdleTimeout time.Duration
	Logger      zerolog.Logger
	Recorder    poller.Recorder
	Dialer      poller.Dialer // overrides the goburrow transport
}

func b100Value(key, label string, addr uint16) poller.Measurement {
	return poller.Measurement{
		Key:   key,
		Label: label,
		Spec:  decode.RegisterSpec{Address: addr, Width: decode.Width32, Scaling: B100Scaling},
	}
}

func qualitrolValue(key, label string, addr uint16) poller.Measurement {
	return poller.Measurement{
		Key:   key,
		Label: label,
		Spec:  decode.RegisterSpec{Address: addr, Width: decode.Width16, Scaling: QualitrolScaling},
	}
}

// B100Measurements is the direct B100 register map.
func B100Measurements() []poller.Measurement {
	return []poller.Measurement{
		b100Value("ltc_tank_temp", "LTC Tank Temp", B100LTCTankTempRegister),
		b100Value("top_oil_temp", "Top Oil Temp", B100TopOilTempRegister),
	}
}

// SELMeasurements maps the B100 and Qualitrol values exposed by an SEL-RTAC.
func SELMeasurements(r SELRegisters) []poller.Measurement {
	tap := qualitrolValue("Qualitrol.tap_change_position", "Qualitrol Tap changer position", r.QualitrolTapPosition)
	tap.Post = poller.Round

	return []poller.Measurement{
		b100Value("B100.ltc_tank_temp", "B100 LTC Tank Temp", r.B100LTCTankTemp),
		b100Value("B100.top_oil_temp", "B100 Top Oil Temp", r.B100TopOilTemp),
		qualitrolValue("Qualitrol.ltc_tank_temp", "Qualitrol LTC Tank Temp", r.QualitrolLTCTank),
		qualitrolValue("Qualitrol.top_oil_temp", "Qualitrol Top oil Tank Temp", r.QualitrolTopOil),
		tap,
	}
}

func endpoint(address string, port int) poller.Endpoint {
	return poller.Endpoint{Address: address, Port: port, UnitID: UnitID}
}

func newDevice(name string, ep poller.Endpoint, ms []poller.Measurement, o Options) (*poller.Device, error) {
	if o.Name != "" {
		name = o.Name
	}
	dial := o.Dialer
	if dial == nil {
		dial = pmodbus.Dialer(o.Timeout, o.IdleTimeout)
	}
	return poller.New(poller.Config{
		Name:         name,
		Endpoint:     ep,
		Measurements: ms,
		Dialer:       dial,
		Logger:       o.Logger,
		Recorder:     o.Recorder,
	})
}

// NewB100 builds a device polling a B100 directly.
func NewB100(address string, port int, o Options) (*poller.Device, error) {
	return newDevice("B100", endpoint(address, port), B100Measurements(), o)
}

// NewSEL builds a device polling an SEL-RTAC gateway.
func NewSEL(address string, port int, regs SELRegisters, o Options) (*poller.Device, error) {
	return newDevice("SEL", endpoint(address, port), SELMeasurements(regs), o)
}

// PollB100 returns ltc_tank_temp and top_oil_temp.
func PollB100(d *poller.Device) poller.ReadingSet { return d.Poll() }

// PollSEL returns the five gateway readings.
func PollSEL(d *poller.Device) poller.ReadingSet { return d.Poll() }

// Shutdown closes the device session and returns its confirmation.
func Shutdown(d *poller.Device) (string, error) { return d.Shutdown() }
