// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/decode"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	if cfg.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level)); err != nil {
			return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
		}
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Logging.Format)
	}

	// ------------------------------------------------------------
	// OUTPUTS
	// ------------------------------------------------------------

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics: listen address required when enabled")
	}
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt: broker required when enabled")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt: qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS)
		}
		if cfg.MQTT.PublishTimeoutMs < 0 {
			return fmt.Errorf("mqtt: publish_timeout_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// DEVICES
	// ------------------------------------------------------------

	if len(cfg.Devices) == 0 {
		return fmt.Errorf("config: at least one device required")
	}

	seen := make(map[string]struct{})
	for _, d := range cfg.Devices {
		if d.ID == "" {
			return fmt.Errorf("device: id required")
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("device %q: duplicate id", d.ID)
		}
		seen[d.ID] = struct{}{}

		if d.Endpoint.Address == "" {
			return fmt.Errorf("device %q: endpoint.address required", d.ID)
		}
		if d.Endpoint.Port < 0 || d.Endpoint.Port > 65535 {
			return fmt.Errorf("device %q: endpoint.port %d out of range", d.ID, d.Endpoint.Port)
		}
		if d.TimeoutMs < 0 || d.IdleTimeoutMs < 0 || d.Poll.IntervalMs < 0 {
			return fmt.Errorf("device %q: durations must be >= 0", d.ID)
		}

		switch strings.ToLower(d.Profile) {
		case ProfileB100:
			if d.Registers != nil {
				return fmt.Errorf("device %q: registers are fixed for profile b100", d.ID)
			}
		case ProfileSEL:
			if err := validateSEL(d); err != nil {
				return err
			}
		default:
			return fmt.Errorf("device %q: unknown profile %q", d.ID, d.Profile)
		}
	}

	return nil
}

func validateSEL(d DeviceConfig) error {
	if d.Registers == nil {
		return fmt.Errorf("device %q: registers required for profile sel", d.ID)
	}

	regs := []struct {
		name  string
		reg   *RegisterConfig
		width decode.Width
	}{
		{"b100_ltc_tank_temp", d.Registers.B100LTCTankTemp, decode.Width32},
		{"b100_top_oil_temp", d.Registers.B100TopOilTemp, decode.Width32},
		{"qualitrol_top_oil", d.Registers.QualitrolTopOil, decode.Width16},
		{"qualitrol_ltc_tank", d.Registers.QualitrolLTCTank, decode.Width16},
		{"qualitrol_tap_position", d.Registers.QualitrolTapPosition, decode.Width16},
	}

	for _, r := range regs {
		if r.reg == nil {
			return fmt.Errorf("device %q: registers.%s required", d.ID, r.name)
		}
		if r.reg.Width != "" {
			w, err := decode.ParseWidth(r.reg.Width)
			if err != nil {
				return fmt.Errorf("device %q: registers.%s: %w", d.ID, r.name, err)
			}
			if w != r.width {
				return fmt.Errorf("device %q: registers.%s: width %s, profile requires %s", d.ID, r.name, w, r.width)
			}
		}
		if r.reg.Count != 0 && r.reg.Count != r.width.Registers() {
			return fmt.Errorf("device %q: registers.%s: count %d does not match %s", d.ID, r.name, r.reg.Count, r.width)
		}
		if int(r.reg.Address)+int(r.width.Registers()) > 0x10000 {
			return fmt.Errorf("device %q: registers.%s: address %d out of range", d.ID, r.name, r.reg.Address)
		}
	}
	return nil
}
