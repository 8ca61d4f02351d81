// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// helper to build an SEL device quickly
func selDevice(id string) DeviceConfig {
	return DeviceConfig{
		ID:       id,
		Profile:  ProfileSEL,
		Endpoint: EndpointConfig{Address: "10.0.0.2"},
		Registers: &SELRegistersConfig{
			B100LTCTankTemp:      &RegisterConfig{Address: 100},
			B100TopOilTemp:       &RegisterConfig{Address: 102},
			QualitrolTopOil:      &RegisterConfig{Address: 200},
			QualitrolLTCTank:     &RegisterConfig{Address: 201},
			QualitrolTapPosition: &RegisterConfig{Address: 202},
		},
	}
}

func b100Device(id string) DeviceConfig {
	return DeviceConfig{ID: id, Profile: ProfileB100, Endpoint: EndpointConfig{Address: "10.0.0.1"}}
}

// ---- tests ----

func TestValidate_OK(t *testing.T) {
	cfg := &Config{Devices: []DeviceConfig{b100Device("a"), selDevice("b")}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no devices", func(c *Config) { c.Devices = nil }, "at least one device"},
		{"duplicate id", func(c *Config) { c.Devices = append(c.Devices, b100Device("a")) }, "duplicate"},
		{"missing id", func(c *Config) { c.Devices[0].ID = "" }, "id required"},
		{"missing address", func(c *Config) { c.Devices[0].Endpoint.Address = "" }, "endpoint.address"},
		{"bad port", func(c *Config) { c.Devices[0].Endpoint.Port = 70000 }, "out of range"},
		{"negative timeout", func(c *Config) { c.Devices[0].TimeoutMs = -1 }, "durations"},
		{"unknown profile", func(c *Config) { c.Devices[0].Profile = "qualitrol" }, "unknown profile"},
		{"b100 registers", func(c *Config) { c.Devices[0].Registers = selDevice("x").Registers }, "fixed"},
		{"sel no registers", func(c *Config) { c.Devices[1].Registers = nil }, "registers required"},
		{"sel missing tap", func(c *Config) { c.Devices[1].Registers.QualitrolTapPosition = nil }, "qualitrol_tap_position"},
		{"sel width mismatch", func(c *Config) { c.Devices[1].Registers.QualitrolTopOil.Width = "int32" }, "profile requires"},
		{"sel count mismatch", func(c *Config) { c.Devices[1].Registers.B100TopOilTemp.Count = 1 }, "count"},
		{"sel address overflow", func(c *Config) { c.Devices[1].Registers.B100TopOilTemp.Address = 0xFFFF }, "out of range"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "format"},
		{"mqtt broker", func(c *Config) { c.MQTT.Enabled = true }, "broker"},
		{"mqtt qos", func(c *Config) { c.MQTT = MQTTConfig{Enabled: true, Broker: "tcp://b:1883", QoS: 3} }, "qos"},
		{"metrics listen", func(c *Config) { c.Metrics.Enabled = true }, "listen"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := &Config{Devices: []DeviceConfig{b100Device("a"), selDevice("b")}}
			c.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", c.want)
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not contain %q", err, c.want)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{Devices: []DeviceConfig{b100Device("north")}}
	Normalize(cfg)

	d := cfg.Devices[0]
	if d.Endpoint.Port != 502 || d.Endpoint.UnitID == nil || *d.Endpoint.UnitID != 1 {
		t.Fatalf("endpoint defaults not applied: %+v", d.Endpoint)
	}
	if d.TimeoutMs != DefaultTimeoutMs || d.Poll.IntervalMs != DefaultIntervalMs {
		t.Fatalf("timing defaults not applied: %+v", d)
	}
	if d.Asset != "north" {
		t.Fatalf("asset default = %q", d.Asset)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.MQTT.TopicPrefix != "transformer" {
		t.Fatalf("topic prefix = %q", cfg.MQTT.TopicPrefix)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	unit := uint8(0)
	d := b100Device("x")
	d.Endpoint.Port = 1502
	d.Endpoint.UnitID = &unit
	d.TimeoutMs = 250
	cfg := &Config{Devices: []DeviceConfig{d}, MQTT: MQTTConfig{TopicPrefix: "site/a/"}}
	Normalize(cfg)

	got := cfg.Devices[0]
	if got.Endpoint.Port != 1502 || *got.Endpoint.UnitID != 0 || got.TimeoutMs != 250 {
		t.Fatalf("explicit values overwritten: %+v", got)
	}
	if cfg.MQTT.TopicPrefix != "site/a" {
		t.Fatalf("topic prefix = %q", cfg.MQTT.TopicPrefix)
	}
}

const sampleYAML = `
logging:
  level: debug
  format: console
devices:
  - id: b100-north
    profile: b100
    endpoint:
      address: 192.168.1.200
  - id: sel-yard
    profile: SEL
    endpoint:
      address: 192.168.1.210
      port: 502
      unit_id: 1
    timeout_ms: 2000
    poll:
      interval_ms: 30000
    registers:
      b100_ltc_tank_temp: 400
      b100_top_oil_temp: { address: 402, width: int32, count: 2 }
      qualitrol_top_oil: 500
      qualitrol_ltc_tank: 501
      qualitrol_tap_position: { address: 502, width: "16" }
`

func TestLoad_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	Normalize(cfg)

	if len(cfg.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(cfg.Devices))
	}
	sel := cfg.Devices[1]
	if sel.Profile != ProfileSEL || sel.Registers.B100LTCTankTemp.Address != 400 {
		t.Fatalf("sel device parsed wrong: %+v", sel)
	}
	if sel.Registers.B100TopOilTemp.Address != 402 || sel.Registers.B100TopOilTemp.Count != 2 {
		t.Fatalf("mapping register parsed wrong: %+v", sel.Registers.B100TopOilTemp)
	}
	if sel.Registers.QualitrolTapPosition.Width != "16" {
		t.Fatalf("width parsed wrong: %+v", sel.Registers.QualitrolTapPosition)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
