// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ProfileB100 = "b100"
	ProfileSEL  = "sel"
)

type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Devices []DeviceConfig `yaml:"devices"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// ---- METRICS ----

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Broker           string `yaml:"broker"` // tcp://host:1883
	ClientID         string `yaml:"client_id"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	TopicPrefix      string `yaml:"topic_prefix"`
	QoS              byte   `yaml:"qos"`
	Retained         bool   `yaml:"retained"`
	PublishTimeoutMs int    `yaml:"publish_timeout_ms"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID            string         `yaml:"id"`
	Profile       string         `yaml:"profile"`
	Asset         string         `yaml:"asset"`
	Endpoint      EndpointConfig `yaml:"endpoint"`
	TimeoutMs     int            `yaml:"timeout_ms"`
	IdleTimeoutMs int            `yaml:"idle_timeout_ms"`
	Poll          PollConfig     `yaml:"poll"`

	// SEL only
	Registers *SELRegistersConfig `yaml:"registers"`
}

type EndpointConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	UnitID  *uint8 `yaml:"unit_id"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// SELRegistersConfig holds the gateway-specific addresses.
type SELRegistersConfig struct {
	B100LTCTankTemp      *RegisterConfig `yaml:"b100_ltc_tank_temp"`
	B100TopOilTemp       *RegisterConfig `yaml:"b100_top_oil_temp"`
	QualitrolTopOil      *RegisterConfig `yaml:"qualitrol_top_oil"`
	QualitrolLTCTank     *RegisterConfig `yaml:"qualitrol_ltc_tank"`
	QualitrolTapPosition *RegisterConfig `yaml:"qualitrol_tap_position"`
}

// RegisterConfig accepts either a bare address or a mapping.
// Width and count are optional cross-checks against the fixed profile.
type RegisterConfig struct {
	Address uint16 `yaml:"address"`
	Width   string `yaml:"width"`
	Count   uint16 `yaml:"count"`
}

func (r *RegisterConfig) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&r.Address)
	}
	type plain RegisterConfig
	return n.Decode((*plain)(r))
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &cfg, nil
}
