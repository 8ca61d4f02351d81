// internal/config/normalize.go
package config

import "strings"

const (
	DefaultPort             = 502
	DefaultUnitID     uint8 = 1
	DefaultTimeoutMs        = 5000
	DefaultIntervalMs       = 10000
	DefaultTopicPrefix      = "transformer"
	DefaultPublishMs        = 5000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	cfg.MQTT.TopicPrefix = strings.TrimSuffix(cfg.MQTT.TopicPrefix, "/")
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "transformer-monitor"
	}
	if cfg.MQTT.PublishTimeoutMs == 0 {
		cfg.MQTT.PublishTimeoutMs = DefaultPublishMs
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]

		d.Profile = strings.ToLower(d.Profile)
		if d.Asset == "" {
			d.Asset = d.ID
		}
		if d.Endpoint.Port == 0 {
			d.Endpoint.Port = DefaultPort
		}
		if d.Endpoint.UnitID == nil {
			unit := DefaultUnitID
			d.Endpoint.UnitID = &unit
		}
		// The transport timeout is always explicit.
		if d.TimeoutMs == 0 {
			d.TimeoutMs = DefaultTimeoutMs
		}
		if d.Poll.IntervalMs == 0 {
			d.Poll.IntervalMs = DefaultIntervalMs
		}
	}
}
