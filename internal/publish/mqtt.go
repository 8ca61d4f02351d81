// internal/publish/mqtt.go
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/config"
	"github.com/tamzrod/transformer-monitor/internal/envelope"
)

var ErrPublishTimeout = errors.New("publish: timed out waiting for broker")

// publisher is the part of paho.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes envelopes to <prefix>/<asset>.
type MQTTSink struct {
	client   publisher
	prefix   string
	qos      byte
	retained bool
	timeout  time.Duration
	log      zerolog.Logger
}

// NewMQTTSink connects to the configured broker.
// The client reconnects on its own; a broker that is down at start is logged, not fatal.
func NewMQTTSink(cfg config.MQTTConfig, log zerolog.Logger) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker required")
	}
	log = log.With().Str("broker", cfg.Broker).Logger()

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(paho.Client) {
		log.Info().Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Error().Err(err).Msg("mqtt connection lost")
	})

	timeout := time.Duration(cfg.PublishTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultPublishMs) * time.Millisecond
	}

	client := paho.NewClient(opts)
	tok := client.Connect()
	if tok.WaitTimeout(timeout) && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, tok.Error())
	}
	if !client.IsConnected() {
		log.Warn().Msg("mqtt broker not reachable yet, retrying in background")
	}

	return newMQTTSink(client, cfg, timeout, log), nil
}

func newMQTTSink(c publisher, cfg config.MQTTConfig, timeout time.Duration, log zerolog.Logger) *MQTTSink {
	return &MQTTSink{
		client:   c,
		prefix:   cfg.TopicPrefix,
		qos:      cfg.QoS,
		retained: cfg.Retained,
		timeout:  timeout,
		log:      log,
	}
}

// Topic returns the topic an asset publishes to.
func (s *MQTTSink) Topic(asset string) string {
	if s.prefix == "" {
		return asset
	}
	return s.prefix + "/" + asset
}

func (s *MQTTSink) Publish(ctx context.Context, e envelope.Envelope) error {
	payload, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("publish: encode: %w", err)
	}

	topic := s.Topic(e.Asset)
	tok := s.client.Publish(topic, s.qos, s.retained, payload)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		s.log.Debug().Str("topic", topic).Int("bytes", len(payload)).Msg("published")
		return nil
	case <-timer.C:
		return fmt.Errorf("publish %s: %w", topic, ErrPublishTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
