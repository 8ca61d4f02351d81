// internal/publish/sink.go
package publish

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tamzrod/transformer-monitor/internal/envelope"
)

// Sink delivers envelopes somewhere outside the process.
type Sink interface {
	Publish(ctx context.Context, e envelope.Envelope) error
	Close() error
}

// LogSink writes each envelope as one structured log event.
// Used when no broker is configured.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Publish(_ context.Context, e envelope.Envelope) error {
	s.Log.Info().
		Str("id", e.ID.String()).
		Str("device", e.Device).
		Str("asset", e.Asset).
		Str("health", e.Health).
		Time("at", e.Timestamp).
		Interface("readings", e.Readings).
		Msg("readings")
	return nil
}

func (LogSink) Close() error { return nil }
