// internal/envelope/envelope.go
package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/transformer-monitor/internal/poller"
	"github.com/tamzrod/transformer-monitor/internal/status"
)

// Envelope is one published poll: identity, health and ordered readings.
type Envelope struct {
	ID        uuid.UUID
	Device    string
	Asset     string
	Timestamp time.Time
	Health    string
	Readings  poller.ReadingSet
}

// New wraps a poll result for publication under asset.
func New(asset string, res poller.PollResult, snap status.Snapshot) Envelope {
	return Envelope{
		ID:        uuid.New(),
		Device:    res.DeviceID,
		Asset:     asset,
		Timestamp: res.At,
		Health:    status.HealthName(snap.Health),
		Readings:  res.Readings,
	}
}

type wire struct {
	ID        string            `json:"id"`
	Device    string            `json:"device"`
	Asset     string            `json:"asset"`
	Timestamp string            `json:"timestamp"`
	Health    string            `json:"health"`
	Readings  poller.ReadingSet `json:"readings"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{
		ID:        e.ID.String(),
		Device:    e.Device,
		Asset:     e.Asset,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		Health:    e.Health,
		Readings:  e.Readings,
	})
}

// Marshal returns the JSON payload.
func (e Envelope) Marshal() ([]byte, error) { return json.Marshal(e) }
