package models

import (
	"encoding/json"
	"time"
)

// CachedEnvelope the persisted wrapper for any cached payload.
// Timestamp (epoch millis) is the sole staleness signal and is set only on
// a successful hydration, never on a failed attempt.
type CachedEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// WrapEnvelope marshals a payload into an envelope stamped with the given time
func WrapEnvelope(payload interface{}, at time.Time) (CachedEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return CachedEnvelope{}, err
	}
	return CachedEnvelope{Data: data, Timestamp: at.UnixMilli()}, nil
}

// DecodeInto unmarshals the envelope payload into target
func (e CachedEnvelope) DecodeInto(target interface{}) error {
	return json.Unmarshal(e.Data, target)
}

// Time returns the hydration time carried by the envelope
func (e CachedEnvelope) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
