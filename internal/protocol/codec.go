package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Envelope is the framing for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps a payload in an envelope and marshals the whole frame.
func Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, errors.New("encode: empty message type")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %q payload", msgType)
	}
	return json.Marshal(Envelope{Type: msgType, Data: data})
}

// DecodeEnvelope parses the outer frame without touching the payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if len(b) == 0 {
		return env, errors.New("decode: empty frame")
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return env, errors.Wrap(err, "decode envelope")
	}
	if env.Type == "" {
		return env, errors.New("decode: missing message type")
	}
	return env, nil
}

// DecodePayload unmarshals an envelope's payload into the given type.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, errors.Errorf("empty payload for %q", env.Type)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, errors.Wrapf(err, "decode %q payload", env.Type)
	}
	return out, nil
}
