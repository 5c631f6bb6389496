package protocol

import (
	"testing"
)

// TestEncodeDecodeRoundTrip tests that a payload survives the envelope
func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame, err := Encode(MsgJoin, Join{Nickname: "ana", RoomID: "AB23CD", Team: "red"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	env, err := DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.Type != MsgJoin {
		t.Errorf("Type should be %q, got %q", MsgJoin, env.Type)
	}

	j, err := DecodePayload[Join](env)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if j.Nickname != "ana" || j.RoomID != "AB23CD" || j.Team != "red" {
		t.Errorf("Payload mismatch: %+v", j)
	}
}

// TestEncodeEmptyType tests that a frame without a type is rejected
func TestEncodeEmptyType(t *testing.T) {
	if _, err := Encode("", Join{}); err == nil {
		t.Error("Encode should reject an empty message type")
	}
}

// TestDecodeEnvelopeErrors tests malformed frames
func TestDecodeEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty frame", nil},
		{"not json", []byte("not json")},
		{"missing type", []byte(`{"data":{}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEnvelope(tt.raw); err == nil {
				t.Error("DecodeEnvelope should fail")
			}
		})
	}
}

// TestDecodePayloadMismatch tests that a wrong-shape payload errors rather
// than silently zeroing
func TestDecodePayloadMismatch(t *testing.T) {
	env := Envelope{Type: MsgInput, Data: []byte(`"just a string"`)}
	if _, err := DecodePayload[Input](env); err == nil {
		t.Error("DecodePayload should reject a mismatched payload")
	}

	env = Envelope{Type: MsgInput}
	if _, err := DecodePayload[Input](env); err == nil {
		t.Error("DecodePayload should reject an empty payload")
	}
}
