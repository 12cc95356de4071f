package ipc

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, FrameControl, []byte("hello")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	ft, payload, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if ft != FrameControl {
		t.Fatalf("expected FrameControl, got %v", ft)
	}
	if string(payload) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", payload)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	if _, _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected error for oversized frame length")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	ctx := NewErrorContext().Add("screen").Add("pty")
	raw, err := EncodeEnvelope(string(KindKey), KeyPayload{Raw: []byte("a")}, ctx)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Kind != string(KindKey) {
		t.Fatalf("expected kind %q, got %q", KindKey, env.Kind)
	}
	if got := env.ContextValue().String(); got != "screen -> pty" {
		t.Fatalf("expected context %q, got %q", "screen -> pty", got)
	}
	var payload KeyPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if string(payload.Raw) != "a" {
		t.Fatalf("expected raw %q, got %q", "a", payload.Raw)
	}
}
