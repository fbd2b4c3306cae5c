package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func mustType(t *testing.T, reg *Registry, name string) Type {
	t.Helper()
	ty, err := reg.ByName(name)
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}
	return ty
}

func TestPoseRoundtrip(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypePositionRequest)
	in := PositionRequest{Pose: PoseTarget{X: 1.0, Y: 2.0, Z: 3.0, Roll: 0, Pitch: 0, Yaw: 1.5708}}
	b, err := EncodeBody(ty, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != PoseBodyLen {
		t.Fatalf("body size = %d, want %d", len(b), PoseBodyLen)
	}
	out, err := DecodeBody(ty, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.(PositionRequest) != in {
		t.Fatalf("pose mismatch: %#v vs %#v", out, in)
	}
}

func TestNavRoundtrip(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypeNav)
	in := NavFix{
		Latitude: 55.0, Longitude: -3.0,
		North: 10.0, East: 20.0, Depth: 5.0,
		Roll: 0.01, Pitch: 0.02, Yaw: 1.57,
	}
	b, err := EncodeBody(ty, in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != NavBodyLen {
		t.Fatalf("body size = %d, want %d", len(b), NavBodyLen)
	}
	out, err := DecodeBody(ty, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.(NavFix) != in {
		t.Fatalf("nav mismatch: %#v vs %#v", out, in)
	}
}

func TestAckRoundtrip(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypeAck)
	b, err := EncodeBody(ty, Ack{MessageID: 65535})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeBody(ty, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.(Ack).MessageID != 65535 {
		t.Fatalf("ack id mismatch: %#v", out)
	}
}

func TestBlobPassthrough(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypeStringImage)
	payload := bytes.Repeat([]byte{0xAB}, 512)
	b, err := EncodeBody(ty, Blob(payload))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeBody(ty, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal([]byte(out.(Blob)), payload) {
		t.Fatalf("blob mismatch")
	}
}

func TestBodyLengthMismatch(t *testing.T) {
	reg := NewRegistry()
	for _, tc := range []struct {
		name string
		body []byte
	}{
		{TypePositionRequest, make([]byte, 23)},
		{TypeBodyRequest, make([]byte, 25)},
		{TypeNav, make([]byte, 10)},
		{TypeAck, make([]byte, 3)},
	} {
		ty := mustType(t, reg, tc.name)
		if _, err := DecodeBody(ty, tc.body); !errors.Is(err, ErrBodyLengthMismatch) {
			t.Fatalf("%s: want ErrBodyLengthMismatch, got %v", tc.name, err)
		}
	}
}

func TestEncodeVariantMismatch(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypeNav)
	if _, err := EncodeBody(ty, Ack{MessageID: 1}); !errors.Is(err, ErrEncode) {
		t.Fatalf("want ErrEncode, got %v", err)
	}
}

func TestGeneralPassthrough(t *testing.T) {
	reg := NewRegistry()
	ty := mustType(t, reg, TypeRosMessage)
	payload := []byte("opaque")
	b, err := EncodeBody(ty, General{Type: ty, Raw: payload})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeBody(ty, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	g := out.(General)
	if !bytes.Equal(g.Raw, payload) || g.Type.ID != IDRosMessage {
		t.Fatalf("general mismatch: %#v", g)
	}
}
