package codec

import (
	"bytes"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestJSONRoundtrip(t *testing.T) {
	reg := NewRegistry()
	c := reg.Get("application/json")
	if c == nil {
		t.Fatalf("json codec not registered")
	}
	in := map[string]any{"x": 1.0, "y": "z"}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["y"] != "z" {
		t.Fatalf("value mismatch: %v", out)
	}
}

func TestCBORRoundtrip(t *testing.T) {
	c, err := CBOR()
	if err != nil {
		t.Fatalf("cbor: %v", err)
	}
	buf := bytes.Repeat([]byte{0xAA}, 16)
	in := map[string][]byte{"buf": buf}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string][]byte
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(out["buf"], buf) {
		t.Fatalf("value mismatch")
	}
}

func TestProtoRoundtrip(t *testing.T) {
	c := Proto()
	s, err := structpb.NewStruct(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	b, err := c.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out structpb.Struct
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Fields["k"].GetStringValue() != "v" {
		t.Fatalf("value mismatch")
	}
}

func TestProtoRejectsNonMessage(t *testing.T) {
	c := Proto()
	if _, err := c.Marshal(42); err == nil {
		t.Fatalf("expected error for non-proto value")
	}
}
