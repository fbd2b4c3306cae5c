package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEnvelopeFrameRoundtrip(t *testing.T) {
	e := Envelope{
		Header: Header{Type: IDNav, MessageID: 42, SentAt: 1000.0},
		Body:   bytes.Repeat([]byte{0x5A}, NavBodyLen),
	}
	frame, err := e.EncodeFrame()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(frame) != HeaderLen+NavBodyLen {
		t.Fatalf("frame size = %d", len(frame))
	}
	var d Envelope
	if err := d.DecodeFrame(frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Header != e.Header || !bytes.Equal(d.Body, e.Body) {
		t.Fatalf("envelope mismatch")
	}
}

func TestEnvelopeTooLarge(t *testing.T) {
	e := Envelope{
		Header: Header{Type: IDStringImage},
		Body:   make([]byte, MaxEnvelopeLen),
	}
	if _, err := e.EncodeFrame(); !errors.Is(err, ErrEnvelopeTooLarge) {
		t.Fatalf("want ErrEnvelopeTooLarge, got %v", err)
	}
}

func TestDecodeFrameShort(t *testing.T) {
	var d Envelope
	if err := d.DecodeFrame(make([]byte, 5)); !errors.Is(err, ErrHeaderTooShort) {
		t.Fatalf("want ErrHeaderTooShort, got %v", err)
	}
}
