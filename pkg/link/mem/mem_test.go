package mem

import (
	"bytes"
	"testing"
)

func TestPairDelivery(t *testing.T) {
	ea, eb := NewPair(1, 5)
	var got []byte
	var from uint8
	eb.Subscribe(func(frame []byte, src uint8) { got = frame; from = src })

	if err := ea.Publish([]byte("ping"), 5); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) || from != 1 {
		t.Fatalf("got %q from %d", got, from)
	}
}

func TestPublishWrongAddress(t *testing.T) {
	ea, _ := NewPair(1, 5)
	if err := ea.Publish([]byte("x"), 9); err == nil {
		t.Fatalf("expected error for unknown address")
	}
}

func TestPublishAfterClose(t *testing.T) {
	ea, eb := NewPair(1, 5)
	_ = ea.Close()
	if err := ea.Publish([]byte("x"), 5); err == nil {
		t.Fatalf("expected error after close")
	}
	// publishing toward the closed end drops the frame without error
	if err := eb.Publish([]byte("x"), 1); err != nil {
		t.Fatalf("publish to closed peer: %v", err)
	}
}
