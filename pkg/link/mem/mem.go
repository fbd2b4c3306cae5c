// Package mem is an in-process link pair. Useful for tests and as a
// stand-in for a modem loop.
package mem

import (
	"errors"
	"sync"

	"github.com/seatrix/modem-tools/pkg/link"
)

// End is one side of an in-process link pair.
type End struct {
	addr uint8
	peer *End

	mu      sync.Mutex
	handler link.Handler
	closed  bool
}

// NewPair returns two cross-connected ends with the given modem
// addresses. A frame published on one end is delivered to the other
// end's handler with the publisher's address as source.
func NewPair(a, b uint8) (*End, *End) {
	ea := &End{addr: a}
	eb := &End{addr: b}
	ea.peer, eb.peer = eb, ea
	return ea, eb
}

func (e *End) Kind() link.Kind { return link.KindMem }

// Publish delivers the frame to the peer end synchronously. The dst
// address is checked against the peer so misrouted frames surface in
// tests.
func (e *End) Publish(frame []byte, dst uint8) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return errors.New("mem: link closed")
	}
	if dst != e.peer.addr {
		return errors.New("mem: no such address")
	}
	e.peer.mu.Lock()
	h := e.peer.handler
	peerClosed := e.peer.closed
	e.peer.mu.Unlock()
	if peerClosed || h == nil {
		return nil // datagram semantics: nobody listening, frame is lost
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	h(buf, e.addr)
	return nil
}

func (e *End) Subscribe(h link.Handler) {
	e.mu.Lock()
	e.handler = h
	e.mu.Unlock()
}

func (e *End) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}
