// Package tcp bridges to an acoustic modem exposed as a TCP serial
// server. Frames use a small framing header: destination and source
// address bytes followed by a u16 big-endian length.
package tcp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/seatrix/modem-tools/pkg/link"
	"github.com/seatrix/modem-tools/pkg/protocol"
)

// Options configures a TCP bridge link.
type Options struct {
	// Endpoint is the modem serial server, e.g. "192.168.0.147:9200".
	Endpoint string
	// LocalAddress is this node's modem address.
	LocalAddress uint8
}

// Link is a stream link with framed envelopes.
type Link struct {
	local uint8
	c     net.Conn
	br    *bufio.Reader

	wmu     sync.Mutex
	bw      *bufio.Writer
	hmu     sync.Mutex
	handler link.Handler
	closeCh chan struct{}
}

// Dial connects to the serial server and starts the read loop.
func Dial(opts Options) (*Link, error) {
	c, err := net.Dial("tcp", opts.Endpoint)
	if err != nil {
		return nil, err
	}
	l := &Link{
		local:   opts.LocalAddress,
		c:       c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
		closeCh: make(chan struct{}),
	}
	go l.readLoop()
	return l, nil
}

func (l *Link) Kind() link.Kind { return link.KindTCP }

// Publish writes one framed envelope: [dst][src][len u16 BE][frame].
func (l *Link) Publish(frame []byte, dst uint8) error {
	if len(frame) > protocol.MaxEnvelopeLen {
		return fmt.Errorf("tcp: frame of %d bytes exceeds limit %d", len(frame), protocol.MaxEnvelopeLen)
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	var hdr [4]byte
	hdr[0] = dst
	hdr[1] = l.local
	binary.BigEndian.PutUint16(hdr[2:], uint16(len(frame)))
	if _, err := l.bw.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := l.bw.Write(frame); err != nil {
		return err
	}
	return l.bw.Flush()
}

func (l *Link) Subscribe(h link.Handler) {
	l.hmu.Lock()
	l.handler = h
	l.hmu.Unlock()
}

func (l *Link) Close() error {
	select {
	case <-l.closeCh:
	default:
		close(l.closeCh)
	}
	return l.c.Close()
}

func (l *Link) readLoop() {
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(l.br, hdr[:]); err != nil {
			return
		}
		n := int(binary.BigEndian.Uint16(hdr[2:]))
		if n > protocol.MaxEnvelopeLen {
			// resync is not possible on a corrupt stream; drop the link
			_ = l.Close()
			return
		}
		frame := make([]byte, n)
		if _, err := io.ReadFull(l.br, frame); err != nil {
			return
		}
		src := hdr[1]
		l.hmu.Lock()
		h := l.handler
		l.hmu.Unlock()
		if h != nil {
			h(frame, src)
		}
	}
}
