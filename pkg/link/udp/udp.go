// Package udp carries one envelope frame per datagram. It emulates the
// acoustic channel on a bench network: each datagram is prefixed with a
// single source-address byte, and modem addresses map to UDP endpoints
// through a static table.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/seatrix/modem-tools/pkg/link"
)

// Options configures a UDP link.
type Options struct {
	// Listen is the local bind endpoint, e.g. ":7450".
	Listen string
	// LocalAddress is this node's modem address, sent as frame prefix.
	LocalAddress uint8
	// Peers maps modem addresses to remote endpoints.
	Peers map[uint8]string
}

// Link is a datagram link with a 1-byte address prefix per frame.
type Link struct {
	conn  *net.UDPConn
	local uint8
	peers map[uint8]*net.UDPAddr

	mu      sync.Mutex
	handler link.Handler
	closeCh chan struct{}
}

// New binds the local endpoint, resolves the peer table and starts the
// read loop.
func New(opts Options) (*Link, error) {
	laddr, err := net.ResolveUDPAddr("udp", opts.Listen)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	peers := make(map[uint8]*net.UDPAddr, len(opts.Peers))
	for addr, ep := range opts.Peers {
		ra, err := net.ResolveUDPAddr("udp", ep)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("resolve peer %d: %w", addr, err)
		}
		peers[addr] = ra
	}
	l := &Link{conn: conn, local: opts.LocalAddress, peers: peers, closeCh: make(chan struct{})}
	go l.readLoop()
	return l, nil
}

func (l *Link) Kind() link.Kind { return link.KindUDP }

// Addr returns the local bound address (useful with Listen ":0").
func (l *Link) Addr() net.Addr { return l.conn.LocalAddr() }

func (l *Link) Publish(frame []byte, dst uint8) error {
	ra, ok := l.peers[dst]
	if !ok {
		return fmt.Errorf("udp: no endpoint for address %d", dst)
	}
	buf := make([]byte, 1+len(frame))
	buf[0] = l.local
	copy(buf[1:], frame)
	_, err := l.conn.WriteToUDP(buf, ra)
	return err
}

func (l *Link) Subscribe(h link.Handler) {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()
}

func (l *Link) Close() error {
	select {
	case <-l.closeCh:
	default:
		close(l.closeCh)
	}
	return l.conn.Close()
}

func (l *Link) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.closeCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		if n < 1 {
			continue
		}
		l.mu.Lock()
		h := l.handler
		l.mu.Unlock()
		if h == nil {
			continue
		}
		frame := make([]byte, n-1)
		copy(frame, buf[1:n])
		h(frame, buf[0])
	}
}
