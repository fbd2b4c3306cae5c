// Package link defines the modem transport collaborator: delivery of
// opaque envelope frames between small integer modem addresses. The
// codec core depends only on this interface, not on any concrete
// transport.
package link

// Kind identifies the link implementation.
type Kind int

const (
	KindUnknown Kind = iota
	KindUDP
	KindTCP
	KindMem
)

func (k Kind) String() string {
	switch k {
	case KindUDP:
		return "udp"
	case KindTCP:
		return "tcp"
	case KindMem:
		return "mem"
	default:
		return "unknown"
	}
}

// Handler consumes one received frame and the source modem address.
// The link may invoke it concurrently from its read loop.
type Handler func(frame []byte, src uint8)

// Link publishes and receives opaque envelope frames. Publish is
// fire-and-forget from the caller's point of view; delivery guarantees
// are whatever the underlying channel provides.
type Link interface {
	Kind() Kind
	Publish(frame []byte, dst uint8) error
	Subscribe(h Handler)
	Close() error
}
