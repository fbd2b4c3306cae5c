package protocol

import "fmt"

// Envelope is a header + body pair exchanged with the modem link as a
// single opaque frame. There is no length field on the wire: fixed-type
// body lengths are derivable from the type, variable bodies run to the
// end of the frame.
type Envelope struct {
	Header Header
	Body   []byte
}

// EncodeFrame returns header+body as a single byte slice. Frames above
// MaxEnvelopeLen are rejected before transmission.
func (e *Envelope) EncodeFrame() ([]byte, error) {
	if HeaderLen+len(e.Body) > MaxEnvelopeLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrEnvelopeTooLarge, HeaderLen+len(e.Body), MaxEnvelopeLen)
	}
	hb, err := e.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, HeaderLen+len(e.Body))
	copy(out, hb)
	copy(out[HeaderLen:], e.Body)
	return out, nil
}

// DecodeFrame splits a received frame into header and body. The body
// slice aliases buf; callers that retain it must copy.
func (e *Envelope) DecodeFrame(buf []byte) error {
	if err := e.Header.UnmarshalBinary(buf); err != nil {
		return err
	}
	e.Body = buf[HeaderLen:]
	return nil
}
