package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Fixed header layout (11 bytes) prepended to every envelope.
// All multi-byte fields are big-endian for cross-implementation
// compatibility with the historical deployments.
//
//	0        Type      u8   compact message type id
//	1  ..2   MessageID u16  outgoing sequence number (wraps)
//	3  ..10  SentAt    f64  transmitter clock, seconds
const HeaderLen = 11

// Header describes metadata for an envelope.
type Header struct {
	Type      uint8
	MessageID uint16
	SentAt    float64
}

// MarshalBinary encodes the header to an 11-byte buffer.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderLen)
	buf[0] = h.Type
	binary.BigEndian.PutUint16(buf[1:3], h.MessageID)
	binary.BigEndian.PutUint64(buf[3:11], math.Float64bits(h.SentAt))
	return buf, nil
}

// UnmarshalBinary decodes the header from buf.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderLen {
		return fmt.Errorf("%w: got %d bytes, need %d", ErrHeaderTooShort, len(buf), HeaderLen)
	}
	h.Type = buf[0]
	h.MessageID = binary.BigEndian.Uint16(buf[1:3])
	h.SentAt = math.Float64frombits(binary.BigEndian.Uint64(buf[3:11]))
	return nil
}
