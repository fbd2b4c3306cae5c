// Package protocol implements the acoustic envelope codec: the fixed
// wire header, the per-type binary body layouts and the bidirectional
// message type registry.
package protocol

// Fixed message type names. These mirror the historical modem deployment
// and must not change without coordinating both ends of the link.
const (
	TypePositionRequest = "position_request"
	TypeBodyRequest     = "body_request"
	TypeNav             = "nav"
	TypeStringImage     = "string_image"
	TypeAck             = "ack"
	TypeRosMessage      = "ros_message"
	TypeRosService      = "ros_service"
)

// Compact wire identifiers (1-255) for the fixed types.
const (
	IDPositionRequest uint8 = 1
	IDBodyRequest     uint8 = 2
	IDNav             uint8 = 5
	IDStringImage     uint8 = 10
	IDAck             uint8 = 32
	IDRosMessage      uint8 = 100
	IDRosService      uint8 = 101
)

// MaxEnvelopeLen bounds the total frame (header + body) accepted for
// transmission. Acoustic burst messages above this are rejected before
// they reach the modem.
const MaxEnvelopeLen = 9000

// Fixed body lengths in bytes. Variable-length types use BodyLenVariable.
const (
	PoseBodyLen     = 24 // 6 x float32
	NavBodyLen      = 40 // 2 x float64 + 6 x float32
	AckBodyLen      = 2  // uint16 message id
	BodyLenVariable = -1
)

// Kind separates fixed types (decoded by this layer) from general types
// (opaque passthrough bound to an external topic).
type Kind uint8

const (
	KindFixed Kind = iota
	KindGeneral
)

func (k Kind) String() string {
	if k == KindGeneral {
		return "general"
	}
	return "fixed"
}
