package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Message is a decoded application-level message. The implementation set
// is closed: one variant per fixed wire type plus the opaque general
// passthrough, so dispatch is exhaustive by construction.
type Message interface {
	wireID() uint8
}

// PoseTarget is a requested pose on 6 axes, float32 each.
type PoseTarget struct {
	X, Y, Z          float32
	Roll, Pitch, Yaw float32
}

// PositionRequest asks the pilot for an absolute pose.
type PositionRequest struct{ Pose PoseTarget }

// BodyRequest asks the pilot for a body-frame pose.
type BodyRequest struct{ Pose PoseTarget }

// NavFix is a navigation state report: global fix plus local pose.
type NavFix struct {
	Latitude, Longitude float64
	North, East, Depth  float32
	Roll, Pitch, Yaw    float32
}

// Blob is a raw byte payload (images, compressed strings).
type Blob []byte

// Ack confirms receipt of a specific message id.
type Ack struct{ MessageID uint16 }

// General is an opaque body bound to an external topic; this layer does
// not decode it.
type General struct {
	Type Type
	Raw  []byte
}

func (PositionRequest) wireID() uint8 { return IDPositionRequest }
func (BodyRequest) wireID() uint8     { return IDBodyRequest }
func (NavFix) wireID() uint8          { return IDNav }
func (Blob) wireID() uint8            { return IDStringImage }
func (Ack) wireID() uint8             { return IDAck }
func (g General) wireID() uint8       { return g.Type.ID }

func encodePose(p PoseTarget) []byte {
	buf := make([]byte, PoseBodyLen)
	for i, v := range [6]float32{p.X, p.Y, p.Z, p.Roll, p.Pitch, p.Yaw} {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodePose(body []byte) (PoseTarget, error) {
	if len(body) != PoseBodyLen {
		return PoseTarget{}, fmt.Errorf("%w: pose body is %d bytes, want %d", ErrBodyLengthMismatch, len(body), PoseBodyLen)
	}
	var f [6]float32
	for i := range f {
		f[i] = math.Float32frombits(binary.BigEndian.Uint32(body[i*4:]))
	}
	return PoseTarget{X: f[0], Y: f[1], Z: f[2], Roll: f[3], Pitch: f[4], Yaw: f[5]}, nil
}

func encodeNav(n NavFix) []byte {
	buf := make([]byte, NavBodyLen)
	binary.BigEndian.PutUint64(buf[0:], math.Float64bits(n.Latitude))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(n.Longitude))
	for i, v := range [6]float32{n.North, n.East, n.Depth, n.Roll, n.Pitch, n.Yaw} {
		binary.BigEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeNav(body []byte) (NavFix, error) {
	if len(body) != NavBodyLen {
		return NavFix{}, fmt.Errorf("%w: nav body is %d bytes, want %d", ErrBodyLengthMismatch, len(body), NavBodyLen)
	}
	var n NavFix
	n.Latitude = math.Float64frombits(binary.BigEndian.Uint64(body[0:]))
	n.Longitude = math.Float64frombits(binary.BigEndian.Uint64(body[8:]))
	var f [6]float32
	for i := range f {
		f[i] = math.Float32frombits(binary.BigEndian.Uint32(body[16+i*4:]))
	}
	n.North, n.East, n.Depth = f[0], f[1], f[2]
	n.Roll, n.Pitch, n.Yaw = f[3], f[4], f[5]
	return n, nil
}

func encodeAck(a Ack) []byte {
	buf := make([]byte, AckBodyLen)
	binary.BigEndian.PutUint16(buf, a.MessageID)
	return buf
}

func decodeAck(body []byte) (Ack, error) {
	if len(body) != AckBodyLen {
		return Ack{}, fmt.Errorf("%w: ack body is %d bytes, want %d", ErrBodyLengthMismatch, len(body), AckBodyLen)
	}
	return Ack{MessageID: binary.BigEndian.Uint16(body)}, nil
}

// EncodeBody serializes msg according to the layout of t. The message
// variant must match the resolved type.
func EncodeBody(t Type, msg Message) ([]byte, error) {
	if t.Kind == KindGeneral {
		g, ok := msg.(General)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a general body for type %q", ErrEncode, msg, t.Name)
		}
		return g.Raw, nil
	}
	switch t.ID {
	case IDPositionRequest:
		if m, ok := msg.(PositionRequest); ok {
			return encodePose(m.Pose), nil
		}
	case IDBodyRequest:
		if m, ok := msg.(BodyRequest); ok {
			return encodePose(m.Pose), nil
		}
	case IDNav:
		if m, ok := msg.(NavFix); ok {
			return encodeNav(m), nil
		}
	case IDStringImage:
		if m, ok := msg.(Blob); ok {
			return []byte(m), nil
		}
	case IDAck:
		if m, ok := msg.(Ack); ok {
			return encodeAck(m), nil
		}
	default:
		return nil, fmt.Errorf("%w: no fixed layout for type %q (id %d)", ErrEncode, t.Name, t.ID)
	}
	return nil, fmt.Errorf("%w: %T does not match type %q", ErrEncode, msg, t.Name)
}

// DecodeBody parses body according to the layout of t. General bodies
// are wrapped, not decoded.
func DecodeBody(t Type, body []byte) (Message, error) {
	if t.Kind == KindGeneral {
		raw := make([]byte, len(body))
		copy(raw, body)
		return General{Type: t, Raw: raw}, nil
	}
	switch t.ID {
	case IDPositionRequest:
		p, err := decodePose(body)
		if err != nil {
			return nil, err
		}
		return PositionRequest{Pose: p}, nil
	case IDBodyRequest:
		p, err := decodePose(body)
		if err != nil {
			return nil, err
		}
		return BodyRequest{Pose: p}, nil
	case IDNav:
		n, err := decodeNav(body)
		if err != nil {
			return nil, err
		}
		return n, nil
	case IDStringImage:
		b := make([]byte, len(body))
		copy(b, body)
		return Blob(b), nil
	case IDAck:
		a, err := decodeAck(body)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: no fixed layout for type %q (id %d)", ErrUnknownType, t.Name, t.ID)
	}
}
