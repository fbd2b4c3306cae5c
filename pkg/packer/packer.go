// Package packer assembles outgoing envelopes from typed application
// messages and reconstructs application messages from received
// envelopes: the packer/parser pair of the modem protocol translation
// layer.
package packer

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seatrix/modem-tools/pkg/config"
	"github.com/seatrix/modem-tools/pkg/link"
	"github.com/seatrix/modem-tools/pkg/observability"
	"github.com/seatrix/modem-tools/pkg/protocol"
	"github.com/seatrix/modem-tools/pkg/protocol/codec"
	"github.com/seatrix/modem-tools/pkg/stats"
)

// Consumers are the decoded-message sinks, one per fixed type plus a
// topic-keyed map for general bindings. Nil sinks drop silently.
type Consumers struct {
	Nav          func(protocol.NavFix)
	Position     func(protocol.PoseTarget)
	Body         func(protocol.PoseTarget)
	Blob         func([]byte)
	AckDelivered func(messageID uint16)
	General      map[string]func(payload []byte)
}

// Options tunes a Packer. Zero values fall back to the protocol
// defaults.
type Options struct {
	// TargetAddress is the modem address outgoing envelopes go to.
	TargetAddress uint8
	// MaxEnvelopeLen caps header+body length; defaults to
	// protocol.MaxEnvelopeLen and may only be lowered.
	MaxEnvelopeLen int
	// RequiringAck lists type names whose receipt triggers an ack.
	RequiringAck []string
	// Telemetry receives one receipt record per accepted envelope.
	Telemetry observability.TelemetrySink
	// Stats, when set, aggregates per-address link counters.
	Stats *stats.Store
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time

	Logger *zap.Logger
}

// Packer owns the outgoing and incoming pipelines and the two sequence
// counters. The registry and ack set are read-only after construction;
// the counters are atomic, so the link may invoke Receive concurrently.
type Packer struct {
	reg    *protocol.Registry
	codecs *codec.Registry
	lk     link.Link
	sink   Consumers
	tele   observability.TelemetrySink
	stats  *stats.Store
	log    *zap.Logger

	target       uint8
	maxLen       int
	requiringAck map[string]struct{}
	now          func() time.Time

	msgOut atomic.Uint64 // assigns message ids, wraps at 16 bits on the wire
	msgIn  atomic.Uint64 // telemetry only
}

// New builds a Packer over the given registry, link and sinks.
func New(reg *protocol.Registry, lk link.Link, sink Consumers, opts Options) *Packer {
	p := &Packer{
		reg:          reg,
		codecs:       codec.NewRegistry(),
		lk:           lk,
		sink:         sink,
		tele:         opts.Telemetry,
		stats:        opts.Stats,
		log:          opts.Logger,
		target:       opts.TargetAddress,
		maxLen:       protocol.MaxEnvelopeLen,
		requiringAck: make(map[string]struct{}, len(opts.RequiringAck)),
		now:          opts.Clock,
	}
	if opts.MaxEnvelopeLen > 0 && opts.MaxEnvelopeLen < protocol.MaxEnvelopeLen {
		p.maxLen = opts.MaxEnvelopeLen
	}
	for _, name := range opts.RequiringAck {
		p.requiringAck[name] = struct{}{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = zap.L()
	}
	if p.tele == nil {
		p.tele = observability.LogSink{L: p.log}
	}
	if c, err := codec.CBOR(); err == nil {
		p.codecs.Register(c)
	}
	return p
}

// RegisterGeneralBindings adds the configuration-supplied general types
// to reg. Collisions with the fixed set are fatal at startup.
func RegisterGeneralBindings(reg *protocol.Registry, bindings []config.GeneralBinding) error {
	for _, gm := range bindings {
		t := protocol.Type{
			Name:        gm.Name,
			ID:          gm.ID,
			Kind:        protocol.KindGeneral,
			BodyLen:     protocol.BodyLenVariable,
			Topic:       gm.Topic,
			ContentType: gm.ContentType,
		}
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Attach subscribes the incoming pipeline to the link.
func (p *Packer) Attach() { p.lk.Subscribe(p.Receive) }

// SentCount reports the number of successfully assembled envelopes.
func (p *Packer) SentCount() uint64 { return p.msgOut.Load() }

// ReceivedCount reports the number of accepted incoming envelopes.
func (p *Packer) ReceivedCount() uint64 { return p.msgIn.Load() }

func secs(t time.Time) float64 { return float64(t.UnixNano()) / 1e9 }

// Send assembles and publishes one envelope of the named type. It
// returns the assigned message id. The outgoing counter is advanced
// only after the body has been encoded and admitted, so failed sends
// never consume an id.
func (p *Packer) Send(name string, msg protocol.Message) (uint16, error) {
	t, err := p.reg.ByName(name)
	if err != nil {
		return 0, err
	}
	body, err := protocol.EncodeBody(t, msg)
	if err != nil {
		return 0, fmt.Errorf("type %q: %w", name, err)
	}
	if protocol.HeaderLen+len(body) > p.maxLen {
		return 0, fmt.Errorf("%w: type %q, %d bytes, limit %d",
			protocol.ErrEnvelopeTooLarge, name, protocol.HeaderLen+len(body), p.maxLen)
	}
	id := uint16(p.msgOut.Add(1) - 1)
	env := protocol.Envelope{
		Header: protocol.Header{Type: t.ID, MessageID: id, SentAt: secs(p.now())},
		Body:   body,
	}
	frame, err := env.EncodeFrame()
	if err != nil {
		return 0, err
	}
	if err := p.lk.Publish(frame, p.target); err != nil {
		return id, fmt.Errorf("publish type %q id %d: %w", name, id, err)
	}
	if p.stats != nil {
		p.stats.RecordOut(p.target, len(frame))
	}
	p.log.Info("sending message",
		zap.String("type", name), zap.Uint16("msg_id", id), zap.Uint8("to", p.target))
	return id, nil
}

// SendNav publishes a navigation state report.
func (p *Packer) SendNav(n protocol.NavFix) (uint16, error) {
	return p.Send(protocol.TypeNav, n)
}

// SendPositionRequest publishes an absolute pose request.
func (p *Packer) SendPositionRequest(pose protocol.PoseTarget) (uint16, error) {
	return p.Send(protocol.TypePositionRequest, protocol.PositionRequest{Pose: pose})
}

// SendBodyRequest publishes a body-frame pose request.
func (p *Packer) SendBodyRequest(pose protocol.PoseTarget) (uint16, error) {
	return p.Send(protocol.TypeBodyRequest, protocol.BodyRequest{Pose: pose})
}

// SendBlob publishes a raw byte payload (string_image).
func (p *Packer) SendBlob(b []byte) (uint16, error) {
	return p.Send(protocol.TypeStringImage, protocol.Blob(b))
}

// SendGeneral publishes an already-serialized payload under a general
// type. The body passes through opaquely.
func (p *Packer) SendGeneral(name string, payload []byte) (uint16, error) {
	t, err := p.reg.ByName(name)
	if err != nil {
		return 0, err
	}
	if t.Kind != protocol.KindGeneral {
		return 0, fmt.Errorf("%w: type %q is not a general type", protocol.ErrEncode, name)
	}
	return p.Send(name, protocol.General{Type: t, Raw: payload})
}

// SendGeneralValue marshals v through the codec bound to the general
// type's content type (JSON when unset) and publishes it.
func (p *Packer) SendGeneralValue(name string, v any) (uint16, error) {
	t, err := p.reg.ByName(name)
	if err != nil {
		return 0, err
	}
	if t.Kind != protocol.KindGeneral {
		return 0, fmt.Errorf("%w: type %q is not a general type", protocol.ErrEncode, name)
	}
	ct := t.ContentType
	if ct == "" {
		ct = "application/json"
	}
	c := p.codecs.Get(ct)
	if c == nil {
		return 0, fmt.Errorf("%w: no codec for content type %q", protocol.ErrEncode, ct)
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("%w: marshal %q payload: %v", protocol.ErrEncode, name, err)
	}
	return p.Send(name, protocol.General{Type: t, Raw: payload})
}

// sendAck is the degenerate send used by the incoming pipeline only.
func (p *Packer) sendAck(messageID uint16) (uint16, error) {
	return p.Send(protocol.TypeAck, protocol.Ack{MessageID: messageID})
}

// Receive processes one raw envelope from the link. All failures are
// per-envelope: the frame is dropped, reported, and the pipeline keeps
// going.
func (p *Packer) Receive(raw []byte, src uint8) {
	var env protocol.Envelope
	if err := env.DecodeFrame(raw); err != nil {
		p.log.Warn("dropping envelope with short header",
			zap.Int("length", len(raw)), zap.Uint8("from", src), zap.Error(err))
		return
	}
	h := env.Header
	t, err := p.reg.ByID(h.Type)
	if err != nil {
		// foreign or corrupt envelope; the incoming counter stays put
		p.log.Warn("dropping envelope of unknown type",
			zap.Uint8("type_id", h.Type), zap.Uint16("msg_id", h.MessageID),
			zap.Int("length", len(raw)), zap.Uint8("from", src))
		return
	}

	now := p.now()
	receivedAt := secs(now)
	transit := receivedAt - h.SentAt
	speed, defined := throughput(len(raw), transit)
	n := p.msgIn.Add(1)
	p.tele.ReportReceipt(observability.Receipt{
		Source:         src,
		TypeName:       t.Name,
		MessageID:      h.MessageID,
		SentAt:         h.SentAt,
		ReceivedAt:     receivedAt,
		Length:         len(raw),
		TransitSeconds: transit,
		ThroughputBps:  speed,
		ThroughputOK:   defined,
		ReceiveCount:   n,
	})
	if p.stats != nil {
		p.stats.RecordIn(src, len(raw), transit, speed, now)
	}

	msg, err := protocol.DecodeBody(t, env.Body)
	if err != nil {
		p.log.Warn("dropping envelope with malformed body",
			zap.String("type", t.Name), zap.Uint16("msg_id", h.MessageID),
			zap.Int("body_length", len(env.Body)), zap.Uint8("from", src), zap.Error(err))
		return
	}
	p.dispatch(t, msg)
	p.log.Info("received message",
		zap.String("type", t.Name), zap.Uint16("msg_id", h.MessageID), zap.Uint8("from", src))

	// ack confirms receipt, not downstream processing
	if _, need := p.requiringAck[t.Name]; need {
		if _, err := p.sendAck(h.MessageID); err != nil {
			p.log.Warn("failed to send ack",
				zap.Uint16("msg_id", h.MessageID), zap.Error(err))
		}
	}
}

// throughput derives bytes/second from frame length and transit time.
// Non-positive transit (clock skew) leaves it undefined.
func throughput(frameLen int, transitS float64) (float64, bool) {
	if transitS <= 0 {
		return 0, false
	}
	return float64(frameLen) / transitS, true
}

// dispatch routes a decoded message to its consumer. The switch is
// exhaustive over the closed Message set.
func (p *Packer) dispatch(t protocol.Type, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.NavFix:
		if p.sink.Nav != nil {
			p.sink.Nav(m)
		}
	case protocol.PositionRequest:
		if p.sink.Position != nil {
			p.sink.Position(m.Pose)
		}
	case protocol.BodyRequest:
		if p.sink.Body != nil {
			p.sink.Body(m.Pose)
		}
	case protocol.Blob:
		if p.sink.Blob != nil {
			p.sink.Blob([]byte(m))
		}
	case protocol.Ack:
		p.log.Info("message delivered", zap.Uint16("msg_id", m.MessageID))
		if p.sink.AckDelivered != nil {
			p.sink.AckDelivered(m.MessageID)
		}
	case protocol.General:
		fn := p.sink.General[m.Type.Topic]
		if fn == nil {
			p.log.Warn("no consumer bound for general topic",
				zap.String("type", m.Type.Name), zap.String("topic", m.Type.Topic))
			return
		}
		fn(m.Raw)
	default:
		p.log.Warn("no consumer for message type", zap.String("type", t.Name))
	}
}
