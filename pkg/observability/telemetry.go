package observability

import "go.uber.org/zap"

// Receipt is the per-envelope delivery telemetry record emitted by the
// incoming pipeline: sender/receiver timestamps, frame length and the
// derived link throughput.
type Receipt struct {
	Source         uint8
	TypeName       string
	MessageID      uint16
	SentAt         float64
	ReceivedAt     float64
	Length         int
	TransitSeconds float64
	// ThroughputBps is bytes/second; meaningful only when ThroughputOK.
	// A non-positive transit time (clock skew) leaves it undefined
	// rather than propagating infinities.
	ThroughputBps float64
	ThroughputOK  bool
	ReceiveCount  uint64
}

// TelemetrySink accepts receipt records. The codec core reports through
// this interface and never blocks on it.
type TelemetrySink interface {
	ReportReceipt(Receipt)
}

// LogSink reports receipts as structured log events.
type LogSink struct{ L *zap.Logger }

func (s LogSink) ReportReceipt(r Receipt) {
	fields := []zap.Field{
		zap.Uint8("from", r.Source),
		zap.String("type", r.TypeName),
		zap.Uint16("msg_id", r.MessageID),
		zap.Float64("time_sent", r.SentAt),
		zap.Float64("time_received", r.ReceivedAt),
		zap.Int("length", r.Length),
		zap.Uint64("msg_in_cnt", r.ReceiveCount),
	}
	if r.ThroughputOK {
		fields = append(fields, zap.Float64("speed_bps", r.ThroughputBps))
		s.L.Info("received burst message", fields...)
		return
	}
	// negative or zero transit means the two clocks disagree
	fields = append(fields, zap.Float64("transit_s", r.TransitSeconds))
	s.L.Warn("received burst message with undefined throughput (clock skew?)", fields...)
}
