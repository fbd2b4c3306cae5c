// Package stats keeps per-remote-address link statistics derived from
// envelope traffic. Observability only; nothing here affects the wire.
package stats

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LinkRecord aggregates traffic counters and the latest transit
// measurements for one remote modem address.
type LinkRecord struct {
	Address   uint8  `json:"address"`
	FramesIn  uint64 `json:"frames_in"`
	FramesOut uint64 `json:"frames_out"`
	BytesIn   uint64 `json:"bytes_in"`
	BytesOut  uint64 `json:"bytes_out"`
	// Latest receive-time telemetry; speed is 0 when undefined.
	LastTransitS float64 `json:"last_transit_s"`
	LastSpeedBps float64 `json:"last_speed_bps"`
	LastSeen     int64   `json:"last_seen_unix_ms"`
}

// Store is a mutex-protected map of link records. The handful of modem
// addresses on an acoustic channel does not warrant anything heavier.
type Store struct {
	mu sync.RWMutex
	m  map[uint8]*LinkRecord
}

func NewStore() *Store { return &Store{m: make(map[uint8]*LinkRecord)} }

func (s *Store) rec(addr uint8) *LinkRecord {
	r, ok := s.m[addr]
	if !ok {
		r = &LinkRecord{Address: addr}
		s.m[addr] = r
	}
	return r
}

// RecordOut counts one published frame.
func (s *Store) RecordOut(addr uint8, frameLen int) {
	s.mu.Lock()
	r := s.rec(addr)
	r.FramesOut++
	r.BytesOut += uint64(frameLen)
	s.mu.Unlock()
}

// RecordIn counts one received frame with its transit telemetry.
// speedBps of 0 records an undefined throughput (clock skew).
func (s *Store) RecordIn(addr uint8, frameLen int, transitS, speedBps float64, when time.Time) {
	s.mu.Lock()
	r := s.rec(addr)
	r.FramesIn++
	r.BytesIn += uint64(frameLen)
	r.LastTransitS = transitS
	r.LastSpeedBps = speedBps
	r.LastSeen = when.UnixMilli()
	s.mu.Unlock()
	zap.L().Debug("link exchange", zap.Uint8("addr", addr), zap.Int("len", frameLen), zap.Float64("transit_s", transitS))
}

// Get returns a copy of the record for addr.
func (s *Store) Get(addr uint8) (LinkRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[addr]
	if !ok {
		return LinkRecord{}, false
	}
	return *r, true
}

// Snapshot returns all records ordered by address.
func (s *Store) Snapshot() []LinkRecord {
	s.mu.RLock()
	out := make([]LinkRecord, 0, len(s.m))
	for _, r := range s.m {
		out = append(out, *r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// SnapshotJSON renders the snapshot for diagnostics endpoints.
func (s *Store) SnapshotJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
