package av

import (
	"fmt"
	"math"
)

// NoPTS marks an unset timestamp.
const NoPTS int64 = math.MinInt64

// PacketFlags carries per-packet properties.
type PacketFlags int

const (
	// PacketFlagKey marks a packet that starts a decodable sequence.
	PacketFlagKey PacketFlags = 1 << iota
)

// Packet is one compressed unit emitted by an encoder.
type Packet struct {
	Data        []byte
	PTS         int64
	DTS         int64
	Duration    int64
	StreamIndex int
	Flags       PacketFlags
}

// IsKey reports whether the packet is a keyframe.
func (p *Packet) IsKey() bool {
	return p.Flags&PacketFlagKey != 0
}

// RescaleTS converts timestamps and duration from src to dst time base.
// Unset timestamps stay unset.
func (p *Packet) RescaleTS(src, dst Rational) {
	if p.PTS != NoPTS {
		p.PTS = Rescale(p.PTS, src, dst)
	}
	if p.DTS != NoPTS {
		p.DTS = Rescale(p.DTS, src, dst)
	}
	if p.Duration > 0 {
		p.Duration = Rescale(p.Duration, src, dst)
	}
}

// Unref releases the payload.
func (p *Packet) Unref() {
	p.Data = nil
}

// TSString formats a timestamp, printing NOPTS for unset values.
func TSString(ts int64) string {
	if ts == NoPTS {
		return "NOPTS"
	}
	return fmt.Sprintf("%d", ts)
}

// TSTimeString formats a timestamp in seconds for the given time base.
func TSTimeString(ts int64, tb Rational) string {
	if ts == NoPTS {
		return "NOPTS"
	}
	return fmt.Sprintf("%.6g", float64(ts)*tb.Float64())
}
