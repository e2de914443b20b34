// Package fmp4muxer writes CMAF-style fragmented MP4 segments with the
// mediacommon fMP4 marshaller: one init segment followed by one part per
// group of pictures.
package fmp4muxer

import (
	"errors"
	"fmt"
	"io"

	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4/seekablebuffer"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"

	"github.com/user/vidwriter/pkg/adapters/mp4muxer"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

const trackID = 1

var (
	// ErrFirstPacketNotKey is returned when the stream does not start with a
	// keyframe.
	ErrFirstPacketNotKey = errors.New("fmp4muxer: first packet is not a keyframe")
	// ErrTrailerWritten is returned for packets after the trailer.
	ErrTrailerWritten = errors.New("fmp4muxer: trailer already written")
)

// Muxer implements ports.Muxer.
type Muxer struct {
	w io.Writer

	st        *ports.Stream
	timescale uint32
	defDur    uint32

	initDone bool
	firstDTS int64
	seq      uint32

	partBase int64
	samples  []*fmp4.Sample
	pending  *pendingSample
	finished bool
}

type pendingSample struct {
	dts    int64
	sample *fmp4.Sample
}

// New creates a muxer writing to cfg.Output.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("fmp4muxer: no output")
	}
	return &Muxer{w: cfg.Output}, nil
}

// WriteHeader selects the track timescale. The init segment follows with the
// first keyframe.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	switch st.Codecpar.CodecID {
	case av.CodecH264, av.CodecAV1, av.CodecMJPEG:
	default:
		return fmt.Errorf("fmp4muxer: %w: %s", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
	}
	m.timescale = mp4muxer.Timescale(st.TimeBase)
	frameTB := st.TimeBase
	if st.AvgFrameRate.Valid() {
		frameTB = st.AvgFrameRate.Inv()
	}
	st.TimeBase = av.R(1, int(m.timescale))
	m.defDur = uint32(av.Rescale(1, frameTB, st.TimeBase))
	m.st = st
	return nil
}

// WritePacket queues one sample.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if m.finished {
		return ErrTrailerWritten
	}
	if !m.initDone {
		if !pkt.IsKey() {
			return ErrFirstPacketNotKey
		}
		if err := m.writeInit(pkt.Data); err != nil {
			return err
		}
		m.firstDTS = pkt.DTS
	}

	payload := pkt.Data
	if m.st.Codecpar.CodecID == av.CodecH264 {
		payload = bitstream.AnnexBToAVCC(payload, true)
	}
	next := &pendingSample{
		dts: pkt.DTS - m.firstDTS,
		sample: &fmp4.Sample{
			Duration:        uint32(pkt.Duration),
			PTSOffset:       int32(pkt.PTS - pkt.DTS),
			IsNonSyncSample: !pkt.IsKey(),
			Payload:         payload,
		},
	}

	if m.pending != nil {
		if d := next.dts - m.pending.dts; d > 0 {
			m.pending.sample.Duration = uint32(d)
		}
		m.appendPending()
		if pkt.IsKey() {
			if err := m.flushPart(); err != nil {
				return err
			}
		}
	}
	m.pending = next
	return nil
}

// WriteTrailer writes the final part.
func (m *Muxer) WriteTrailer() error {
	if m.finished {
		return nil
	}
	m.finished = true
	if m.pending != nil {
		m.appendPending()
	}
	return m.flushPart()
}

func (m *Muxer) appendPending() {
	if m.pending.sample.Duration == 0 {
		m.pending.sample.Duration = m.defDur
	}
	if len(m.samples) == 0 {
		m.partBase = m.pending.dts
	}
	m.samples = append(m.samples, m.pending.sample)
	m.pending = nil
}

func (m *Muxer) flushPart() error {
	if len(m.samples) == 0 {
		return nil
	}
	m.seq++
	part := &fmp4.Part{
		SequenceNumber: m.seq,
		Tracks: []*fmp4.PartTrack{{
			ID:       trackID,
			BaseTime: uint64(m.partBase),
			Samples:  m.samples,
		}},
	}

	var buf seekablebuffer.Buffer
	if err := part.Marshal(&buf); err != nil {
		return fmt.Errorf("marshal part: %w", err)
	}
	if _, err := m.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write part: %w", err)
	}
	m.samples = nil
	return nil
}

func (m *Muxer) writeInit(first []byte) error {
	codec, err := m.codec(first)
	if err != nil {
		return err
	}
	init := &fmp4.Init{
		Tracks: []*fmp4.InitTrack{{
			ID:        trackID,
			TimeScale: m.timescale,
			Codec:     codec,
		}},
	}

	var buf seekablebuffer.Buffer
	if err := init.Marshal(&buf); err != nil {
		return fmt.Errorf("marshal init segment: %w", err)
	}
	if _, err := m.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write init segment: %w", err)
	}
	m.initDone = true
	return nil
}

func (m *Muxer) codec(first []byte) (mp4.Codec, error) {
	cp := m.st.Codecpar
	switch cp.CodecID {
	case av.CodecH264:
		sps, pps, err := bitstream.ConfigSource(cp.Extradata, first)
		if err != nil {
			return nil, fmt.Errorf("h264 configuration: %w", err)
		}
		return &mp4.CodecH264{SPS: sps, PPS: pps}, nil
	case av.CodecAV1:
		seqHdr := bitstream.SequenceHeader(cp.Extradata)
		if seqHdr == nil {
			seqHdr = bitstream.SequenceHeader(first)
		}
		if seqHdr == nil {
			return nil, fmt.Errorf("fmp4muxer: av1 sequence header not found")
		}
		return &mp4.CodecAV1{SequenceHeader: seqHdr}, nil
	default:
		return &mp4.CodecMJPEG{Width: cp.Width, Height: cp.Height}, nil
	}
}

var _ ports.Muxer = (*Muxer)(nil)
