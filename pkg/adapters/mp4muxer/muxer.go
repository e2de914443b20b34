// Package mp4muxer writes fragmented MP4 files with mp4ff. The movie box is
// emitted with the first packet, once the codec configuration is known, and
// every group of pictures becomes one moof/mdat fragment.
package mp4muxer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

const (
	trackID = 1
	// minTimescale is the lower bound for the track timescale; the codec
	// denominator is doubled until it reaches it.
	minTimescale = 10000
)

var (
	// ErrFirstPacketNotKey is returned when the stream does not start with a
	// random access point.
	ErrFirstPacketNotKey = errors.New("mp4muxer: first packet is not a keyframe")
	// ErrTrailerWritten is returned for packets after the trailer.
	ErrTrailerWritten = errors.New("mp4muxer: trailer already written")
)

// Muxer implements ports.Muxer.
type Muxer struct {
	w   io.Writer
	log ports.Logger

	st        *ports.Stream
	timescale uint32
	defDur    uint32

	initDone  bool
	firstDTS  int64
	seq       uint32
	frag      *mp4.Fragment
	pending   *sample
	finished  bool
	fragments int
}

type sample struct {
	data  []byte
	pts   int64
	dts   int64
	dur   int64
	isKey bool
}

// New creates a muxer writing to cfg.Output.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("mp4muxer: no output")
	}
	return &Muxer{w: cfg.Output, log: avlog.Component("mp4")}, nil
}

// Timescale returns the track timescale used for a codec time base.
func Timescale(tb av.Rational) uint32 {
	ts := tb.Den
	if ts <= 0 {
		ts = 1000
	}
	for ts < minTimescale {
		ts *= 2
	}
	return uint32(ts)
}

// WriteHeader writes the ftyp box and selects the track timescale.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	switch st.Codecpar.CodecID {
	case av.CodecH264, av.CodecAV1:
	default:
		return fmt.Errorf("mp4muxer: %w: %s", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
	}

	m.timescale = Timescale(st.TimeBase)
	frameTB := st.TimeBase
	if st.AvgFrameRate.Valid() {
		frameTB = st.AvgFrameRate.Inv()
	}
	st.TimeBase = av.R(1, int(m.timescale))
	m.defDur = uint32(av.Rescale(1, frameTB, st.TimeBase))
	m.st = st

	brand := "avc1"
	if st.Codecpar.CodecID == av.CodecAV1 {
		brand = "av01"
	}
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso6", brand, "mp41"})
	if err := ftyp.Encode(m.w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	m.log.Debug("timescale %d for time base %s", m.timescale, frameTB)
	return nil
}

// WritePacket buffers the packet; a sample's duration is known only once the
// next packet arrives.
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

	s := &sample{
		data:  m.payload(pkt.Data),
		pts:   pkt.PTS - m.firstDTS,
		dts:   pkt.DTS - m.firstDTS,
		dur:   pkt.Duration,
		isKey: pkt.IsKey(),
	}
	if m.pending != nil {
		if err := m.addSample(m.pending, s.dts-m.pending.dts, s.isKey); err != nil {
			return err
		}
	}
	m.pending = s
	return nil
}

// WriteTrailer flushes the last fragment.
func (m *Muxer) WriteTrailer() error {
	if m.finished {
		return nil
	}
	m.finished = true
	if !m.initDone {
		if !m.hasExtradataConfig() {
			m.log.Warn("no packets written, mp4 file has no movie box")
			return nil
		}
		if err := m.writeInit(nil); err != nil {
			return err
		}
	}
	if m.pending != nil {
		dur := m.pending.dur
		if dur <= 0 {
			dur = int64(m.defDur)
		}
		if err := m.addSample(m.pending, dur, false); err != nil {
			return err
		}
		m.pending = nil
	}
	if err := m.flushFragment(); err != nil {
		return err
	}
	m.log.Debug("wrote %d fragments", m.fragments)
	return nil
}

func (m *Muxer) payload(data []byte) []byte {
	if m.st.Codecpar.CodecID == av.CodecH264 {
		return bitstream.AnnexBToAVCC(data, true)
	}
	return data
}

// addSample appends s to the open fragment. nextIsKey closes the fragment
// after s so the next one starts on a sync sample.
func (m *Muxer) addSample(s *sample, dur int64, nextIsKey bool) error {
	if m.frag == nil {
		m.seq++
		frag, err := mp4.CreateFragment(m.seq, trackID)
		if err != nil {
			return fmt.Errorf("create fragment: %w", err)
		}
		m.frag = frag
	}
	if dur <= 0 {
		dur = int64(m.defDur)
	}

	flags := mp4.NonSyncSampleFlags
	if s.isKey {
		flags = mp4.SyncSampleFlags
	}
	m.frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags:                 flags,
			Size:                  uint32(len(s.data)),
			Dur:                   uint32(dur),
			CompositionTimeOffset: int32(s.pts - s.dts),
		},
		DecodeTime: uint64(s.dts),
		Data:       s.data,
	})

	if nextIsKey {
		return m.flushFragment()
	}
	return nil
}

func (m *Muxer) flushFragment() error {
	if m.frag == nil {
		return nil
	}
	if err := m.frag.Encode(m.w); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	m.frag = nil
	m.fragments++
	return nil
}

// hasExtradataConfig reports whether the codec configuration can be built
// without seeing a packet.
func (m *Muxer) hasExtradataConfig() bool {
	extradata := m.st.Codecpar.Extradata
	switch m.st.Codecpar.CodecID {
	case av.CodecH264:
		_, _, err := bitstream.ParameterSets(extradata)
		return err == nil
	case av.CodecAV1:
		return bitstream.SequenceHeader(extradata) != nil
	}
	return false
}

func (m *Muxer) writeInit(first []byte) error {
	cp := m.st.Codecpar
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(m.timescale, "video", "und")
	trak := init.Moov.Trak

	width, height := uint16(cp.Width), uint16(cp.Height)
	switch cp.CodecID {
	case av.CodecH264:
		sps, pps, err := bitstream.ConfigSource(cp.Extradata, first)
		if err != nil {
			return fmt.Errorf("h264 configuration: %w", err)
		}
		avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
		if err != nil {
			return fmt.Errorf("create avcC: %w", err)
		}
		trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", width, height, avcC))
	case av.CodecAV1:
		trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", width, height, AV1Config(cp.Extradata, first)))
	}
	trak.Tkhd.Width = mp4.Fixed32(cp.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(cp.Height << 16)

	if err := init.Moov.Encode(m.w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	m.initDone = true
	return nil
}

// AV1Config builds an av1C box for 8-bit 4:2:0 main profile streams. The
// sequence header is taken from extradata, else from the first temporal unit.
func AV1Config(extradata, first []byte) *mp4.Av1CBox {
	seqHdr := bitstream.SequenceHeader(extradata)
	if seqHdr == nil {
		seqHdr = bitstream.SequenceHeader(first)
	}
	return &mp4.Av1CBox{
		CodecConfRec: av1.CodecConfRec{
			Version:            1,
			SeqLevelIdx0:       8,
			ChromaSubsamplingX: 1,
			ChromaSubsamplingY: 1,
			ConfigOBUs:         seqHdr,
		},
	}
}

// BoxPayload encodes a box and strips its 8-byte header, giving the bare
// configuration record other containers store as codec private data.
func BoxPayload(b mp4.Box) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		return nil, err
	}
	if buf.Len() < 8 {
		return nil, fmt.Errorf("mp4muxer: short %s box", b.Type())
	}
	return buf.Bytes()[8:], nil
}

var _ ports.Muxer = (*Muxer)(nil)
