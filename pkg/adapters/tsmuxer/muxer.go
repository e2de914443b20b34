// Package tsmuxer writes MPEG-TS files with the mediacommon MPEG-TS writer.
package tsmuxer

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/formats/mpegts"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

// ClockRate is the MPEG-TS timestamp rate.
const ClockRate = 90000

var (
	// ErrTrailerWritten is returned for packets after the trailer.
	ErrTrailerWritten = errors.New("tsmuxer: trailer already written")
)

// Muxer implements ports.Muxer.
type Muxer struct {
	bw       *bufio.Writer
	st       *ports.Stream
	track    *mpegts.Track
	w        *mpegts.Writer
	sps, pps []byte
	finished bool
}

// New creates a muxer writing to cfg.Output.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("tsmuxer: no output")
	}
	return &Muxer{bw: bufio.NewWriter(cfg.Output)}, nil
}

// WriteHeader sets up the single H.264 elementary stream.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	if st.Codecpar.CodecID != av.CodecH264 {
		return fmt.Errorf("tsmuxer: %w: %s", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
	}
	st.TimeBase = av.R(1, ClockRate)
	m.st = st

	if len(st.Codecpar.Extradata) > 0 {
		m.sps, m.pps, _ = bitstream.ParameterSets(st.Codecpar.Extradata)
	}

	m.track = &mpegts.Track{Codec: &mpegts.CodecH264{}}
	m.w = &mpegts.Writer{W: m.bw, Tracks: []*mpegts.Track{m.track}}
	if err := m.w.Initialize(); err != nil {
		return fmt.Errorf("initialize mpegts writer: %w", err)
	}
	return nil
}

// WritePacket writes one access unit. Keyframes carry parameter sets in
// band, copied from extradata when the encoder kept them out of band.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if m.finished {
		return ErrTrailerWritten
	}
	au := bitstream.SplitAnnexB(pkt.Data)
	if pkt.IsKey() && m.sps != nil && !hasParameterSets(au) {
		au = append([][]byte{m.sps, m.pps}, au...)
	}
	if err := m.w.WriteH264(m.track, pkt.PTS, pkt.DTS, au); err != nil {
		return fmt.Errorf("write h264: %w", err)
	}
	return nil
}

// WriteTrailer flushes buffered TS packets.
func (m *Muxer) WriteTrailer() error {
	if m.finished {
		return nil
	}
	m.finished = true
	return m.bw.Flush()
}

func hasParameterSets(au [][]byte) bool {
	for _, n := range au {
		if bitstream.NALType(n) == bitstream.NALSPS {
			return true
		}
	}
	return false
}

var _ ports.Muxer = (*Muxer)(nil)
