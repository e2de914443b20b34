// Package y4mmuxer writes YUV4MPEG2 streams of uncompressed pictures.
package y4mmuxer

import (
	"bufio"
	"fmt"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Muxer implements ports.Muxer.
type Muxer struct {
	bw        *bufio.Writer
	frameSize int
}

// New creates a muxer writing to cfg.Output.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("y4mmuxer: no output")
	}
	return &Muxer{bw: bufio.NewWriter(cfg.Output)}, nil
}

// Colorspace returns the C parameter for a pixel format.
func Colorspace(p av.PixelFormat) (string, bool) {
	switch p {
	case av.PixFmtYUV420P:
		return "420jpeg", true
	case av.PixFmtYUVJ420P:
		return "420jpeg XCOLORRANGE=FULL", true
	case av.PixFmtGray8:
		return "mono", true
	}
	return "", false
}

// WriteHeader writes the stream header line.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	cp := st.Codecpar
	if cp.CodecID != av.CodecRawVideo {
		return fmt.Errorf("y4mmuxer: %w: %s", av.ErrUnsupportedCodec, cp.CodecID)
	}
	cs, ok := Colorspace(cp.PixelFormat)
	if !ok {
		return fmt.Errorf("y4mmuxer: pixel format %s not supported", cp.PixelFormat)
	}
	rate := st.AvgFrameRate
	if !rate.Valid() {
		rate = st.TimeBase.Inv()
	}
	m.frameSize = cp.PixelFormat.BufferSize(cp.Width, cp.Height)

	_, err := fmt.Fprintf(m.bw, "YUV4MPEG2 W%d H%d F%d:%d Ip A1:1 C%s\n", cp.Width, cp.Height, rate.Num, rate.Den, cs)
	return err
}

// WritePacket writes one FRAME record.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if len(pkt.Data) != m.frameSize {
		return fmt.Errorf("y4mmuxer: frame is %d bytes, expected %d", len(pkt.Data), m.frameSize)
	}
	if _, err := m.bw.WriteString("FRAME\n"); err != nil {
		return err
	}
	_, err := m.bw.Write(pkt.Data)
	return err
}

// WriteTrailer flushes buffered output.
func (m *Muxer) WriteTrailer() error {
	return m.bw.Flush()
}

var _ ports.Muxer = (*Muxer)(nil)
