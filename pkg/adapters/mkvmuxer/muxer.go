// Package mkvmuxer writes Matroska and WebM files with ebml-go.
package mkvmuxer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/at-wat/ebml-go/mkvcore"
	"github.com/at-wat/ebml-go/webm"

	"github.com/user/vidwriter/pkg/adapters/mp4muxer"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

const (
	docTypeMatroska = "matroska"
	docTypeWebM     = "webm"

	trackTypeVideo = 1
)

var (
	// ErrFirstPacketNotKey is returned when the stream does not start with a
	// keyframe.
	ErrFirstPacketNotKey = errors.New("mkvmuxer: first packet is not a keyframe")
	// ErrTrailerWritten is returned for packets after the trailer.
	ErrTrailerWritten = errors.New("mkvmuxer: trailer already written")
)

var codecIDs = map[av.CodecID]string{
	av.CodecH264:  "V_MPEG4/ISO/AVC",
	av.CodecVP8:   "V_VP8",
	av.CodecVP9:   "V_VP9",
	av.CodecAV1:   "V_AV1",
	av.CodecMJPEG: "V_MJPEG",
}

// Muxer implements ports.Muxer on top of a SimpleBlock writer.
type Muxer struct {
	w       io.Writer
	docType string
	log     ports.Logger

	st     *ports.Stream
	defDur uint64

	bw       webm.BlockWriteCloser
	mu       sync.Mutex
	fatal    error
	finished bool
}

// NewMatroska creates a Matroska muxer.
func NewMatroska(cfg ports.MuxerConfig) (ports.Muxer, error) {
	return newMuxer(cfg, docTypeMatroska)
}

// NewWebM creates a WebM muxer.
func NewWebM(cfg ports.MuxerConfig) (ports.Muxer, error) {
	return newMuxer(cfg, docTypeWebM)
}

func newMuxer(cfg ports.MuxerConfig, docType string) (*Muxer, error) {
	if cfg.Output == nil {
		return nil, fmt.Errorf("mkvmuxer: no output")
	}
	return &Muxer{w: cfg.Output, docType: docType, log: avlog.Component(docType)}, nil
}

// WriteHeader switches the stream to millisecond timestamps. The EBML
// header itself is written with the first packet, once codec private data
// can be derived from it.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	id := st.Codecpar.CodecID
	if _, ok := codecIDs[id]; !ok {
		return fmt.Errorf("mkvmuxer: %w: %s", av.ErrUnsupportedCodec, id)
	}
	if m.docType == docTypeWebM && id != av.CodecVP8 && id != av.CodecVP9 && id != av.CodecAV1 {
		return fmt.Errorf("mkvmuxer: %w: %s in webm", av.ErrUnsupportedCodec, id)
	}

	if st.AvgFrameRate.Valid() {
		m.defDur = uint64(av.Rescale(1, st.AvgFrameRate.Inv(), av.R(1, 1000000000)))
	}
	st.TimeBase = av.R(1, 1000)
	m.st = st
	return nil
}

// WritePacket writes one SimpleBlock.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if m.finished {
		return ErrTrailerWritten
	}
	if err := m.fatalErr(); err != nil {
		return err
	}
	if m.bw == nil {
		if !pkt.IsKey() {
			return ErrFirstPacketNotKey
		}
		if err := m.open(pkt.Data); err != nil {
			return err
		}
	}

	data := pkt.Data
	if m.st.Codecpar.CodecID == av.CodecH264 {
		data = bitstream.AnnexBToAVCC(data, true)
	}
	if _, err := m.bw.Write(pkt.IsKey(), pkt.PTS, data); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return m.fatalErr()
}

// WriteTrailer closes the track writer.
func (m *Muxer) WriteTrailer() error {
	if m.finished {
		return nil
	}
	m.finished = true
	if m.bw == nil {
		m.log.Warn("no packets written, %s file has no header", m.docType)
		return nil
	}
	if err := m.bw.Close(); err != nil {
		return fmt.Errorf("close track: %w", err)
	}
	return m.fatalErr()
}

func (m *Muxer) open(first []byte) error {
	cp := m.st.Codecpar
	private, err := codecPrivate(cp, first)
	if err != nil {
		return err
	}

	track := webm.TrackEntry{
		Name:            "Video",
		TrackNumber:     1,
		TrackUID:        1,
		CodecID:         codecIDs[cp.CodecID],
		CodecPrivate:    private,
		TrackType:       trackTypeVideo,
		DefaultDuration: m.defDur,
		Video: &webm.Video{
			PixelWidth:  uint64(cp.Width),
			PixelHeight: uint64(cp.Height),
		},
	}

	header := *webm.DefaultEBMLHeader
	header.DocType = m.docType

	writers, err := webm.NewSimpleBlockWriter(nopCloser{m.w}, []webm.TrackEntry{track},
		mkvcore.WithEBMLHeader(&header),
		mkvcore.WithOnFatalHandler(func(err error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.fatal = err
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s writer: %w", m.docType, err)
	}
	m.bw = writers[0]
	return nil
}

func (m *Muxer) fatalErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fatal != nil {
		return fmt.Errorf("%s writer: %w", m.docType, m.fatal)
	}
	return nil
}

// codecPrivate returns the configuration record stored in the track entry.
func codecPrivate(cp ports.CodecParameters, first []byte) ([]byte, error) {
	switch cp.CodecID {
	case av.CodecH264:
		sps, pps, err := bitstream.ConfigSource(cp.Extradata, first)
		if err != nil {
			return nil, fmt.Errorf("h264 configuration: %w", err)
		}
		avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
		if err != nil {
			return nil, fmt.Errorf("create avcC: %w", err)
		}
		return mp4muxer.BoxPayload(avcC)
	case av.CodecAV1:
		return mp4muxer.BoxPayload(mp4muxer.AV1Config(cp.Extradata, first))
	}
	return nil, nil
}

// nopCloser keeps the sink open; the writer closes it after the trailer.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

var _ ports.Muxer = (*Muxer)(nil)
