// Package avimuxer writes Motion JPEG AVI files with icza/mjpeg. The library
// owns the output file, so the format is registered as NoFile.
package avimuxer

import (
	"errors"
	"fmt"
	"math"

	"github.com/icza/mjpeg"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/ports"
)

var (
	// ErrNotStarted is returned for packets before the header.
	ErrNotStarted = errors.New("avimuxer: header not written")
)

// Muxer implements ports.Muxer.
type Muxer struct {
	log    ports.Logger
	path   string
	aw     mjpeg.AviWriter
	frames int
}

// New creates a muxer for cfg.URL.
func New(cfg ports.MuxerConfig) (ports.Muxer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("avimuxer: empty filename")
	}
	return &Muxer{log: avlog.Component("avi"), path: cfg.URL}, nil
}

// WriteHeader creates the AVI file. The container stores an integral frame
// rate, so the stream keeps frame-count timestamps.
func (m *Muxer) WriteHeader(st *ports.Stream) error {
	if st.Codecpar.CodecID != av.CodecMJPEG {
		return fmt.Errorf("avimuxer: %w: %s", av.ErrUnsupportedCodec, st.Codecpar.CodecID)
	}
	fps := int32(1)
	if st.AvgFrameRate.Valid() {
		fps = int32(max(1, math.Round(st.AvgFrameRate.Float64())))
		if st.AvgFrameRate.Den != 1 && st.AvgFrameRate.Num%st.AvgFrameRate.Den != 0 {
			m.log.Warn("frame rate %s stored as %d fps", st.AvgFrameRate, fps)
		}
	}

	aw, err := mjpeg.New(m.path, int32(st.Codecpar.Width), int32(st.Codecpar.Height), fps)
	if err != nil {
		return fmt.Errorf("create avi: %w", err)
	}
	m.aw = aw
	return nil
}

// WritePacket appends one JPEG frame.
func (m *Muxer) WritePacket(pkt *av.Packet) error {
	if m.aw == nil {
		return ErrNotStarted
	}
	if err := m.aw.AddFrame(pkt.Data); err != nil {
		return fmt.Errorf("add frame: %w", err)
	}
	m.frames++
	return nil
}

// WriteTrailer writes the index and closes the file.
func (m *Muxer) WriteTrailer() error {
	if m.aw == nil {
		return nil
	}
	aw := m.aw
	m.aw = nil
	if err := aw.Close(); err != nil {
		return fmt.Errorf("close avi: %w", err)
	}
	return nil
}

// Frames returns the number of frames added.
func (m *Muxer) Frames() int {
	return m.frames
}

var _ ports.Muxer = (*Muxer)(nil)
