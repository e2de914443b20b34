// Package intraencoder provides pure-Go encoders whose every packet is a
// self-contained picture: raw video, Motion JPEG and PNG.
package intraencoder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

var (
	// ErrNotOpened is returned when frames are sent before Open.
	ErrNotOpened = errors.New("intraencoder: encoder not opened")
)

type encodeFunc func(f *av.Frame) ([]byte, error)

// Encoder emits exactly one keyframe packet per submitted frame. It holds at
// most one finished packet; SendFrame reports av.ErrAgain until it is read.
type Encoder struct {
	codec   *ports.Codec
	cfg     ports.EncoderConfig
	encode  encodeFunc
	options func(opts *av.Dictionary) error

	opened  bool
	flushed bool
	pending *av.Packet
}

func newEncoder(codec *ports.Codec) *Encoder {
	return &Encoder{codec: codec}
}

// Open validates the configuration and consumes recognised options.
func (e *Encoder) Open(cfg ports.EncoderConfig, opts *av.Dictionary) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %s: invalid size %dx%d", av.ErrConfiguration, e.codec.Name, cfg.Width, cfg.Height)
	}
	if !slices.Contains(e.codec.PixelFormats, cfg.PixelFormat) {
		return fmt.Errorf("%w: %s does not support pixel format %s", av.ErrConfiguration, e.codec.Name, cfg.PixelFormat)
	}
	if e.options != nil {
		if err := e.options(opts); err != nil {
			return err
		}
	}
	e.cfg = cfg
	e.opened = true
	e.flushed = false
	e.pending = nil
	return nil
}

// SendFrame encodes f immediately. A nil frame starts the flush.
func (e *Encoder) SendFrame(f *av.Frame) error {
	if !e.opened {
		return ErrNotOpened
	}
	if e.flushed {
		return av.ErrEOF
	}
	if f == nil {
		e.flushed = true
		return nil
	}
	if e.pending != nil {
		return av.ErrAgain
	}

	data, err := e.encode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", e.codec.Name, err)
	}
	e.pending = &av.Packet{
		Data:     data,
		PTS:      f.PTS,
		DTS:      f.PTS,
		Duration: 1,
		Flags:    av.PacketFlagKey,
	}
	return nil
}

// ReceivePacket returns the finished packet, if any.
func (e *Encoder) ReceivePacket() (*av.Packet, error) {
	if !e.opened {
		return nil, ErrNotOpened
	}
	if e.pending != nil {
		pkt := e.pending
		e.pending = nil
		return pkt, nil
	}
	if e.flushed {
		return nil, av.ErrEOF
	}
	return nil, av.ErrAgain
}

// Extradata is always empty for intra-only codecs.
func (e *Encoder) Extradata() []byte {
	return nil
}

// Close releases the encoder.
func (e *Encoder) Close() error {
	e.opened = false
	e.pending = nil
	return nil
}

var _ ports.Encoder = (*Encoder)(nil)
