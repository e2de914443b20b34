package videowriter

import (
	"errors"
	"fmt"
	"io"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// Teardown steps in the order they run.
const (
	StepFlush     = "flush"
	StepTrailer   = "trailer"
	StepSink      = "sink"
	StepEncoder   = "encoder"
	StepFrame     = "frame"
	StepConverter = "converter"
	StepOptions   = "options"
)

// session holds everything acquired by one Open. It never points back at
// the Writer so that an unreachable Writer can still be released.
type session struct {
	filename string
	logger   ports.Logger
	debug    ports.DebugSink
	stats    *Stats
	step     func(string)

	format *ports.OutputFormat
	codec  *ports.Codec

	enc    ports.Encoder
	encCfg ports.EncoderConfig
	opts   *av.Dictionary
	frame  *av.Frame
	conv   ports.PixelConverter
	sink   io.WriteCloser
	muxer  ports.Muxer
	stream ports.Stream

	input    av.PixelFormat
	channels int
	width    int
	height   int
	nextPTS  int64

	created       bool
	headerWritten bool
	il            interleaver
}

func (s *session) mark(step string) {
	if s.step != nil {
		s.step(step)
	}
}

// pump submits frame (nil to flush) and drains every packet the encoder has
// ready into the muxer. It reports whether the encoder reached end of stream.
func (s *session) pump(frame *av.Frame) (bool, error) {
	if err := s.enc.SendFrame(frame); err != nil && !av.IsControl(err) {
		return false, wrap(av.ErrEncodeSubmit, err)
	}

	for {
		pkt, err := s.enc.ReceivePacket()
		if errors.Is(err, av.ErrEOF) {
			return true, nil
		}
		if errors.Is(err, av.ErrAgain) {
			return false, nil
		}
		if err != nil {
			return false, wrap(av.ErrEncodeReceive, err)
		}
		if err := s.writePacket(pkt); err != nil {
			return false, err
		}
	}
}

func (s *session) writePacket(pkt *av.Packet) error {
	pkt.RescaleTS(s.encCfg.TimeBase, s.stream.TimeBase)
	pkt.StreamIndex = s.stream.Index
	s.logPacket(pkt)

	if err := s.il.check(pkt); err != nil {
		return err
	}
	if err := s.muxer.WritePacket(pkt); err != nil {
		return wrap(av.ErrMuxWrite, err)
	}

	s.stats.Packets++
	s.stats.Bytes += int64(len(pkt.Data))
	if s.debug.Enabled() {
		if err := s.debug.SavePacket(int(s.stats.Packets-1), pkt.Data); err != nil {
			s.logger.Warn("Failed to save packet: %v", err)
		}
	}
	pkt.Unref()
	return nil
}

// release flushes, writes the trailer and tears the session down. The first
// error wins; teardown always runs.
func (s *session) release() error {
	var first error
	if s.headerWritten {
		s.mark(StepFlush)
		if _, err := s.pump(nil); err != nil {
			first = err
		}
		s.mark(StepTrailer)
		if err := s.muxer.WriteTrailer(); err != nil && first == nil {
			first = wrap(av.ErrMuxTrailer, err)
		}
		s.headerWritten = false
	}
	if err := s.teardown(); err != nil && first == nil {
		first = err
	}
	s.logger.Debug("Released %s: %d frames, %d packets, %d bytes",
		s.filename, s.stats.Frames, s.stats.Packets, s.stats.Bytes)
	return first
}

// teardown frees the session resources in a fixed order, skipping whatever
// was never acquired.
func (s *session) teardown() error {
	var err error
	if s.sink != nil {
		s.mark(StepSink)
		if cerr := s.sink.Close(); cerr != nil {
			err = fmt.Errorf("%w: closing %s: %w", av.ErrMux, s.filename, cerr)
		}
		s.sink = nil
	}
	if s.enc != nil {
		s.mark(StepEncoder)
		if cerr := s.enc.Close(); cerr != nil {
			s.logger.Debug("Closing encoder: %v", cerr)
		}
		s.enc = nil
	}
	if s.frame != nil {
		s.mark(StepFrame)
		s.frame.Unref()
		s.frame = nil
	}
	if s.conv != nil {
		s.mark(StepConverter)
		s.conv.Close()
		s.conv = nil
	}
	if s.opts != nil {
		s.mark(StepOptions)
		s.opts.Clear()
		s.opts = nil
	}
	s.muxer = nil
	return err
}

// interleaver guards the muxer against timestamps it cannot store. Equal
// consecutive dts values pass only when nonStrict is set.
type interleaver struct {
	nonStrict bool
	started   bool
	lastDTS   int64
}

func (il *interleaver) check(pkt *av.Packet) error {
	dts := pkt.DTS
	if dts == av.NoPTS {
		dts = pkt.PTS
	}
	if dts == av.NoPTS {
		return nil
	}
	if il.started && (dts < il.lastDTS || dts == il.lastDTS && !il.nonStrict) {
		return fmt.Errorf("%w: non-monotonically increasing dts in stream %d: %d >= %d",
			av.ErrMuxWrite, pkt.StreamIndex, il.lastDTS, dts)
	}
	if pkt.PTS != av.NoPTS && pkt.PTS < dts {
		return fmt.Errorf("%w: pts (%d) < dts (%d) in stream %d",
			av.ErrMuxWrite, pkt.PTS, dts, pkt.StreamIndex)
	}
	il.started = true
	il.lastDTS = dts
	return nil
}
