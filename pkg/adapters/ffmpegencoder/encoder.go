// Package ffmpegencoder drives an ffmpeg child process as a send/receive
// encoder. Raw yuv420p pictures go to the child's stdin and the elementary
// stream it writes to stdout is split back into packets by a reader
// goroutine.
package ffmpegencoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

const (
	stderrTail   = 2048
	checkTimeout = 15 * time.Second
)

// Encoder implements ports.Encoder.
type Encoder struct {
	p   *profile
	cfg ports.EncoderConfig
	log ports.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	mu        sync.Mutex
	cond      *sync.Cond
	queue     [][]byte
	pts       []int64
	flushing  bool
	done      bool
	doneErr   error
	finished  chan struct{}
	extradata []byte
	closed    bool
}

func newEncoder(p *profile) *Encoder {
	e := &Encoder{p: p, log: avlog.Component(p.name)}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// Open validates the configuration, consumes the recognised options, checks
// that ffmpeg accepts them and starts the child process.
func (e *Encoder) Open(cfg ports.EncoderConfig, opts *av.Dictionary) error {
	if cfg.PixelFormat != av.PixFmtYUV420P {
		return fmt.Errorf("%w: %s requires yuv420p input, got %s", av.ErrConfiguration, e.p.name, cfg.PixelFormat)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || !cfg.FrameRate.Valid() {
		return fmt.Errorf("%w: %s: invalid size or rate", av.ErrConfiguration, e.p.name)
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	args := buildArgs(e.p, cfg, opts, logLevel(avlog.Level()))
	if err := e.checkArgs(ffmpegPath, args, cfg); err != nil {
		return err
	}
	e.log.Debug("starting %s %s", ffmpegPath, strings.Join(args, " "))

	e.cfg = cfg
	e.cmd = exec.Command(ffmpegPath, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start ffmpeg: %v", av.ErrEncoderUnavailable, err)
	}

	e.finished = make(chan struct{})
	go e.read(stdout)
	return nil
}

// checkArgs encodes one blank picture with the same arguments into the null
// muxer, so that options ffmpeg rejects fail here rather than on the first
// frame.
func (e *Encoder) checkArgs(ffmpegPath string, args []string, cfg ports.EncoderConfig) error {
	dry := append([]string{}, args[:len(args)-1]...)
	dry = append(dry, "-frames:v", "1", "-f", "null", "-")

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, dry...)
	cmd.Stdin = bytes.NewReader(make([]byte, av.PixFmtYUV420P.BufferSize(cfg.Width, cfg.Height)))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: ffmpeg did not answer within %s", av.ErrEncoderUnavailable, e.p.name, checkTimeout)
		}
		return fmt.Errorf("%w: could not open codec %s: %v: %s",
			av.ErrConfiguration, e.p.name, err, tail(stderr.String()))
	}
	return nil
}

// buildArgs assembles the ffmpeg command line. Recognised options are
// removed from opts in dictionary order.
func buildArgs(p *profile, cfg ports.EncoderConfig, opts *av.Dictionary, loglevel string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", loglevel,
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", fmt.Sprintf("%d/%d", cfg.FrameRate.Num, cfg.FrameRate.Den),
		"-i", "pipe:0",
		"-an",
		"-c:v", p.name,
		"-pix_fmt", "yuv420p",
	}
	for _, key := range opts.Keys() {
		flag, ok := p.options[strings.ToLower(key)]
		if !ok {
			continue
		}
		value, _ := opts.Take(key)
		args = append(args, flag, value)
	}
	args = append(args, p.args...)
	return append(args, "pipe:1")
}

func logLevel(l ports.LogLevel) string {
	switch l {
	case ports.LevelDebug:
		return "verbose"
	case ports.LevelInfo:
		return "info"
	case ports.LevelWarn:
		return "warning"
	case ports.LevelError:
		return "error"
	default:
		return "quiet"
	}
}

// read runs on its own goroutine until stdout closes, then reaps the child.
func (e *Encoder) read(stdout io.Reader) {
	emit := func(data []byte) {
		e.mu.Lock()
		e.queue = append(e.queue, data)
		e.mu.Unlock()
		e.cond.Broadcast()
	}

	var err error
	switch e.p.output {
	case outputIVF:
		err = readIVF(stdout, emit)
	default:
		err = readAnnexB(stdout, emit)
	}
	if err != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := e.cmd.Wait()

	e.mu.Lock()
	switch {
	case err != nil:
		e.doneErr = err
	case waitErr != nil && !e.closed:
		e.doneErr = fmt.Errorf("%w: %v: %s", ErrProcessFailed, waitErr, e.stderrTail())
	}
	e.done = true
	e.mu.Unlock()
	e.cond.Broadcast()
	close(e.finished)
}

func (e *Encoder) stderrTail() string {
	return tail(e.stderr.String())
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}

// SendFrame writes one picture to the child. A nil frame closes stdin so
// the child flushes and exits.
func (e *Encoder) SendFrame(f *av.Frame) error {
	if e.cmd == nil || e.closed {
		return ErrNotInitialized
	}

	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return av.ErrEOF
	}
	if f == nil {
		e.flushing = true
		e.mu.Unlock()
		return e.stdin.Close()
	}
	e.pts = append(e.pts, f.PTS)
	e.mu.Unlock()

	if _, err := e.stdin.Write(f.Packed()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReceivePacket returns the next finished packet. Before a flush it never
// blocks; while flushing it waits for the child to produce output or exit.
func (e *Encoder) ReceivePacket() (*av.Packet, error) {
	if e.cmd == nil {
		return nil, ErrNotInitialized
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.queue) == 0 {
		if e.done {
			if e.doneErr != nil {
				return nil, e.doneErr
			}
			return nil, av.ErrEOF
		}
		if !e.flushing {
			return nil, av.ErrAgain
		}
		e.cond.Wait()
	}

	data := e.queue[0]
	e.queue = e.queue[1:]

	pts := av.NoPTS
	if len(e.pts) > 0 {
		pts = e.pts[0]
		e.pts = e.pts[1:]
	}

	pkt := &av.Packet{Data: data, PTS: pts, DTS: pts, Duration: 1}
	if e.p.keyframe(data) {
		pkt.Flags |= av.PacketFlagKey
		if e.extradata == nil && e.p.id == av.CodecH264 {
			if sps, pps, err := bitstream.ParameterSets(data); err == nil {
				e.extradata = bitstream.JoinAnnexB([][]byte{sps, pps})
			}
		}
	}
	return pkt, nil
}

// Extradata returns the parameter sets seen in the first keyframe. They are
// unknown until the first packet has been received.
func (e *Encoder) Extradata() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.extradata
}

// Close stops the child process. It is safe to call more than once.
func (e *Encoder) Close() error {
	if e.cmd == nil || e.closed {
		return nil
	}
	e.mu.Lock()
	e.closed = true
	done := e.done
	flushing := e.flushing
	e.mu.Unlock()

	if !flushing {
		_ = e.stdin.Close()
	}
	if !done && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	<-e.finished

	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = nil
	e.pts = nil
	if e.doneErr != nil && !errors.Is(e.doneErr, ErrProcessFailed) {
		return e.doneErr
	}
	return nil
}

var _ ports.Encoder = (*Encoder)(nil)
