// Package videowriter encodes a sequence of fixed-size raw pictures into a
// single-stream video container.
//
// A Writer moves between two states. Open acquires a container, an encoder,
// a reusable frame and a pixel converter; Release flushes the encoder, writes
// the trailer and gives everything back in a fixed order. Write and Release
// are no-ops on a closed Writer.
package videowriter

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"runtime"

	"github.com/user/vidwriter/pkg/adapters/ggrenderer"
	"github.com/user/vidwriter/pkg/adapters/nullsink"
	"github.com/user/vidwriter/pkg/adapters/osfilesystem"
	"github.com/user/vidwriter/pkg/adapters/pixconv"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/formats"
	"github.com/user/vidwriter/pkg/ports"
)

// DefaultOptionsSeparator separates key=value pairs in Config.Options.
const DefaultOptionsSeparator = ","

// Config selects the encoder and input layout for Open.
type Config struct {
	// Encoder names a registered encoder. Empty picks the container's
	// default codec.
	Encoder string

	// Options is a "key=value,key=value" list handed to the encoder.
	Options string

	// OptionsSeparator overrides the pair separator in Options.
	OptionsSeparator string

	// Grayscale switches the input to one channel per pixel.
	Grayscale bool

	// RGB switches three-channel input from BGR to RGB order.
	RGB bool

	// Format forces a container by short name instead of guessing it from
	// the filename.
	Format string
}

// Stats counts what the current or most recent session produced.
type Stats struct {
	Frames  int64
	Packets int64
	Bytes   int64
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger for diagnostics.
func WithLogger(l ports.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithFileSystem sets where output files are created.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(w *Writer) { w.fs = fs }
}

// WithRegistry sets the formats and encoders available to Open.
func WithRegistry(r *formats.Registry) Option {
	return func(w *Writer) { w.registry = r }
}

// WithConverterFactory replaces the pixel converter constructor.
func WithConverterFactory(f ports.ConverterFactory) Option {
	return func(w *Writer) { w.newConverter = f }
}

// WithDebugSink receives the stream dump and every muxed packet.
func WithDebugSink(s ports.DebugSink) Option {
	return func(w *Writer) { w.debug = s }
}

// Writer encodes pictures into one output file at a time. It is not safe for
// concurrent use.
type Writer struct {
	logger       ports.Logger
	fs           ports.FileSystem
	registry     *formats.Registry
	newConverter ports.ConverterFactory
	debug        ports.DebugSink

	s       *session
	stats   *Stats
	cleanup runtime.Cleanup

	// onTeardown observes each teardown step; set by tests.
	onTeardown func(step string)
}

// New creates a closed Writer. The first call in a process lowers the shared
// codec log level to warn.
func New(opts ...Option) *Writer {
	avlog.Init(ports.LevelWarn)

	w := &Writer{
		stats: &Stats{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = avlog.Component("videowriter")
	}
	if w.fs == nil {
		w.fs = osfilesystem.New()
	}
	if w.registry == nil {
		w.registry = formats.Default(ggrenderer.New())
	}
	if w.newConverter == nil {
		w.newConverter = pixconv.NewConverter
	}
	if w.debug == nil {
		w.debug = nullsink.New()
	}
	return w
}

// IsOpened reports whether a session is active.
func (w *Writer) IsOpened() bool {
	return w.s != nil
}

// Stats returns counters for the current session, or the last one after
// Release.
func (w *Writer) Stats() Stats {
	return *w.stats
}

// Info describes an open session.
type Info struct {
	Format  string
	Encoder string
	Input   av.PixelFormat
	Stream  ports.Stream
}

// Info returns the description of the open session.
func (w *Writer) Info() (Info, bool) {
	if w.s == nil {
		return Info{}, false
	}
	return Info{
		Format:  w.s.format.Name,
		Encoder: w.s.codec.Name,
		Input:   w.s.input,
		Stream:  w.s.stream,
	}, true
}

// Stream returns the container stream of the open session.
func (w *Writer) Stream() (ports.Stream, bool) {
	if w.s == nil {
		return ports.Stream{}, false
	}
	return w.s.stream, true
}

// Open starts a session writing to filename. An already open session is
// released first; if that fails the error is returned and filename is not
// opened. On error the Writer is left closed and nothing acquired by this
// call is kept.
func (w *Writer) Open(filename string, fps float64, width, height int, cfg Config) error {
	if w.s != nil {
		prev := w.s.filename
		if err := w.Release(); err != nil {
			return fmt.Errorf("finalizing %s: %w", prev, err)
		}
	}

	s, err := w.open(filename, fps, width, height, cfg)
	if err != nil {
		return err
	}
	w.s = s
	w.cleanup = runtime.AddCleanup(w, func(s *session) {
		if err := s.release(); err != nil {
			s.logger.Warn("Releasing unreachable writer failed: %v", err)
		}
	}, s)
	return nil
}

func (w *Writer) open(filename string, fps float64, width, height int, cfg Config) (s *session, err error) {
	*w.stats = Stats{}
	s = &session{
		filename: filename,
		logger:   w.logger,
		debug:    w.debug,
		stats:    w.stats,
		step:     w.onTeardown,
		nextPTS:  1,
		width:    width,
		height:   height,
	}
	defer func() {
		if err != nil {
			if terr := s.teardown(); terr != nil {
				w.logger.Debug("Teardown after failed open: %v", terr)
			}
			if s.created {
				_ = w.fs.Remove(filename)
			}
			s = nil
		}
	}()

	format, err := w.resolveFormat(filename, cfg.Format)
	if err != nil {
		return s, err
	}
	s.format = format
	s.il.nonStrict = format.Has(ports.FormatTSNonStrict)

	codec, err := w.resolveEncoder(format, filename, cfg.Encoder)
	if err != nil {
		return s, err
	}
	s.codec = codec

	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return s, fmt.Errorf("%w: %v", av.ErrInvalidFrameRate, fps)
	}
	rate := av.D2Q(fps, math.MaxInt32)
	if rate.Num <= 0 || rate.Den <= 0 {
		return s, fmt.Errorf("%w: %v", av.ErrInvalidFrameRate, fps)
	}
	if width <= 0 || height <= 0 {
		return s, fmt.Errorf("%w: invalid frame size %dx%d", av.ErrConfiguration, width, height)
	}

	if len(codec.PixelFormats) == 0 {
		return s, fmt.Errorf("%w: %s", av.ErrNoSupportedPixelFormat, codec.Name)
	}
	pixFmt := codec.PixelFormats[0]

	isColor := !cfg.Grayscale
	isBGR := !cfg.RGB
	switch {
	case !isColor:
		s.input, s.channels = av.PixFmtGray8, 1
	case isBGR:
		s.input, s.channels = av.PixFmtBGR24, 3
	default:
		s.input, s.channels = av.PixFmtRGB24, 3
	}

	sep := cfg.OptionsSeparator
	if sep == "" {
		sep = DefaultOptionsSeparator
	}
	s.opts, err = av.ParseDictionary(cfg.Options, "=", sep)
	if err != nil {
		return s, err
	}

	tb := rate.Inv()
	s.encCfg = ports.EncoderConfig{
		Width:        width,
		Height:       height,
		PixelFormat:  pixFmt,
		TimeBase:     tb,
		FrameRate:    rate,
		GlobalHeader: format.Has(ports.FormatGlobalHeader),
	}
	enc := codec.New()
	s.enc = enc
	if err := enc.Open(s.encCfg, s.opts); err != nil {
		if !errors.Is(err, av.ErrConfiguration) && !errors.Is(err, av.ErrResource) {
			err = fmt.Errorf("%w: could not open codec %s: %w", av.ErrConfiguration, codec.Name, err)
		}
		return s, err
	}

	s.frame, err = av.NewFrame(pixFmt, width, height)
	if err != nil {
		return s, err
	}

	s.stream = ports.Stream{
		Index:        0,
		ID:           0,
		TimeBase:     tb,
		AvgFrameRate: rate,
		Codecpar: ports.CodecParameters{
			CodecID:     codec.ID,
			Width:       width,
			Height:      height,
			PixelFormat: pixFmt,
			Extradata:   enc.Extradata(),
		},
	}
	s.dumpFormat()

	s.conv, err = w.newConverter(width, height, s.input, pixFmt)
	if err != nil {
		return s, wrap(av.ErrConversionInitFailed, err)
	}

	var cfgMux ports.MuxerConfig
	cfgMux.URL = filename
	cfgMux.FS = w.fs
	if !format.Has(ports.FormatNoFile) {
		sink, err := w.fs.Create(filename)
		if err != nil {
			return s, wrap(av.ErrSinkOpen, err)
		}
		s.sink = sink
		s.created = true
		cfgMux.Output = sink
	}

	s.muxer, err = format.New(cfgMux)
	if err != nil {
		return s, wrap(av.ErrMuxHeader, err)
	}
	if err := s.muxer.WriteHeader(&s.stream); err != nil {
		return s, wrap(av.ErrMuxHeader, err)
	}
	s.headerWritten = true

	if s.opts.Len() > 0 {
		w.logger.Warn("the following key/value options were not found: %s", s.opts.String())
	}
	w.logger.Debug("Opened %s (%s, %s, %dx%d, %s fps)", filename, format.Name, codec.Name, width, height, rate)
	return s, nil
}

func (w *Writer) resolveFormat(filename, name string) (*ports.OutputFormat, error) {
	if name != "" {
		f, ok := w.registry.FormatByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown output format %q", av.ErrConfiguration, name)
		}
		return f, nil
	}
	if f, ok := w.registry.GuessFormat(filename); ok {
		return f, nil
	}
	f, ok := w.registry.FormatByName(formats.FallbackFormat)
	if !ok {
		return nil, fmt.Errorf("%w: could not find output format for %s", av.ErrConfiguration, filename)
	}
	w.logger.Warn("Could not find output format for %s, falling back to %s", filename, f.Name)
	return f, nil
}

func (w *Writer) resolveEncoder(format *ports.OutputFormat, filename, name string) (*ports.Codec, error) {
	if name == "" {
		id := formats.DefaultCodec(format, filename)
		if id == av.CodecNone {
			return nil, fmt.Errorf("%w: %s", av.ErrNoVideoCodec, format.Name)
		}
		c, ok := w.registry.FindEncoder(id)
		if !ok {
			return nil, fmt.Errorf("%w: no encoder for codec %s", av.ErrUnsupportedEncoder, id)
		}
		return c, nil
	}

	c, ok := w.registry.FindEncoderByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", av.ErrUnsupportedEncoder, name)
	}
	if format.VideoCodec == av.CodecNone {
		return nil, fmt.Errorf("%w: %s", av.ErrNoVideoCodec, format.Name)
	}
	if !format.Supports(c.ID) {
		return nil, fmt.Errorf("%w: %s (%s) cannot be stored in %s", av.ErrUnsupportedEncoder, name, c.ID, format.Name)
	}
	return c, nil
}

// Write encodes one picture. The image must match the size and channel
// count chosen at Open. Write on a closed Writer does nothing.
func (w *Writer) Write(img av.Image) error {
	s := w.s
	if s == nil {
		return nil
	}
	if err := img.Check(s.width, s.height, s.channels); err != nil {
		return err
	}
	if err := s.frame.MakeWritable(); err != nil {
		return wrap(av.ErrFrameNotWritable, err)
	}
	if err := s.conv.Convert(img, s.frame); err != nil {
		return err
	}
	s.frame.PTS = s.nextPTS
	s.nextPTS++
	s.stats.Frames++

	_, err := s.pump(s.frame)
	return err
}

// WriteImage converts img to the session's input layout and writes it.
func (w *Writer) WriteImage(img image.Image) error {
	s := w.s
	if s == nil {
		return nil
	}
	raw, err := pixconv.FromImage(img, s.input)
	if err != nil {
		return err
	}
	return w.Write(raw)
}

// Release flushes the encoder, finalises the container and frees the
// session. The Writer is closed afterwards even if flushing or the trailer
// failed; that error is returned. Release on a closed Writer does nothing.
func (w *Writer) Release() error {
	s := w.s
	if s == nil {
		return nil
	}
	w.s = nil
	w.cleanup.Stop()
	return s.release()
}

// Close is Release.
func (w *Writer) Close() error {
	return w.Release()
}

var _ io.Closer = (*Writer)(nil)

// wrap tags err with kind unless it already carries it.
func wrap(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
