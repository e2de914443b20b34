package videowriter

import (
	"errors"
	"image"
	"image/color"
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/adapters/ggrenderer"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/avlog"
	"github.com/user/vidwriter/pkg/formats"
	"github.com/user/vidwriter/pkg/mocks"
	"github.com/user/vidwriter/pkg/ports"
)

type fixture struct {
	fs     *mocks.FileSystem
	log    *mocks.Logger
	rec    *mocks.Recorder
	enc    *mocks.Encoder
	reg    *formats.Registry
	muxers []*mocks.Muxer
	convs  []*mocks.Converter
	steps  []string
	w      *Writer
}

func newFixture(t *testing.T, configure func(*mocks.Muxer), opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		fs:  mocks.NewFileSystem(),
		log: &mocks.Logger{},
		rec: &mocks.Recorder{},
	}
	f.enc = &mocks.Encoder{Recorder: f.rec}

	f.reg = formats.NewRegistry()
	f.reg.RegisterCodec(mocks.NewCodec("mockenc", av.CodecH264, []av.PixelFormat{av.PixFmtYUV420P, av.PixFmtGray8}, f.enc))
	f.reg.RegisterCodec(mocks.NewCodec("mockpng", av.CodecPNG, []av.PixelFormat{av.PixFmtRGB24}, &mocks.Encoder{}))
	f.reg.RegisterCodec(&ports.Codec{Name: "nopix", ID: av.CodecH264, New: func() ports.Encoder { return &mocks.Encoder{} }})

	setup := func(m *mocks.Muxer) {
		m.Recorder = f.rec
		if configure != nil {
			configure(m)
		}
	}
	ts := mocks.NewFormat("mpegts", []string{"ts"}, av.CodecH264, 0, &f.muxers, setup)
	ts.Codecs = []av.CodecID{av.CodecH264}
	f.reg.RegisterFormat(ts)
	f.reg.RegisterFormat(mocks.NewFormat("mp4", []string{"mp4"}, av.CodecH264, ports.FormatGlobalHeader, &f.muxers, func(m *mocks.Muxer) {
		setup(m)
		m.TimeBase = av.R(1, 12800)
	}))
	f.reg.RegisterFormat(mocks.NewFormat("image2", []string{"png"}, av.CodecPNG, ports.FormatNoFile, &f.muxers, setup))
	f.reg.RegisterFormat(mocks.NewFormat("data", []string{"dat"}, av.CodecNone, 0, &f.muxers, setup))

	base := []Option{
		WithLogger(f.log),
		WithFileSystem(f.fs),
		WithRegistry(f.reg),
		WithConverterFactory(mocks.ConverterFactory(&f.convs, f.rec, nil)),
	}
	f.w = New(append(base, opts...)...)
	f.w.onTeardown = func(step string) { f.steps = append(f.steps, step) }
	return f
}

func bgr(w, h int, v byte) av.Image {
	img := av.NewImage(w, h, 3)
	for i := range img.Data {
		img.Data[i] = v
	}
	return img
}

func TestWriter_OpenWriteRelease(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	assert.True(t, f.w.IsOpened())
	assert.True(t, f.fs.IsOpen("out.ts"))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.w.Write(bgr(4, 2, byte(i))))
	}
	require.NoError(t, f.w.Release())

	assert.False(t, f.w.IsOpened())
	assert.Equal(t, []string{"out.ts"}, f.fs.Closed())
	require.Len(t, f.muxers, 1)
	m := f.muxers[0]
	assert.True(t, m.HeaderCalled)
	assert.True(t, m.TrailerCalled)
	assert.Len(t, m.Packets, 3)
	assert.Equal(t, Stats{Frames: 3, Packets: 3, Bytes: int64(len(m.Packets[0].Data)) * 3}, f.w.Stats())
}

func TestWriter_TeardownOrder(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Write(bgr(4, 2, 1)))
	require.NoError(t, f.w.Release())

	assert.Equal(t, []string{
		StepFlush, StepTrailer, StepSink, StepEncoder, StepFrame, StepConverter, StepOptions,
	}, f.steps)
	assert.Equal(t, []string{
		"encoder.open", "muxer.header", "muxer.trailer", "encoder.close", "converter.close",
	}, f.rec.Events())
	assert.Equal(t, 1, f.enc.FlushCalls)
	assert.Equal(t, 1, f.enc.CloseCalls)
	assert.True(t, f.convs[0].Closed)
}

func TestWriter_StreamSetup(t *testing.T) {
	tests := []struct {
		fps      float64
		wantRate av.Rational
	}{
		{25, av.R(25, 1)},
		{29.97, av.R(2997, 100)},
		{30000.0 / 1001.0, av.R(30000, 1001)},
	}

	for _, tt := range tests {
		f := newFixture(t, nil)
		require.NoError(t, f.w.Open("out.ts", tt.fps, 4, 2, Config{}))

		st, ok := f.w.Stream()
		require.True(t, ok)
		assert.Equal(t, tt.wantRate, st.AvgFrameRate)
		assert.Equal(t, tt.wantRate.Inv(), st.TimeBase)
		assert.LessOrEqual(t, st.AvgFrameRate.Den, math.MaxInt32)
		assert.Equal(t, 0, st.Index)
		assert.Equal(t, av.CodecH264, st.Codecpar.CodecID)

		assert.Equal(t, tt.wantRate.Inv(), f.enc.Config.TimeBase)
		assert.Equal(t, av.PixFmtYUV420P, f.enc.Config.PixelFormat)
		assert.False(t, f.enc.Config.GlobalHeader)
		require.NoError(t, f.w.Release())
	}
}

func TestWriter_RescalesToMuxerTimeBase(t *testing.T) {
	f := newFixture(t, nil)
	f.enc.Delay = 2

	require.NoError(t, f.w.Open("out.mp4", 25, 4, 2, Config{}))
	assert.True(t, f.enc.Config.GlobalHeader)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.w.Write(bgr(4, 2, byte(i))))
	}
	assert.Len(t, f.muxers[0].Packets, 3, "lookahead holds two frames")
	require.NoError(t, f.w.Release())

	pkts := f.muxers[0].Packets
	require.Len(t, pkts, 5)
	for i, p := range pkts {
		assert.Equal(t, int64(i+1)*512, p.PTS)
		assert.Equal(t, int64(i-1)*512, p.DTS)
		assert.Equal(t, int64(512), p.Duration)
		assert.Equal(t, 0, p.StreamIndex)
		if i > 0 {
			assert.Greater(t, p.DTS, pkts[i-1].DTS)
		}
	}
	assert.Equal(t, 0, f.enc.Held())
}

func TestWriter_FrameReuseWhileEncoderHoldsReference(t *testing.T) {
	f := newFixture(t, nil)
	f.enc.Delay = 2

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	for _, v := range []byte{10, 20, 30} {
		require.NoError(t, f.w.Write(bgr(4, 2, v)))
	}
	require.NoError(t, f.w.Release())

	var seen []byte
	for _, p := range f.muxers[0].Packets {
		seen = append(seen, p.Data[len(p.Data)-1])
	}
	assert.Equal(t, []byte{10, 20, 30}, seen)
}

func TestWriter_ReleaseIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Release())
	require.NoError(t, f.w.Release())
	require.NoError(t, f.w.Close())

	assert.Equal(t, 1, f.enc.CloseCalls)
	assert.Equal(t, []string{"out.ts"}, f.fs.Closed())
}

func TestWriter_WriteWhenClosedIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	assert.NoError(t, f.w.Write(bgr(4, 2, 0)))

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Write(bgr(4, 2, 0)))
	require.NoError(t, f.w.Release())

	assert.NoError(t, f.w.Write(bgr(4, 2, 0)))
	assert.NoError(t, f.w.WriteImage(image.NewRGBA(image.Rect(0, 0, 4, 2))))
	assert.Equal(t, 1, f.enc.SendCalls)
	assert.Len(t, f.muxers[0].Packets, 1)
}

func TestWriter_ReopenFinalizesFirstFile(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("a.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Write(bgr(4, 2, 1)))
	require.NoError(t, f.w.Open("b.ts", 25, 4, 2, Config{}))

	require.Len(t, f.muxers, 2)
	assert.True(t, f.muxers[0].TrailerCalled)
	assert.Len(t, f.muxers[0].Packets, 1)
	assert.Equal(t, []string{"a.ts"}, f.fs.Closed())
	assert.True(t, f.fs.IsOpen("b.ts"))
	assert.Equal(t, int64(0), f.w.Stats().Frames)

	require.NoError(t, f.w.Release())
	assert.Equal(t, []string{"a.ts", "b.ts"}, f.fs.Closed())
}

func TestWriter_ReopenReportsFinalizeError(t *testing.T) {
	f := newFixture(t, func(m *mocks.Muxer) {
		m.WriteTrailerFunc = func() error { return errors.New("disk full") }
	})

	require.NoError(t, f.w.Open("a.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Write(bgr(4, 2, 1)))

	err := f.w.Open("b.ts", 25, 4, 2, Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, av.ErrMuxTrailer))
	assert.Contains(t, err.Error(), "a.ts")
	assert.False(t, f.w.IsOpened())
	assert.Len(t, f.muxers, 1)
	_, created := f.fs.GetFile("b.ts")
	assert.False(t, created)
	assert.Equal(t, []string{"a.ts"}, f.fs.Closed())
}

func TestWriter_MalformedOptionsCreateNoFile(t *testing.T) {
	f := newFixture(t, nil)

	err := f.w.Open("out.ts", 25, 4, 2, Config{Options: "preset"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, av.ErrInvalidOptions))
	assert.True(t, errors.Is(err, av.ErrConfiguration))

	assert.False(t, f.w.IsOpened())
	_, exists := f.fs.GetFile("out.ts")
	assert.False(t, exists)
	assert.Empty(t, f.muxers)
	assert.False(t, f.enc.Opened)
}

func TestWriter_UnsupportedEncoder(t *testing.T) {
	f := newFixture(t, nil)

	err := f.w.Open("out.ts", 25, 4, 2, Config{Encoder: "nope"})
	assert.True(t, errors.Is(err, av.ErrUnsupportedEncoder))
	assert.True(t, errors.Is(err, av.ErrConfiguration))
	assert.False(t, f.w.IsOpened())
	assert.Empty(t, f.fs.GetAllFiles())

	err = f.w.Open("out.ts", 25, 4, 2, Config{Encoder: "mockpng"})
	assert.True(t, errors.Is(err, av.ErrUnsupportedEncoder), "ts cannot carry png")
	assert.False(t, f.w.IsOpened())
}

func TestWriter_NoVideoCodec(t *testing.T) {
	f := newFixture(t, nil)

	err := f.w.Open("out.dat", 25, 4, 2, Config{})
	assert.True(t, errors.Is(err, av.ErrNoVideoCodec))
	assert.True(t, errors.Is(err, av.ErrConfiguration))
}

func TestWriter_NoSupportedPixelFormat(t *testing.T) {
	f := newFixture(t, nil)

	err := f.w.Open("out.ts", 25, 4, 2, Config{Encoder: "nopix"})
	assert.True(t, errors.Is(err, av.ErrNoSupportedPixelFormat))
	assert.False(t, f.w.IsOpened())
}

func TestWriter_InvalidFrameRate(t *testing.T) {
	for _, fps := range []float64{0, -25, math.NaN(), math.Inf(1)} {
		f := newFixture(t, nil)
		err := f.w.Open("out.ts", fps, 4, 2, Config{})
		assert.True(t, errors.Is(err, av.ErrInvalidFrameRate), "fps %v", fps)
		assert.False(t, f.w.IsOpened())
	}
}

func TestWriter_UnknownExtensionFallsBack(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.xyz", 25, 4, 2, Config{}))
	defer f.w.Release()

	assert.True(t, f.log.Contains(ports.LevelWarn, "falling back to mpegts"))
	assert.True(t, f.fs.IsOpen("out.xyz"))
}

func TestWriter_ForcedFormat(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{Format: "mp4"}))
	st, _ := f.w.Stream()
	assert.Equal(t, av.R(1, 12800), st.TimeBase)
	require.NoError(t, f.w.Release())

	err := f.w.Open("out.ts", 25, 4, 2, Config{Format: "bogus"})
	assert.True(t, errors.Is(err, av.ErrConfiguration))
}

func TestWriter_NoFileFormatSkipsSink(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("frame-%03d.png", 25, 4, 2, Config{}))
	assert.Empty(t, f.fs.GetAllFiles())
	assert.Nil(t, f.muxers[0].Config.Output)
	assert.Equal(t, "frame-%03d.png", f.muxers[0].Config.URL)
	require.NoError(t, f.w.Release())

	assert.NotContains(t, f.steps, StepSink)
}

func TestWriter_ConversionInitFailureLeavesNoFile(t *testing.T) {
	f := newFixture(t, nil,
		WithConverterFactory(mocks.ConverterFactory(nil, nil, errors.New("no path"))))

	err := f.w.Open("out.ts", 25, 4, 2, Config{})
	assert.True(t, errors.Is(err, av.ErrConversionInitFailed))
	assert.True(t, errors.Is(err, av.ErrConfiguration))

	assert.False(t, f.w.IsOpened())
	assert.Empty(t, f.fs.GetAllFiles())
	assert.Equal(t, []string{StepEncoder, StepFrame, StepOptions}, f.steps)
	assert.Equal(t, 1, f.enc.CloseCalls)
}

func TestWriter_HeaderFailureRemovesFile(t *testing.T) {
	f := newFixture(t, func(m *mocks.Muxer) {
		m.WriteHeaderFunc = func(*ports.Stream) error { return errors.New("disk full") }
	})

	err := f.w.Open("out.ts", 25, 4, 2, Config{})
	assert.True(t, errors.Is(err, av.ErrMuxHeader))
	assert.True(t, errors.Is(err, av.ErrMux))

	assert.False(t, f.w.IsOpened())
	assert.Equal(t, []string{"out.ts"}, f.fs.Closed())
	_, exists := f.fs.GetFile("out.ts")
	assert.False(t, exists)
	assert.Equal(t, []string{StepSink, StepEncoder, StepFrame, StepConverter, StepOptions}, f.steps)
}

func TestWriter_ReportsUnconsumedOptions(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{Options: "mock_opt=1;bogus=2", OptionsSeparator: ";"}))
	defer f.w.Release()

	assert.True(t, f.log.Contains(ports.LevelWarn, "the following key/value options were not found: bogus=2"))
}

func TestWriter_DefaultLoggerReportsUnconsumedOptions(t *testing.T) {
	prevLevel := avlog.Level()
	out := &mocks.Logger{}
	prevOut := avlog.SetOutput(out)
	defer func() {
		avlog.SetLevel(prevLevel)
		avlog.SetOutput(prevOut)
	}()

	w := New(
		WithFileSystem(mocks.NewFileSystem()),
		WithRegistry(formats.Build(ggrenderer.New(), false)),
	)
	avlog.SetLevel(ports.LevelWarn)

	require.NoError(t, w.Open("out.y4m", 25, 4, 2, Config{Options: "bogus=1"}))
	require.NoError(t, w.Release())
	_ = w.Open("out.unknown", 25, 4, 2, Config{})
	assert.False(t, w.IsOpened())

	assert.True(t, out.Contains(ports.LevelWarn, "the following key/value options were not found: bogus=1"))
	assert.True(t, out.Contains(ports.LevelWarn, "falling back to mpegts"))
}

func TestWriter_AllOptionsConsumed(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{Options: "mock_opt=1"}))
	defer f.w.Release()

	assert.Empty(t, f.log.Entries(ports.LevelWarn))
}

func TestWriter_InputLayout(t *testing.T) {
	tests := []struct {
		cfg      Config
		want     av.PixelFormat
		channels int
	}{
		{Config{}, av.PixFmtBGR24, 3},
		{Config{RGB: true}, av.PixFmtRGB24, 3},
		{Config{Grayscale: true}, av.PixFmtGray8, 1},
		{Config{Grayscale: true, RGB: true}, av.PixFmtGray8, 1},
	}

	for _, tt := range tests {
		f := newFixture(t, nil)
		require.NoError(t, f.w.Open("out.ts", 25, 4, 2, tt.cfg))
		assert.Equal(t, tt.want, f.convs[0].Src)
		assert.Equal(t, av.PixFmtYUV420P, f.convs[0].Dst)

		require.NoError(t, f.w.Write(av.NewImage(4, 2, tt.channels)))
		err := f.w.Write(av.NewImage(4, 2, 4-tt.channels))
		assert.True(t, errors.Is(err, av.ErrImageMismatch))
		require.NoError(t, f.w.Release())
	}
}

func TestWriter_SizeMismatch(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	defer f.w.Release()

	err := f.w.Write(bgr(8, 2, 0))
	assert.True(t, errors.Is(err, av.ErrImageMismatch))
	assert.Equal(t, 0, f.enc.SendCalls)
}

func TestWriter_EncodeErrors(t *testing.T) {
	boom := errors.New("boom")

	f := newFixture(t, nil)
	f.enc.SendErr = func(frame *av.Frame) error {
		if frame != nil {
			return boom
		}
		return nil
	}
	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	err := f.w.Write(bgr(4, 2, 0))
	assert.True(t, errors.Is(err, av.ErrEncodeSubmit))
	assert.True(t, errors.Is(err, av.ErrEncode))
	assert.True(t, errors.Is(err, boom))
	require.NoError(t, f.w.Release())

	f = newFixture(t, nil)
	f.enc.ReceiveErr = func() error { return boom }
	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	err = f.w.Write(bgr(4, 2, 0))
	assert.True(t, errors.Is(err, av.ErrEncodeReceive))

	err = f.w.Release()
	assert.True(t, errors.Is(err, av.ErrEncodeReceive), "flush failure is reported")
	assert.False(t, f.w.IsOpened())
	assert.True(t, f.muxers[0].TrailerCalled)
}

func TestWriter_MuxerErrorIsFatal(t *testing.T) {
	f := newFixture(t, func(m *mocks.Muxer) {
		m.WritePacketFunc = func(*av.Packet) error { return errors.New("short write") }
	})

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	err := f.w.Write(bgr(4, 2, 0))
	assert.True(t, errors.Is(err, av.ErrMuxWrite))
	assert.True(t, errors.Is(err, av.ErrMux))
	assert.Equal(t, int64(0), f.w.Stats().Packets)
	require.NoError(t, f.w.Release())
}

func TestWriter_TrailerFailureStillCloses(t *testing.T) {
	f := newFixture(t, func(m *mocks.Muxer) {
		m.WriteTrailerFunc = func() error { return errors.New("seek failed") }
	})

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	err := f.w.Release()
	assert.True(t, errors.Is(err, av.ErrMuxTrailer))
	assert.False(t, f.w.IsOpened())
	assert.Equal(t, 1, f.enc.CloseCalls)
	assert.Equal(t, []string{"out.ts"}, f.fs.Closed())
}

func TestWriter_DebugSink(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	f := newFixture(t, nil, WithDebugSink(sink))

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.w.Write(bgr(4, 2, byte(i))))
	}
	require.NoError(t, f.w.Release())

	assert.Contains(t, string(sink.StreamInfo), `"format": "mpegts"`)
	assert.Contains(t, string(sink.StreamInfo), `"time_base": "1/25"`)
	assert.Equal(t, 3, sink.PacketCount())
	assert.True(t, f.log.Contains(ports.LevelDebug, "Output #0, mpegts, to 'out.ts':"))
	assert.True(t, f.log.Contains(ports.LevelDebug, "pts:1 pts_time:0.04 dts:1 dts_time:0.04"))
}

func TestWriter_WriteImage(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	require.NoError(t, f.w.WriteImage(img))
	require.NoError(t, f.w.Release())

	require.Len(t, f.muxers[0].Packets, 1)
	p := f.muxers[0].Packets[0]
	assert.Equal(t, byte(50), p.Data[len(p.Data)-1], "first byte is blue in BGR order")
}

func TestWriter_CleanupReleasesUnreachableWriter(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.w.Open("out.ts", 25, 4, 2, Config{}))
	require.NoError(t, f.w.Write(bgr(4, 2, 1)))
	f.w = nil

	for i := 0; i < 100 && f.fs.IsOpen("out.ts"); i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, f.fs.IsOpen("out.ts"))
	assert.True(t, f.muxers[0].TrailerCalled)
}

func TestInterleaver(t *testing.T) {
	var il interleaver

	require.NoError(t, il.check(&av.Packet{PTS: 2, DTS: 0}))
	require.NoError(t, il.check(&av.Packet{PTS: 1, DTS: 1}))
	require.NoError(t, il.check(&av.Packet{PTS: av.NoPTS, DTS: av.NoPTS}))

	err := il.check(&av.Packet{PTS: 3, DTS: 1})
	assert.True(t, errors.Is(err, av.ErrMuxWrite))

	err = il.check(&av.Packet{PTS: 2, DTS: 3})
	assert.True(t, errors.Is(err, av.ErrMuxWrite), "pts before dts")
}

func TestInterleaver_NonStrictAllowsEqualDTS(t *testing.T) {
	il := interleaver{nonStrict: true}

	require.NoError(t, il.check(&av.Packet{PTS: 1, DTS: 1}))
	require.NoError(t, il.check(&av.Packet{PTS: 1, DTS: 1}))
	require.NoError(t, il.check(&av.Packet{PTS: 2, DTS: 2}))

	err := il.check(&av.Packet{PTS: 1, DTS: 1})
	assert.True(t, errors.Is(err, av.ErrMuxWrite), "dts may not go backwards")
}
