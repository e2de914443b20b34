package videowriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/adapters/ggrenderer"
	"github.com/user/vidwriter/pkg/adapters/mp4probe"
	"github.com/user/vidwriter/pkg/adapters/osfilesystem"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/formats"
	"github.com/user/vidwriter/pkg/mocks"
)

// newPureGoWriter builds a Writer over the standard registry without the
// ffmpeg encoders.
func newPureGoWriter(fs *mocks.FileSystem) *Writer {
	return New(
		WithFileSystem(fs),
		WithRegistry(formats.Build(ggrenderer.New(), false)),
	)
}

func gradient(w, h, n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 32), B: uint8(n * 40), A: 255})
		}
	}
	return img
}

func TestIntegration_Y4M(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("out.y4m", 25, 16, 8, Config{}))
	for i := 0; i < 3; i++ {
		require.NoError(t, w.WriteImage(gradient(16, 8, i)))
	}
	require.NoError(t, w.Release())

	data, ok := fs.GetFile("out.y4m")
	require.True(t, ok)
	header := "YUV4MPEG2 W16 H8 F25:1 Ip A1:1 C420jpeg\n"
	assert.True(t, bytes.HasPrefix(data, []byte(header)))
	assert.Equal(t, 3, bytes.Count(data, []byte("FRAME\n")))
	assert.Len(t, data, len(header)+3*(len("FRAME\n")+16*8*3/2))
}

func TestIntegration_Y4MGrayscale(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("gray.y4m", 30000.0/1001.0, 16, 8, Config{Grayscale: true, Encoder: "rawvideo"}))
	require.NoError(t, w.Write(av.NewImage(16, 8, 1)))
	require.NoError(t, w.Release())

	data, _ := fs.GetFile("gray.y4m")
	assert.True(t, bytes.HasPrefix(data, []byte("YUV4MPEG2 W16 H8 F30000:1001")))
}

func TestIntegration_MatroskaMJPEG(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("out.mkv", 25, 16, 16, Config{Options: "quality=80"}))
	for i := 0; i < 4; i++ {
		require.NoError(t, w.WriteImage(gradient(16, 16, i)))
	}
	require.NoError(t, w.Release())

	data, ok := fs.GetFile("out.mkv")
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}), "EBML magic")
	assert.True(t, bytes.Contains(data, []byte("V_MJPEG")))
	assert.Equal(t, Stats{Frames: 4, Packets: 4, Bytes: w.Stats().Bytes}, w.Stats())
}

func TestIntegration_MatroskaAboveMillisecondRate(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("fast.mkv", 1500, 16, 16, Config{}))
	for i := 0; i < 6; i++ {
		require.NoError(t, w.WriteImage(gradient(16, 16, i)), "frame %d", i)
	}
	require.NoError(t, w.Release())
	assert.Equal(t, int64(6), w.Stats().Packets)
}

func TestIntegration_FragmentedMP4(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("out.m4s", 25, 16, 16, Config{Encoder: "mjpeg"}))
	for i := 0; i < 5; i++ {
		require.NoError(t, w.WriteImage(gradient(16, 16, i)))
	}
	require.NoError(t, w.Release())

	data, _ := fs.GetFile("out.m4s")
	info, err := mp4probe.Probe(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 5, info.Samples)
	assert.Equal(t, 16, info.Width)
	assert.Equal(t, uint64(0), info.FirstDTS)
}

func TestIntegration_AVI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.avi")
	w := New(
		WithFileSystem(osfilesystem.New()),
		WithRegistry(formats.Build(ggrenderer.New(), false)),
	)

	require.NoError(t, w.Open(path, 10, 16, 16, Config{Options: "q=4"}))
	for i := 0; i < 2; i++ {
		require.NoError(t, w.WriteImage(gradient(16, 16, i)))
	}
	require.NoError(t, w.Release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("RIFF")))
}

func TestIntegration_ImageSequence(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	require.NoError(t, w.Open("seq/frame-%02d.png", 5, 8, 8, Config{Options: "compression_level=1"}))
	for i := 0; i < 3; i++ {
		require.NoError(t, w.WriteImage(gradient(8, 8, i)))
	}
	require.NoError(t, w.Release())

	for i := 1; i <= 3; i++ {
		data, ok := fs.GetFile(fmt.Sprintf("seq/frame-%02d.png", i))
		require.True(t, ok, "frame %d", i)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	}
}

func TestIntegration_NoH264EncoderWithoutFFmpeg(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := newPureGoWriter(fs)

	err := w.Open("out.mp4", 25, 16, 16, Config{})
	assert.True(t, errors.Is(err, av.ErrUnsupportedEncoder))
	assert.False(t, w.IsOpened())
	assert.Empty(t, fs.GetAllFiles())

	err = w.Open("out.mp4", 25, 16, 16, Config{Encoder: "mjpeg"})
	assert.True(t, errors.Is(err, av.ErrUnsupportedEncoder), "mp4 does not carry mjpeg here")
}
