package pixconv

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/av"
)

func solid(w, h, channels int, px ...byte) av.Image {
	img := av.NewImage(w, h, channels)
	for i := 0; i < len(img.Data); i += channels {
		copy(img.Data[i:i+channels], px)
	}
	return img
}

func convert(t *testing.T, src av.Image, in, out av.PixelFormat) *av.Frame {
	t.Helper()
	c, err := New(src.Width, src.Height, in, out)
	require.NoError(t, err)
	defer c.Close()

	f, err := av.NewFrame(out, src.Width, src.Height)
	require.NoError(t, err)
	require.NoError(t, c.Convert(src, f))
	return f
}

func TestConvert_YUV420Limited(t *testing.T) {
	tests := []struct {
		name    string
		in      av.PixelFormat
		px      []byte
		y, u, v byte
	}{
		{"white rgb", av.PixFmtRGB24, []byte{255, 255, 255}, 235, 128, 128},
		{"black bgr", av.PixFmtBGR24, []byte{0, 0, 0}, 16, 128, 128},
		{"red rgb", av.PixFmtRGB24, []byte{255, 0, 0}, 82, 90, 240},
		{"red bgr", av.PixFmtBGR24, []byte{0, 0, 255}, 82, 90, 240},
		{"mid gray", av.PixFmtGray8, []byte{128}, 126, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solid(6, 4, tt.in.BytesPerPixel(), tt.px...)
			f := convert(t, src, tt.in, av.PixFmtYUV420P)

			assert.Equal(t, tt.y, f.Data[0][0])
			assert.Equal(t, tt.y, f.Data[0][3*f.Linesize[0]+5])
			assert.Equal(t, tt.u, f.Data[1][f.Linesize[1]+2])
			assert.Equal(t, tt.v, f.Data[2][0])
		})
	}
}

func TestConvert_YUVJ420FullRange(t *testing.T) {
	f := convert(t, solid(4, 4, 3, 255, 255, 255), av.PixFmtRGB24, av.PixFmtYUVJ420P)
	assert.Equal(t, byte(255), f.Data[0][0])
	assert.Equal(t, byte(128), f.Data[1][0])

	f = convert(t, solid(4, 4, 1, 0), av.PixFmtGray8, av.PixFmtYUVJ420P)
	assert.Equal(t, byte(0), f.Data[0][0])
}

func TestConvert_OddDimensions(t *testing.T) {
	f := convert(t, solid(5, 3, 3, 255, 255, 255), av.PixFmtRGB24, av.PixFmtYUV420P)
	// last chroma sample covers a single column and row
	assert.Equal(t, byte(128), f.Data[1][1*f.Linesize[1]+2])
	assert.Equal(t, byte(235), f.Data[0][2*f.Linesize[0]+4])
}

func TestConvert_StrideRespected(t *testing.T) {
	src := av.Image{
		Data:     make([]byte, 2*16),
		Stride:   16,
		Width:    2,
		Height:   2,
		Channels: 3,
	}
	copy(src.Data[16:], []byte{1, 2, 3, 4, 5, 6})

	f := convert(t, src, av.PixFmtBGR24, av.PixFmtRGB24)
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, f.Data[0][f.Linesize[0]:f.Linesize[0]+6])
}

func TestConvert_ToGray(t *testing.T) {
	f := convert(t, solid(2, 2, 3, 255, 255, 255), av.PixFmtRGB24, av.PixFmtGray8)
	assert.Equal(t, byte(255), f.Data[0][0])
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New(4, 4, av.PixFmtYUV420P, av.PixFmtRGB24)
	assert.True(t, errors.Is(err, av.ErrConversionInitFailed))

	_, err = New(4, 4, av.PixFmtRGB24, av.PixFmtNone)
	assert.True(t, errors.Is(err, av.ErrConversionInitFailed))
	assert.True(t, errors.Is(err, av.ErrConfiguration))
}

func TestConvert_Mismatch(t *testing.T) {
	c, err := New(4, 4, av.PixFmtRGB24, av.PixFmtYUV420P)
	require.NoError(t, err)
	f, err := av.NewFrame(av.PixFmtYUV420P, 4, 4)
	require.NoError(t, err)

	err = c.Convert(solid(4, 4, 1, 0), f)
	assert.True(t, errors.Is(err, av.ErrImageMismatch))

	err = c.Convert(solid(8, 4, 3, 0, 0, 0), f)
	assert.True(t, errors.Is(err, av.ErrImageMismatch))

	c.Close()
	assert.Equal(t, ErrClosed, c.Convert(solid(4, 4, 3, 0, 0, 0), f))
}

func TestFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	bgr, err := FromImage(src, av.PixFmtBGR24)
	require.NoError(t, err)
	assert.Equal(t, []byte{30, 20, 10}, bgr.Data[:3])
	assert.Equal(t, 3, bgr.Channels)

	rgb, err := FromImage(src, av.PixFmtRGB24)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30}, rgb.Data[:3])

	gray, err := FromImage(src, av.PixFmtGray8)
	require.NoError(t, err)
	assert.Equal(t, 1, gray.Channels)
	assert.Equal(t, 2, gray.Width)

	_, err = FromImage(src, av.PixFmtYUV420P)
	assert.Error(t, err)
}

func TestToImage(t *testing.T) {
	f := convert(t, solid(2, 2, 3, 9, 8, 7), av.PixFmtRGB24, av.PixFmtRGB24)
	img, err := ToImage(f)
	require.NoError(t, err)
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(9), r>>8)
	assert.Equal(t, uint32(8), g>>8)
	assert.Equal(t, uint32(7), b>>8)
	assert.Equal(t, uint32(0xFF), a>>8)

	y, err := av.NewFrame(av.PixFmtYUVJ420P, 4, 4)
	require.NoError(t, err)
	yimg, err := ToImage(y)
	require.NoError(t, err)
	assert.IsType(t, &image.YCbCr{}, yimg)
}
