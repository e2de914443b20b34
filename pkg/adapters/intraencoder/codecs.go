package intraencoder

import (
	"fmt"
	"strconv"

	"github.com/user/vidwriter/pkg/adapters/pixconv"
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// RawVideo describes the uncompressed encoder.
func RawVideo() *ports.Codec {
	c := &ports.Codec{
		Name:         "rawvideo",
		LongName:     "raw video",
		ID:           av.CodecRawVideo,
		PixelFormats: []av.PixelFormat{av.PixFmtYUV420P, av.PixFmtGray8, av.PixFmtRGB24, av.PixFmtBGR24},
	}
	c.New = func() ports.Encoder {
		e := newEncoder(c)
		e.encode = func(f *av.Frame) ([]byte, error) {
			return f.Packed(), nil
		}
		return e
	}
	return c
}

// MJPEG describes the Motion JPEG encoder. Options: quality (1-100) or
// q (2-31, lower is better).
func MJPEG(r ports.Renderer) *ports.Codec {
	c := &ports.Codec{
		Name:         "mjpeg",
		LongName:     "MJPEG (Motion JPEG)",
		ID:           av.CodecMJPEG,
		PixelFormats: []av.PixelFormat{av.PixFmtYUVJ420P},
	}
	c.New = func() ports.Encoder {
		e := newEncoder(c)
		quality := 85
		e.options = func(opts *av.Dictionary) error {
			if v, ok := opts.Take("quality"); ok {
				q, err := intOption("quality", v, 1, 100)
				if err != nil {
					return err
				}
				quality = q
			}
			if v, ok := opts.Take("q"); ok {
				q, err := intOption("q", v, 1, 31)
				if err != nil {
					return err
				}
				quality = qscaleToQuality(q)
			}
			return nil
		}
		e.encode = func(f *av.Frame) ([]byte, error) {
			img, err := pixconv.ToImage(f)
			if err != nil {
				return nil, err
			}
			return r.EncodeImage(img, ports.FormatJPEG, quality)
		}
		return e
	}
	return c
}

// PNG describes the PNG encoder. Option: compression_level (0-9).
func PNG(r ports.Renderer) *ports.Codec {
	c := &ports.Codec{
		Name:         "png",
		LongName:     "PNG (Portable Network Graphics) image",
		ID:           av.CodecPNG,
		PixelFormats: []av.PixelFormat{av.PixFmtRGB24, av.PixFmtGray8},
	}
	c.New = func() ports.Encoder {
		e := newEncoder(c)
		level := -1
		e.options = func(opts *av.Dictionary) error {
			if v, ok := opts.Take("compression_level"); ok {
				l, err := intOption("compression_level", v, 0, 9)
				if err != nil {
					return err
				}
				level = l
			}
			return nil
		}
		e.encode = func(f *av.Frame) ([]byte, error) {
			img, err := pixconv.ToImage(f)
			if err != nil {
				return nil, err
			}
			return r.EncodeImage(img, ports.FormatPNG, level)
		}
		return e
	}
	return c
}

func intOption(key, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s=%s (expected %d..%d)", av.ErrInvalidOptions, key, value, lo, hi)
	}
	return n, nil
}

// qscaleToQuality maps the ffmpeg-style quantiser scale onto JPEG quality.
func qscaleToQuality(q int) int {
	quality := 100 - (q-1)*3
	if quality < 1 {
		quality = 1
	}
	return quality
}
