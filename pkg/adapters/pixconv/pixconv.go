// Package pixconv converts interleaved 8-bit images into encoder frames.
// It changes pixel layout only; source and destination sizes must match.
package pixconv

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/ports"
)

// ErrClosed is returned by Convert after Close.
var ErrClosed = errors.New("pixconv: converter closed")

type convertFunc func(c *Converter, src av.Image, dst *av.Frame)

// Converter converts one fixed (input, output) layout pair at a fixed size.
type Converter struct {
	width  int
	height int
	src    av.PixelFormat
	dst    av.PixelFormat
	fn     convertFunc
}

// New builds a converter. Unsupported layout pairs fail with
// av.ErrConversionInitFailed.
func New(width, height int, src, dst av.PixelFormat) (*Converter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", av.ErrConversionInitFailed, width, height)
	}
	switch src {
	case av.PixFmtGray8, av.PixFmtBGR24, av.PixFmtRGB24:
	default:
		return nil, fmt.Errorf("%w: unsupported input %s", av.ErrConversionInitFailed, src)
	}

	var fn convertFunc
	switch dst {
	case av.PixFmtYUV420P:
		fn = toYUV420(false)
	case av.PixFmtYUVJ420P:
		fn = toYUV420(true)
	case av.PixFmtRGB24, av.PixFmtBGR24:
		fn = toPacked
	case av.PixFmtGray8:
		fn = toGray
	default:
		return nil, fmt.Errorf("%w: %s -> %s", av.ErrConversionInitFailed, src, dst)
	}

	return &Converter{width: width, height: height, src: src, dst: dst, fn: fn}, nil
}

// NewConverter adapts New to ports.ConverterFactory.
func NewConverter(width, height int, src, dst av.PixelFormat) (ports.PixelConverter, error) {
	return New(width, height, src, dst)
}

// Convert fills dst from src.
func (c *Converter) Convert(src av.Image, dst *av.Frame) error {
	if c.fn == nil {
		return ErrClosed
	}
	if err := src.Check(c.width, c.height, c.src.BytesPerPixel()); err != nil {
		return err
	}
	if dst == nil || dst.Format != c.dst || dst.Width != c.width || dst.Height != c.height || len(dst.Data) == 0 {
		return fmt.Errorf("%w: destination frame does not match converter", av.ErrImageMismatch)
	}
	c.fn(c, src, dst)
	return nil
}

// Close releases the converter. Further Convert calls fail.
func (c *Converter) Close() {
	c.fn = nil
}

// rgb returns the color of pixel x in row.
func (c *Converter) rgb(row []byte, x int) (r, g, b int) {
	switch c.src {
	case av.PixFmtGray8:
		v := int(row[x])
		return v, v, v
	case av.PixFmtBGR24:
		return int(row[3*x+2]), int(row[3*x+1]), int(row[3*x])
	default:
		return int(row[3*x]), int(row[3*x+1]), int(row[3*x+2])
	}
}

// BT.601 limited range, as used by most H.264 and VP9 decoders.
func limitedY(r, g, b int) byte {
	return clamp(((66*r+129*g+25*b+128)>>8)+16, 16, 235)
}

func limitedUV(r, g, b int) (byte, byte) {
	u := ((-38*r - 74*g + 112*b + 128) >> 8) + 128
	v := ((112*r - 94*g - 18*b + 128) >> 8) + 128
	return clamp(u, 16, 240), clamp(v, 16, 240)
}

func toYUV420(fullRange bool) convertFunc {
	return func(c *Converter, src av.Image, dst *av.Frame) {
		yPlane, uPlane, vPlane := dst.Data[0], dst.Data[1], dst.Data[2]
		yStride, uStride, vStride := dst.Linesize[0], dst.Linesize[1], dst.Linesize[2]

		for y := 0; y < c.height; y++ {
			row := src.Row(y)
			out := yPlane[y*yStride:]
			for x := 0; x < c.width; x++ {
				r, g, b := c.rgb(row, x)
				if fullRange {
					yy, _, _ := color.RGBToYCbCr(uint8(r), uint8(g), uint8(b))
					out[x] = yy
				} else {
					out[x] = limitedY(r, g, b)
				}
			}
		}

		// Chroma is sited at the centre of each 2x2 block and averaged.
		for cy := 0; cy < (c.height+1)/2; cy++ {
			for cx := 0; cx < (c.width+1)/2; cx++ {
				var sr, sg, sb, n int
				for dy := 0; dy < 2; dy++ {
					y := 2*cy + dy
					if y >= c.height {
						continue
					}
					row := src.Row(y)
					for dx := 0; dx < 2; dx++ {
						x := 2*cx + dx
						if x >= c.width {
							continue
						}
						r, g, b := c.rgb(row, x)
						sr, sg, sb = sr+r, sg+g, sb+b
						n++
					}
				}
				r, g, b := (sr+n/2)/n, (sg+n/2)/n, (sb+n/2)/n

				var u, v byte
				if fullRange {
					_, u, v = color.RGBToYCbCr(uint8(r), uint8(g), uint8(b))
				} else {
					u, v = limitedUV(r, g, b)
				}
				uPlane[cy*uStride+cx] = u
				vPlane[cy*vStride+cx] = v
			}
		}
	}
}

func toPacked(c *Converter, src av.Image, dst *av.Frame) {
	swap := c.dst == av.PixFmtBGR24
	for y := 0; y < c.height; y++ {
		row := src.Row(y)
		out := dst.Data[0][y*dst.Linesize[0]:]
		for x := 0; x < c.width; x++ {
			r, g, b := c.rgb(row, x)
			if swap {
				r, b = b, r
			}
			out[3*x] = byte(r)
			out[3*x+1] = byte(g)
			out[3*x+2] = byte(b)
		}
	}
}

func toGray(c *Converter, src av.Image, dst *av.Frame) {
	for y := 0; y < c.height; y++ {
		row := src.Row(y)
		out := dst.Data[0][y*dst.Linesize[0]:]
		for x := 0; x < c.width; x++ {
			r, g, b := c.rgb(row, x)
			out[x] = byte((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
		}
	}
}

func clamp(v, lo, hi int) byte {
	if v < lo {
		return byte(lo)
	}
	if v > hi {
		return byte(hi)
	}
	return byte(v)
}

var _ ports.PixelConverter = (*Converter)(nil)
