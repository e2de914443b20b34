package pixconv

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/vidwriter/pkg/av"
)

// FromImage renders img into a tightly packed av.Image in the given input
// layout (gray8, bgr24 or rgb24).
func FromImage(img image.Image, layout av.PixelFormat) (av.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch layout {
	case av.PixFmtGray8:
		gray, ok := img.(*image.Gray)
		if !ok || gray.Rect.Min != (image.Point{}) {
			gray = image.NewGray(image.Rect(0, 0, w, h))
			draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		}
		return av.Image{Data: gray.Pix, Stride: gray.Stride, Width: w, Height: h, Channels: 1}, nil

	case av.PixFmtRGB24, av.PixFmtBGR24:
		rgba, ok := img.(*image.RGBA)
		if !ok || rgba.Rect.Min != (image.Point{}) {
			rgba = image.NewRGBA(image.Rect(0, 0, w, h))
			draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		}
		out := av.NewImage(w, h, 3)
		for y := 0; y < h; y++ {
			src := rgba.Pix[y*rgba.Stride:]
			dst := out.Data[y*out.Stride:]
			for x := 0; x < w; x++ {
				r, g, bl := src[4*x], src[4*x+1], src[4*x+2]
				if layout == av.PixFmtBGR24 {
					r, bl = bl, r
				}
				dst[3*x], dst[3*x+1], dst[3*x+2] = r, g, bl
			}
		}
		return out, nil

	default:
		return av.Image{}, fmt.Errorf("pixconv: unsupported input layout %s", layout)
	}
}

// ToImage exposes a frame as an image.Image. YUV frames share the frame's
// buffers; packed frames are copied.
func ToImage(f *av.Frame) (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case av.PixFmtYUV420P, av.PixFmtYUVJ420P:
		return &image.YCbCr{
			Y:              f.Data[0],
			Cb:             f.Data[1],
			Cr:             f.Data[2],
			YStride:        f.Linesize[0],
			CStride:        f.Linesize[1],
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}, nil

	case av.PixFmtGray8:
		g := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+f.Width], f.Data[0][y*f.Linesize[0]:])
		}
		return g, nil

	case av.PixFmtRGB24, av.PixFmtBGR24:
		out := image.NewRGBA(rect)
		for y := 0; y < f.Height; y++ {
			src := f.Data[0][y*f.Linesize[0]:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < f.Width; x++ {
				r, g, b := src[3*x], src[3*x+1], src[3*x+2]
				if f.Format == av.PixFmtBGR24 {
					r, b = b, r
				}
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = r, g, b, 0xFF
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("pixconv: cannot expose %s as an image", f.Format)
	}
}
