package av

import (
	"fmt"
	"strings"
)

// PixelFormat identifies the memory layout of a raster image.
type PixelFormat int

const (
	PixFmtNone PixelFormat = iota
	PixFmtGray8
	PixFmtBGR24
	PixFmtRGB24
	PixFmtYUV420P
	// PixFmtYUVJ420P is planar 4:2:0 with full-range (JPEG) levels.
	PixFmtYUVJ420P
)

var pixFmtNames = map[PixelFormat]string{
	PixFmtNone:     "none",
	PixFmtGray8:    "gray",
	PixFmtBGR24:    "bgr24",
	PixFmtRGB24:    "rgb24",
	PixFmtYUV420P:  "yuv420p",
	PixFmtYUVJ420P: "yuvj420p",
}

func (p PixelFormat) String() string {
	if name, ok := pixFmtNames[p]; ok {
		return name
	}
	return fmt.Sprintf("pixfmt(%d)", int(p))
}

// ParsePixelFormat resolves a pixel format by its short name.
func ParsePixelFormat(s string) (PixelFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "gray8" {
		return PixFmtGray8, nil
	}
	for p, name := range pixFmtNames {
		if name == s && p != PixFmtNone {
			return p, nil
		}
	}
	return PixFmtNone, fmt.Errorf("unknown pixel format: %s", s)
}

// Planes returns the number of data planes.
func (p PixelFormat) Planes() int {
	switch p {
	case PixFmtGray8, PixFmtBGR24, PixFmtRGB24:
		return 1
	case PixFmtYUV420P, PixFmtYUVJ420P:
		return 3
	default:
		return 0
	}
}

// BytesPerPixel returns the size of one packed pixel, or 0 for planar formats.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixFmtGray8:
		return 1
	case PixFmtBGR24, PixFmtRGB24:
		return 3
	default:
		return 0
	}
}

// IsYUV reports whether the format is planar YUV.
func (p PixelFormat) IsYUV() bool {
	return p == PixFmtYUV420P || p == PixFmtYUVJ420P
}

// PlaneSize returns the visible bytes per row and the row count of plane i
// for an image of the given dimensions.
func (p PixelFormat) PlaneSize(i, width, height int) (rowBytes, rows int) {
	switch {
	case p.IsYUV() && i == 0:
		return width, height
	case p.IsYUV() && (i == 1 || i == 2):
		return (width + 1) / 2, (height + 1) / 2
	case i == 0 && p.BytesPerPixel() > 0:
		return width * p.BytesPerPixel(), height
	default:
		return 0, 0
	}
}

// BufferSize returns the tightly packed size of an image in this format.
func (p PixelFormat) BufferSize(width, height int) int {
	total := 0
	for i := 0; i < p.Planes(); i++ {
		rb, rows := p.PlaneSize(i, width, height)
		total += rb * rows
	}
	return total
}
