package mocks

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/user/vidwriter/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer. Canvases it creates
// record their drawing operations; it is safe for concurrent use.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{width: width, height: height}
	m.mu.Lock()
	m.canvases = append(m.canvases, c)
	m.mu.Unlock()
	return c
}

// Canvases returns the canvases created so far.
func (m *Renderer) Canvases() []*Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Canvas(nil), m.canvases...)
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records one line per
// drawing call, e.g. "rect 0,0 10x20" or "text 0003".
type Canvas struct {
	width  int
	height int
	Ops    []string
}

func (m *Canvas) record(format string, args ...interface{}) {
	m.Ops = append(m.Ops, fmt.Sprintf(format, args...))
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	m.record("image %d,%d %dx%d", x, y, b.Dx(), b.Dy())
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color) {
	m.record("rect %d,%d %dx%d", x, y, w, h)
}

func (m *Canvas) DrawCircle(x, y, radius int, c color.Color) {
	m.record("circle %d,%d r%d", x, y, radius)
}

func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) {
	m.record("stroke %d,%d %dx%d", x, y, w, h)
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.record("text %s", text)
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 int, c color.Color, width float64) {
	m.record("line %d,%d %d,%d", x1, y1, x2, y2)
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

var _ ports.Canvas = (*Canvas)(nil)
