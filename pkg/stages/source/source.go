// Package source implements the frame source stage: it loads still images
// or draws synthetic test pictures.
package source

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"runtime"

	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
)

// bars are the classic 75% color bars, left to right.
var bars = []color.RGBA{
	{R: 191, G: 191, B: 191, A: 255},
	{R: 191, G: 191, B: 0, A: 255},
	{R: 0, G: 191, B: 191, A: 255},
	{R: 0, G: 191, B: 0, A: 255},
	{R: 191, G: 0, B: 191, A: 255},
	{R: 191, G: 0, B: 0, A: 255},
	{R: 0, G: 0, B: 191, A: 255},
}

// Stage produces the frames to encode. Frames are decoded or drawn on a
// pool of workers; the result keeps input order.
type Stage struct {
	fs         ports.FileSystem
	renderer   ports.Renderer
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new source stage. numWorkers <= 0 uses one worker per CPU.
func NewStage(fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		fs:         fs,
		renderer:   renderer,
		logger:     logger.WithComponent("source"),
		numWorkers: numWorkers,
	}
}

// Execute loads input.Paths, or synthesizes input.FrameCount frames when no
// paths are given.
func (s *Stage) Execute(ctx context.Context, input pipeline.SourceInput) (pipeline.SourceResult, error) {
	if len(input.Paths) > 0 {
		return s.load(ctx, input)
	}
	return s.synthesize(ctx, input)
}

func (s *Stage) load(ctx context.Context, input pipeline.SourceInput) (pipeline.SourceResult, error) {
	result := pipeline.SourceResult{Size: input.Size}

	images := make([]image.Image, len(input.Paths))
	err := forEach(ctx, len(input.Paths), s.numWorkers, func(i int) error {
		path := input.Paths[i]
		format, ok := ports.ImageFormatFromPath(path)
		if !ok {
			format = ports.FormatAuto
		}
		data, err := s.fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		img, err := s.renderer.DecodeImage(data, format)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		s.logger.Debug("Loaded %s", path)
		images[i] = img
		return nil
	})
	if err != nil {
		return result, err
	}

	if result.Size.Width == 0 || result.Size.Height == 0 {
		b := images[0].Bounds()
		result.Size = pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}
	}

	result.Frames = make([]pipeline.SourceFrame, len(images))
	err = forEach(ctx, len(images), s.numWorkers, func(i int) error {
		result.Frames[i] = pipeline.SourceFrame{
			Index: i,
			Name:  filepath.Base(input.Paths[i]),
			Image: s.fit(images[i], result.Size, input.Background),
		}
		return nil
	})
	return result, err
}

// fit scales img to size keeping its aspect ratio and centers it on a
// background canvas. Images already at size are returned unchanged.
func (s *Stage) fit(img image.Image, size pipeline.Dimension, bg color.Color) image.Image {
	b := img.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return img
	}

	w, h := size.Width, b.Dy()*size.Width/b.Dx()
	if h > size.Height {
		w, h = b.Dx()*size.Height/b.Dy(), size.Height
	}
	w, h = max(w, 1), max(h, 1)

	if bg == nil {
		bg = color.Black
	}
	canvas := s.renderer.CreateCanvas(size.Width, size.Height, bg)
	canvas.DrawImage(s.renderer.ResizeImage(img, w, h), (size.Width-w)/2, (size.Height-h)/2)
	return canvas.ToImage()
}

func (s *Stage) synthesize(ctx context.Context, input pipeline.SourceInput) (pipeline.SourceResult, error) {
	size := input.Size
	result := pipeline.SourceResult{Size: size}

	if size.Width <= 0 || size.Height <= 0 {
		return result, fmt.Errorf("invalid frame size %dx%d", size.Width, size.Height)
	}
	if input.FrameCount <= 0 {
		return result, fmt.Errorf("no frames to generate")
	}

	bg := input.Background
	if bg == nil {
		bg = color.Black
	}

	s.logger.Debug("Generating %d %s frames at %dx%d", input.FrameCount, input.Pattern, size.Width, size.Height)
	result.Frames = make([]pipeline.SourceFrame, input.FrameCount)
	err := forEach(ctx, input.FrameCount, s.numWorkers, func(i int) error {
		canvas := s.renderer.CreateCanvas(size.Width, size.Height, bg)
		switch input.Pattern {
		case pipeline.PatternGradient:
			drawGradient(canvas, size, i)
		case pipeline.PatternSolid:
		default:
			drawBars(canvas, size, i, input.FrameCount)
		}
		if input.Label {
			drawLabel(canvas, size, i)
		}

		result.Frames[i] = pipeline.SourceFrame{
			Index: i,
			Name:  fmt.Sprintf("%s-%04d", input.Pattern, i),
			Image: canvas.ToImage(),
		}
		return nil
	})
	return result, err
}

// drawBars draws color bars over the top two thirds, a grey ramp below and a
// marker that sweeps across once over the whole sequence.
func drawBars(canvas ports.Canvas, size pipeline.Dimension, frame, total int) {
	barsHeight := size.Height * 2 / 3
	for i, c := range bars {
		x0 := i * size.Width / len(bars)
		x1 := (i + 1) * size.Width / len(bars)
		canvas.DrawRect(x0, 0, x1-x0, barsHeight, c)
	}

	const steps = 8
	for i := 0; i < steps; i++ {
		v := uint8(i * 255 / (steps - 1))
		x0 := i * size.Width / steps
		x1 := (i + 1) * size.Width / steps
		canvas.DrawRect(x0, barsHeight, x1-x0, size.Height-barsHeight, color.RGBA{R: v, G: v, B: v, A: 255})
	}

	radius := max(size.Height/12, 2)
	x := radius
	if total > 1 {
		x += frame * (size.Width - 2*radius) / (total - 1)
	}
	canvas.DrawCircle(x, barsHeight, radius, color.White)
	canvas.DrawLine(x, 0, x, size.Height, color.Black, 1)
}

func drawGradient(canvas ports.Canvas, size pipeline.Dimension, frame int) {
	const bands = 32
	for i := 0; i < bands; i++ {
		x0 := i * size.Width / bands
		x1 := (i + 1) * size.Width / bands
		v := uint8((i*8 + frame*4) % 256)
		canvas.DrawRect(x0, 0, x1-x0, size.Height, color.RGBA{R: v, G: 255 - v, B: uint8(frame * 3 % 256), A: 255})
	}
}

func drawLabel(canvas ports.Canvas, size pipeline.Dimension, frame int) {
	fontSize := float64(max(size.Height/10, 8))
	boxW, boxH := int(fontSize*4), int(fontSize*1.4)
	x, y := (size.Width-boxW)/2, size.Height/2-boxH/2

	canvas.DrawRect(x, y, boxW, boxH, color.RGBA{A: 200})
	canvas.DrawRectStroke(x, y, boxW, boxH, color.White, 1)
	canvas.DrawText(fmt.Sprintf("%04d", frame), size.Width/2, y+boxH/2, ports.TextStyle{
		FontSize: fontSize,
		Color:    color.White,
		Align:    ports.AlignCenter,
	})
}
