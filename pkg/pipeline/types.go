package pipeline

import (
	"image"
	"image/color"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// =============================================================================
// Source Stage Types
// =============================================================================

// Pattern names a synthetic test picture.
type Pattern string

const (
	// PatternBars draws color bars with a moving marker and a frame counter.
	PatternBars Pattern = "bars"
	// PatternGradient draws a gradient that shifts every frame.
	PatternGradient Pattern = "gradient"
	// PatternSolid fills every frame with the background color.
	PatternSolid Pattern = "solid"
)

// SourceInput selects where frames come from. Files are loaded in order when
// Paths is set; otherwise FrameCount frames of Pattern are drawn.
type SourceInput struct {
	Paths []string

	// Size of the produced frames. Zero takes the first image's size.
	Size Dimension

	Pattern    Pattern
	FrameCount int
	Background color.Color

	// Label draws the frame number on synthetic frames.
	Label bool
}

// DefaultSourceInput returns SourceInput with default values.
func DefaultSourceInput() SourceInput {
	return SourceInput{
		Size:       Dimension{Width: 352, Height: 288},
		Pattern:    PatternBars,
		FrameCount: 50,
		Background: color.RGBA{R: 16, G: 16, B: 16, A: 255},
		Label:      true,
	}
}

// SourceFrame is one picture ready for encoding.
type SourceFrame struct {
	Index int
	Name  string
	Image image.Image
}

// SourceResult contains the frames in presentation order.
type SourceResult struct {
	Frames []SourceFrame
	Size   Dimension
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for writing frames to a container.
type EncodeInput struct {
	Frames     []SourceFrame
	OutputPath string
	FPS        float64

	Encoder          string
	Options          string
	OptionsSeparator string
	Format           string
	Grayscale        bool
	RGB              bool

	// HoldFrames repeats the last frame this many extra times.
	HoldFrames int
}

// DefaultEncodeInput returns EncodeInput with default values.
func DefaultEncodeInput() EncodeInput {
	return EncodeInput{
		FPS: 25,
	}
}

// EncodeResult describes the written output.
type EncodeResult struct {
	OutputPath string
	Format     string
	Encoder    string
	Codec      string
	Size       Dimension
	FrameRate  string
	TimeBase   string

	Frames     int64
	Packets    int64
	Bytes      int64
	DurationMs int
}
