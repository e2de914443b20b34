package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/adapters/ggrenderer"
	"github.com/user/vidwriter/pkg/adapters/logger"
	"github.com/user/vidwriter/pkg/mocks"
	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
)

func TestStage_Synthesize(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), ggrenderer.New(), logger.NewNoop(), 2)

	input := pipeline.DefaultSourceInput()
	input.Size = pipeline.Dimension{Width: 64, Height: 48}
	input.FrameCount = 3

	result, err := stage.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, result.Frames, 3)
	assert.Equal(t, pipeline.Dimension{Width: 64, Height: 48}, result.Size)
	for i, f := range result.Frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, image.Rect(0, 0, 64, 48), f.Image.Bounds())
	}
	assert.Equal(t, "bars-0001", result.Frames[1].Name)

	// The leftmost bar is light grey at the top edge.
	r, g, b, _ := result.Frames[0].Image.At(7, 1).RGBA()
	assert.Equal(t, []uint32{191, 191, 191}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestStage_SynthesizePatterns(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), ggrenderer.New(), logger.NewNoop(), 2)

	for _, p := range []pipeline.Pattern{pipeline.PatternGradient, pipeline.PatternSolid} {
		result, err := stage.Execute(context.Background(), pipeline.SourceInput{
			Size:       pipeline.Dimension{Width: 32, Height: 16},
			Pattern:    p,
			FrameCount: 2,
			Background: color.RGBA{R: 255, A: 255},
		})
		require.NoError(t, err, "pattern %s", p)
		assert.Len(t, result.Frames, 2)
	}
}

func TestStage_SynthesizeInvalid(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), &mocks.Renderer{}, logger.NewNoop(), 2)

	_, err := stage.Execute(context.Background(), pipeline.SourceInput{FrameCount: 1})
	assert.Error(t, err)

	_, err = stage.Execute(context.Background(), pipeline.SourceInput{Size: pipeline.Dimension{Width: 4, Height: 4}})
	assert.Error(t, err)
}

func TestStage_LoadImages(t *testing.T) {
	fs := mocks.NewFileSystem()
	require.NoError(t, fs.WriteFile("a.png", []byte("a")))
	require.NoError(t, fs.WriteFile("b.jpg", []byte("b")))

	var formats []ports.ImageFormat
	renderer := &mocks.Renderer{
		DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
			formats = append(formats, format)
			return image.NewRGBA(image.Rect(0, 0, 40, 30)), nil
		},
	}
	stage := NewStage(fs, renderer, logger.NewNoop(), 1)

	result, err := stage.Execute(context.Background(), pipeline.SourceInput{Paths: []string{"a.png", "b.jpg"}})
	require.NoError(t, err)

	assert.Equal(t, pipeline.Dimension{Width: 40, Height: 30}, result.Size)
	require.Len(t, result.Frames, 2)
	assert.Equal(t, "b.jpg", result.Frames[1].Name)
	assert.Equal(t, []ports.ImageFormat{ports.FormatPNG, ports.FormatJPEG}, formats)
}

func TestStage_LoadFitsToRequestedSize(t *testing.T) {
	fs := mocks.NewFileSystem()
	require.NoError(t, fs.WriteFile("wide.png", []byte("x")))

	src := image.NewRGBA(image.Rect(0, 0, 80, 20))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	renderer := ggrenderer.New()
	stage := NewStage(fs, &mocks.Renderer{
		DecodeImageFunc:  func([]byte, ports.ImageFormat) (image.Image, error) { return src, nil },
		CreateCanvasFunc: renderer.CreateCanvas,
		ResizeImageFunc:  renderer.ResizeImage,
	}, logger.NewNoop(), 2)

	result, err := stage.Execute(context.Background(), pipeline.SourceInput{
		Paths:      []string{"wide.png"},
		Size:       pipeline.Dimension{Width: 40, Height: 40},
		Background: color.Black,
	})
	require.NoError(t, err)

	img := result.Frames[0].Image
	assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())
	r, _, _, _ := img.At(20, 2).RGBA()
	assert.Equal(t, uint32(0), r, "letterbox above the picture")
	r, _, _, _ = img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r, "picture centered")
}

func TestStage_LoadMissingFile(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), &mocks.Renderer{}, logger.NewNoop(), 2)

	_, err := stage.Execute(context.Background(), pipeline.SourceInput{Paths: []string{"missing.png"}})
	assert.Error(t, err)
}

func TestStage_Cancelled(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), &mocks.Renderer{}, logger.NewNoop(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, pipeline.SourceInput{
		Size:       pipeline.Dimension{Width: 4, Height: 4},
		FrameCount: 10,
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStage_ParallelKeepsOrder(t *testing.T) {
	stage := NewStage(mocks.NewFileSystem(), ggrenderer.New(), logger.NewNoop(), 4)

	input := pipeline.DefaultSourceInput()
	input.Size = pipeline.Dimension{Width: 16, Height: 16}
	input.FrameCount = 20

	result, err := stage.Execute(context.Background(), input)
	require.NoError(t, err)
	for i, f := range result.Frames {
		assert.Equal(t, i, f.Index)
	}
}

func TestForEach_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	err := forEach(context.Background(), 100, 1, func(i int) error {
		calls.Add(1)
		if i == 3 {
			return boom
		}
		return nil
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, int32(4), calls.Load(), "jobs after the failure are skipped")

	assert.NoError(t, forEach(context.Background(), 0, 4, func(int) error { return boom }))
}

func TestStage_DrawOperations(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(mocks.NewFileSystem(), renderer, logger.NewNoop(), 1)

	_, err := stage.Execute(context.Background(), pipeline.SourceInput{
		Size:       pipeline.Dimension{Width: 70, Height: 30},
		Pattern:    pipeline.PatternBars,
		FrameCount: 2,
		Label:      true,
	})
	require.NoError(t, err)

	canvases := renderer.Canvases()
	require.Len(t, canvases, 2)
	ops := canvases[1].Ops
	assert.Equal(t, "rect 0,0 10x20", ops[0], "first bar")
	assert.Contains(t, ops, "line 68,0 68,30", "marker at the right edge on the last frame")
	assert.Equal(t, "text 0001", ops[len(ops)-1])

	renderer = &mocks.Renderer{}
	stage = NewStage(mocks.NewFileSystem(), renderer, logger.NewNoop(), 1)
	_, err = stage.Execute(context.Background(), pipeline.SourceInput{
		Size:       pipeline.Dimension{Width: 70, Height: 30},
		Pattern:    pipeline.PatternSolid,
		FrameCount: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, renderer.Canvases()[0].Ops)
}
