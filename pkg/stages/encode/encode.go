// Package encode implements the stage that writes frames into a container.
package encode

import (
	"context"
	"fmt"
	"image"

	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
	"github.com/user/vidwriter/pkg/videowriter"
)

// Writer is the subset of videowriter.Writer the stage drives.
type Writer interface {
	Open(filename string, fps float64, width, height int, cfg videowriter.Config) error
	WriteImage(img image.Image) error
	Info() (videowriter.Info, bool)
	Stats() videowriter.Stats
	Release() error
}

// Stage encodes source frames into the output file.
type Stage struct {
	writer Writer
	logger ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(writer Writer, logger ports.Logger) *Stage {
	return &Stage{
		writer: writer,
		logger: logger.WithComponent("encode"),
	}
}

// Execute writes all frames, holds the last one for input.HoldFrames extra
// frames and finalises the file. The writer is released on every path.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (result pipeline.EncodeResult, err error) {
	if len(input.Frames) == 0 {
		return result, fmt.Errorf("no frames to encode")
	}

	b := input.Frames[0].Image.Bounds()
	size := pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}

	cfg := videowriter.Config{
		Encoder:          input.Encoder,
		Options:          input.Options,
		OptionsSeparator: input.OptionsSeparator,
		Format:           input.Format,
		Grayscale:        input.Grayscale,
		RGB:              input.RGB,
	}
	if err := s.writer.Open(input.OutputPath, input.FPS, size.Width, size.Height, cfg); err != nil {
		return result, fmt.Errorf("open %s: %w", input.OutputPath, err)
	}
	defer func() {
		if rerr := s.writer.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("finalize %s: %w", input.OutputPath, rerr)
		}
		if err == nil {
			st := s.writer.Stats()
			result.Frames, result.Packets, result.Bytes = st.Frames, st.Packets, st.Bytes
			result.DurationMs = int(float64(st.Frames) * 1000 / input.FPS)
		}
	}()

	info, _ := s.writer.Info()
	result = pipeline.EncodeResult{
		OutputPath: input.OutputPath,
		Format:     info.Format,
		Encoder:    info.Encoder,
		Codec:      info.Stream.Codecpar.CodecID.String(),
		Size:       size,
		FrameRate:  info.Stream.AvgFrameRate.String(),
		TimeBase:   info.Stream.TimeBase.String(),
	}
	s.logger.Debug("Encoding %d frames with %s into %s", len(input.Frames), info.Encoder, info.Format)

	for _, frame := range input.Frames {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.writer.WriteImage(frame.Image); err != nil {
			return result, fmt.Errorf("encode frame %d: %w", frame.Index, err)
		}
	}

	last := input.Frames[len(input.Frames)-1]
	for i := 0; i < input.HoldFrames; i++ {
		if err := s.writer.WriteImage(last.Image); err != nil {
			return result, fmt.Errorf("encode hold frame: %w", err)
		}
	}

	return result, nil
}
