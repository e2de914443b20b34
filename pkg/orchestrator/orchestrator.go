// Package orchestrator chains the source and encode stages.
package orchestrator

import (
	"context"
	"fmt"
	"image/color"

	"github.com/ideamans/go-l10n"
	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
)

// Config contains all configuration for one encode run.
type Config struct {
	// Input: image files, or a synthetic pattern when empty
	Inputs     []string
	Pattern    pipeline.Pattern
	FrameCount int
	Label      bool
	Background [4]uint8 // RGBA

	// Output
	OutputPath string
	Width      int
	Height     int
	FPS        float64
	HoldFrames int

	// Writer
	Encoder          string
	Options          string
	OptionsSeparator string
	Format           string
	Grayscale        bool
	RGB              bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Pattern:    pipeline.PatternBars,
		FrameCount: 50,
		Label:      true,
		Background: [4]uint8{16, 16, 16, 255},
		Width:      352,
		Height:     288,
		FPS:        25,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	sourceStage pipeline.Stage[pipeline.SourceInput, pipeline.SourceResult]
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	sourceStage pipeline.Stage[pipeline.SourceInput, pipeline.SourceResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		sourceStage: sourceStage,
		encodeStage: encodeStage,
		logger:      logger,
	}
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))

	// 1. Collect frames
	sourceInput := o.buildSourceInput(config)
	if len(sourceInput.Paths) > 0 {
		o.logger.Info(l10n.F("Loading %d images", len(sourceInput.Paths)))
	} else {
		o.logger.Info(l10n.F("Generating %d %s frames", sourceInput.FrameCount, sourceInput.Pattern))
	}
	source, err := o.sourceStage.Execute(ctx, sourceInput)
	if err != nil {
		o.logger.Error(l10n.F("Failed to prepare frames: %s", err))
		return RunResult{}, fmt.Errorf("source stage: %w", err)
	}

	// 2. Encode
	o.logger.Info(l10n.F("Encoding %d frames at %dx%d", len(source.Frames), source.Size.Width, source.Size.Height))
	encoded, err := o.encodeStage.Execute(ctx, o.buildEncodeInput(config, source))
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode video: %s", err))
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}
	o.logger.Info(l10n.F("Video encoded: %d bytes", encoded.Bytes))
	o.logger.Info(l10n.F("Output saved to %s", encoded.OutputPath))
	o.logger.Info(l10n.T("Pipeline completed successfully"))

	return RunResult{
		OutputPath: encoded.OutputPath,
		Format:     encoded.Format,
		Encoder:    encoded.Encoder,
		Codec:      encoded.Codec,
		Width:      encoded.Size.Width,
		Height:     encoded.Size.Height,
		FrameRate:  encoded.FrameRate,
		TimeBase:   encoded.TimeBase,
		FrameCount: int(encoded.Frames),
		Packets:    encoded.Packets,
		Bytes:      encoded.Bytes,
		DurationMs: encoded.DurationMs,
	}, nil
}

func (o *Orchestrator) buildSourceInput(config Config) pipeline.SourceInput {
	return pipeline.SourceInput{
		Paths:      config.Inputs,
		Size:       pipeline.Dimension{Width: config.Width, Height: config.Height},
		Pattern:    config.Pattern,
		FrameCount: config.FrameCount,
		Background: rgbaFromArray(config.Background),
		Label:      config.Label,
	}
}

func (o *Orchestrator) buildEncodeInput(config Config, source pipeline.SourceResult) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Frames:           source.Frames,
		OutputPath:       config.OutputPath,
		FPS:              config.FPS,
		Encoder:          config.Encoder,
		Options:          config.Options,
		OptionsSeparator: config.OptionsSeparator,
		Format:           config.Format,
		Grayscale:        config.Grayscale,
		RGB:              config.RGB,
		HoldFrames:       config.HoldFrames,
	}
}

func rgbaFromArray(c [4]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	OutputPath string
	Format     string
	Encoder    string
	Codec      string

	Width     int
	Height    int
	FrameRate string
	TimeBase  string

	FrameCount int
	Packets    int64
	Bytes      int64
	DurationMs int
}
