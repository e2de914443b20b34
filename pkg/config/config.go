// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/orchestrator"
	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
	"github.com/user/vidwriter/pkg/videowriter"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for vidwriter.
type Config struct {
	// Input/Output
	Inputs     []string `yaml:"inputs"`
	OutputPath string   `yaml:"output"`

	// Source
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Frames     int    `yaml:"frames"`
	Pattern    string `yaml:"pattern"`
	Label      bool   `yaml:"label"`
	Background string `yaml:"background"`

	// Writer
	FPS              float64 `yaml:"fps"`
	Encoder          string  `yaml:"encoder"`
	Options          string  `yaml:"options"`
	OptionsSeparator string  `yaml:"options_separator"`
	Format           string  `yaml:"format"`
	Grayscale        bool    `yaml:"grayscale"`
	RGB              bool    `yaml:"rgb"`
	HoldFrames       int     `yaml:"hold_frames"`
	Preset           Preset  `yaml:"preset"`

	// Runtime
	LogLevel   ports.LogLevel `yaml:"log_level"`
	FFmpegPath string         `yaml:"ffmpeg_path"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Source
		Width:      352,
		Height:     288,
		Frames:     50,
		Pattern:    string(pipeline.PatternBars),
		Label:      true,
		Background: "#101010",

		// Writer
		FPS:              25,
		OptionsSeparator: videowriter.DefaultOptionsSeparator,

		// Runtime
		LogLevel: ports.LevelInfo,

		// Debug
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that can never produce a video.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.HoldFrames < 0 {
		return fmt.Errorf("hold_frames must not be negative")
	}
	switch pipeline.Pattern(c.Pattern) {
	case pipeline.PatternBars, pipeline.PatternGradient, pipeline.PatternSolid:
	default:
		return fmt.Errorf("unknown pattern %q", c.Pattern)
	}
	if c.Preset != "" && !c.Preset.Valid() {
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	return nil
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.Black
	}

	byteAt := func(i int) uint8 {
		return hexValue(hex[i])<<4 | hexValue(hex[i+1])
	}
	return color.RGBA{R: byteAt(0), G: byteAt(2), B: byteAt(4), A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// EffectiveOptions merges the preset's options for the encoder with the
// explicit options. Explicit options win. Malformed explicit options are
// returned untouched so that the writer reports them.
func (c Config) EffectiveOptions() string {
	preset := c.Preset.Options(c.Encoder)
	if preset == "" {
		return c.Options
	}
	sep := c.OptionsSeparator
	if sep == "" {
		sep = videowriter.DefaultOptionsSeparator
	}
	if c.Options == "" {
		return strings.ReplaceAll(preset, ",", sep[:1])
	}

	merged, err := av.ParseDictionary(preset, "=", ",")
	if err != nil {
		return c.Options
	}
	explicit, err := av.ParseDictionary(c.Options, "=", sep)
	if err != nil {
		return c.Options
	}
	explicit.Each(merged.Set)
	return merged.Encode('=', sep[0])
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	bg := color.RGBAModel.Convert(ParseColor(c.Background)).(color.RGBA)
	return orchestrator.Config{
		Inputs:     c.Inputs,
		Pattern:    pipeline.Pattern(c.Pattern),
		FrameCount: c.Frames,
		Label:      c.Label,
		Background: [4]uint8{bg.R, bg.G, bg.B, bg.A},

		OutputPath: c.OutputPath,
		Width:      c.Width,
		Height:     c.Height,
		FPS:        c.FPS,
		HoldFrames: c.HoldFrames,

		Encoder:          c.Encoder,
		Options:          c.EffectiveOptions(),
		OptionsSeparator: c.OptionsSeparator,
		Format:           c.Format,
		Grayscale:        c.Grayscale,
		RGB:              c.RGB,
	}
}
