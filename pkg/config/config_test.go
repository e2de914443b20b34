package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidwriter/pkg/pipeline"
	"github.com/user/vidwriter/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25.0, cfg.FPS)
	assert.Equal(t, ",", cfg.OptionsSeparator)
	assert.Equal(t, "bars", cfg.Pattern)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidwriter.yaml")
	yaml := `
output: out.mp4
fps: 29.97
encoder: libx264
options: "tune=zerolatency"
preset: high
width: 640
height: 360
grayscale: true
hold_frames: 10
log_level: verbose
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out.mp4", cfg.OutputPath)
	assert.Equal(t, 29.97, cfg.FPS)
	assert.Equal(t, PresetHigh, cfg.Preset)
	assert.True(t, cfg.Grayscale)
	assert.Equal(t, 10, cfg.HoldFrames)
	assert.Equal(t, ports.LevelDebug, cfg.LogLevel)
	// unset keys keep their defaults
	assert.Equal(t, 50, cfg.Frames)
	assert.Equal(t, ",", cfg.OptionsSeparator)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fps: -1\n"), 0o644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "fps")

	pattern := filepath.Join(dir, "pattern.yaml")
	require.NoError(t, os.WriteFile(pattern, []byte("pattern: plaid\n"), 0o644))
	_, err = LoadFromFile(pattern)
	assert.ErrorContains(t, err, "plaid")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, A: 255}},
		{"1A2b3C", color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 255}},
		{"", color.Black},
		{"#fff", color.Black},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseColor(tt.in), tt.in)
	}
}

func TestEffectiveOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "no preset",
			cfg:  Config{Encoder: "libx264", Options: "crf=30"},
			want: "crf=30",
		},
		{
			name: "preset only",
			cfg:  Config{Encoder: "mjpeg", Preset: PresetLow},
			want: "quality=60",
		},
		{
			name: "explicit wins",
			cfg:  Config{Encoder: "libx264", Preset: PresetHigh, Options: "crf=12,tune=film"},
			want: "crf=12,preset=slow,tune=film",
		},
		{
			name: "custom separator",
			cfg:  Config{Encoder: "libx264", Preset: PresetLow, OptionsSeparator: ";"},
			want: "crf=32;preset=veryfast",
		},
		{
			name: "unknown encoder",
			cfg:  Config{Encoder: "rawvideo", Preset: PresetHigh, Options: "a=b"},
			want: "a=b",
		},
		{
			name: "malformed explicit options pass through",
			cfg:  Config{Encoder: "png", Preset: PresetHigh, Options: "broken"},
			want: "broken",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveOptions())
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Inputs = []string{"a.png"}
	cfg.OutputPath = "out.webm"
	cfg.Encoder = "libvpx-vp9"
	cfg.Preset = PresetMedium
	cfg.Background = "#204060"
	cfg.RGB = true

	oc := cfg.ToOrchestratorConfig()
	assert.Equal(t, []string{"a.png"}, oc.Inputs)
	assert.Equal(t, "out.webm", oc.OutputPath)
	assert.Equal(t, pipeline.PatternBars, oc.Pattern)
	assert.Equal(t, [4]uint8{0x20, 0x40, 0x60, 255}, oc.Background)
	assert.Equal(t, "crf=33,b=0,deadline=good,cpu-used=4", oc.Options)
	assert.True(t, oc.RGB)
	assert.Equal(t, 352, oc.Width)
}
