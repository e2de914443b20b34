package summarizer

import (
	"strings"
	"testing"
	"time"
)

func TestMarkdownFormatter_Format(t *testing.T) {
	formatter := NewMarkdownFormatter()

	summary := &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Elapsed:     2345 * time.Millisecond,
		Output: OutputInfo{
			Path:     "out.mkv",
			Format:   "matroska",
			Encoder:  "mjpeg",
			Codec:    "mjpeg",
			FileSize: 1024 * 1024,
		},
		Settings: Settings{
			Source:  "bars pattern",
			FPS:     29.97,
			Options: "quality=90",
		},
		Video: VideoInfo{
			Width:      352,
			Height:     288,
			FrameRate:  "2997/100",
			TimeBase:   "1/1000",
			FrameCount: 100,
			Packets:    100,
			Bytes:      500000,
			DurationMs: 4000,
		},
	}

	result := formatter.Format(summary)

	checks := []string{
		"# Encode Summary",
		"2024-01-15T10:30:00Z",
		"| File | out.mkv |",
		"matroska",
		"1.00 MB",
		"29.97 fps",
		"quality=90",
		"| Preset | - |",
		"bgr24",
		"352x288",
		"2997/100",
		"| Frames | 100 |",
		"4000 ms",
		"1.00 Mbps",
		"2.345s",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	result := NewMarkdownFormatter().Format(&Summary{
		Settings: Settings{Options: "x264-params=a|b"},
	})
	if !strings.Contains(result, `a\|b`) {
		t.Error("expected pipe in option value to be escaped")
	}
	if strings.Contains(result, "Elapsed") {
		t.Error("expected no elapsed line when elapsed is zero")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInputLayout(t *testing.T) {
	if got := inputLayout(Settings{Grayscale: true, RGB: true}); got != "gray8" {
		t.Errorf("grayscale wins, got %q", got)
	}
	if got := inputLayout(Settings{RGB: true}); got != "rgb24" {
		t.Errorf("expected rgb24, got %q", got)
	}
}
