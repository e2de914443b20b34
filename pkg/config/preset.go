package config

// Preset represents a video quality preset name.
type Preset string

const (
	PresetLow    Preset = "low"
	PresetMedium Preset = "medium"
	PresetHigh   Preset = "high"
)

// Valid reports whether p names a known preset.
func (p Preset) Valid() bool {
	switch p {
	case PresetLow, PresetMedium, PresetHigh:
		return true
	}
	return false
}

// presetOptions maps encoder name to per-preset options, comma separated.
var presetOptions = map[string]map[Preset]string{
	"libx264": {
		PresetLow:    "crf=32,preset=veryfast",
		PresetMedium: "crf=23,preset=medium",
		PresetHigh:   "crf=18,preset=slow",
	},
	"libvpx": {
		PresetLow:    "crf=40,b=500k,deadline=realtime",
		PresetMedium: "crf=20,b=1M,deadline=good",
		PresetHigh:   "crf=8,b=2M,deadline=good",
	},
	"libvpx-vp9": {
		PresetLow:    "crf=45,b=0,deadline=realtime,cpu-used=8",
		PresetMedium: "crf=33,b=0,deadline=good,cpu-used=4",
		PresetHigh:   "crf=20,b=0,deadline=good,cpu-used=1",
	},
	"libaom-av1": {
		PresetLow:    "crf=45,cpu-used=8",
		PresetMedium: "crf=35,cpu-used=6",
		PresetHigh:   "crf=24,cpu-used=4",
	},
	"mjpeg": {
		PresetLow:    "quality=60",
		PresetMedium: "quality=80",
		PresetHigh:   "quality=95",
	},
	"png": {
		PresetLow:    "compression_level=1",
		PresetMedium: "compression_level=6",
		PresetHigh:   "compression_level=9",
	},
}

// Options returns the options the preset implies for the named encoder, or ""
// when the preset is unset or the encoder has no tuning knobs.
func (p Preset) Options(encoder string) string {
	if p == "" {
		return ""
	}
	return presetOptions[encoder][p]
}
