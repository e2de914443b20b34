// Package summarizer provides summary generation for encode runs.
package summarizer

import "time"

// Summary contains all data collected during an encode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"-"`

	// Output file
	Output OutputInfo `json:"output"`

	// Run settings
	Settings Settings `json:"settings"`

	// Encoded stream details
	Video VideoInfo `json:"video"`
}

// OutputInfo describes the produced file.
type OutputInfo struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Encoder  string `json:"encoder"`
	Codec    string `json:"codec"`
	FileSize int64  `json:"file_size"`
}

// Settings contains the run configuration.
type Settings struct {
	Source    string  `json:"source"` // "bars pattern" or "12 images"
	Preset    string  `json:"preset,omitempty"`
	Options   string  `json:"options,omitempty"`
	FPS       float64 `json:"fps"`
	Grayscale bool    `json:"grayscale"`
	RGB       bool    `json:"rgb"`
}

// VideoInfo contains information about the encoded stream.
type VideoInfo struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FrameRate  string `json:"frame_rate"`
	TimeBase   string `json:"time_base"`
	FrameCount int    `json:"frames"`
	Packets    int64  `json:"packets"`
	Bytes      int64  `json:"bytes"`
	DurationMs int    `json:"duration_ms"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithSettings sets run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithVideo sets encoded stream information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithElapsed sets the wall-clock time the run took.
func (b *Builder) WithElapsed(d time.Duration) *Builder {
	b.summary.Elapsed = d
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// Bitrate returns the average bitrate in bits per second, or 0 when the
// duration is unknown.
func (s *Summary) Bitrate() int64 {
	if s.Video.DurationMs <= 0 {
		return 0
	}
	return s.Video.Bytes * 8 * 1000 / int64(s.Video.DurationMs)
}
