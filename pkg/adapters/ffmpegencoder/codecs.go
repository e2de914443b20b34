package ffmpegencoder

import (
	"github.com/user/vidwriter/pkg/av"
	"github.com/user/vidwriter/pkg/bitstream"
	"github.com/user/vidwriter/pkg/ports"
)

// outputKind selects how the child's stdout is framed.
type outputKind int

const (
	outputAnnexB outputKind = iota
	outputIVF
)

// profile describes one ffmpeg encoder wrapped by this package.
type profile struct {
	name     string
	longName string
	id       av.CodecID
	output   outputKind
	// fixed arguments placed after -c:v
	args []string
	// options accepted from the dictionary, mapped to ffmpeg flags
	options  map[string]string
	keyframe func([]byte) bool
}

var commonOptions = map[string]string{
	"b":       "-b:v",
	"maxrate": "-maxrate",
	"bufsize": "-bufsize",
	"g":       "-g",
	"crf":     "-crf",
}

func withCommon(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+len(commonOptions))
	for k, v := range commonOptions {
		out[k] = v
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}

var (
	libx264 = &profile{
		name:     "libx264",
		longName: "libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10",
		id:       av.CodecH264,
		output:   outputAnnexB,
		args:     []string{"-bf", "0", "-f", "h264"},
		options: withCommon(map[string]string{
			"preset":      "-preset",
			"tune":        "-tune",
			"qp":          "-qp",
			"profile":     "-profile:v",
			"level":       "-level",
			"keyint_min":  "-keyint_min",
			"x264-params": "-x264-params",
		}),
		keyframe: bitstream.IsH264Keyframe,
	}
	libvpx = &profile{
		name:     "libvpx",
		longName: "libvpx VP8",
		id:       av.CodecVP8,
		output:   outputIVF,
		args:     []string{"-auto-alt-ref", "0", "-f", "ivf"},
		options: withCommon(map[string]string{
			"deadline":      "-deadline",
			"cpu-used":      "-cpu-used",
			"lag-in-frames": "-lag-in-frames",
			"qmin":          "-qmin",
			"qmax":          "-qmax",
		}),
		keyframe: bitstream.IsVP8Keyframe,
	}
	libvpxVP9 = &profile{
		name:     "libvpx-vp9",
		longName: "libvpx VP9",
		id:       av.CodecVP9,
		output:   outputIVF,
		args:     []string{"-auto-alt-ref", "0", "-f", "ivf"},
		options: withCommon(map[string]string{
			"deadline":      "-deadline",
			"cpu-used":      "-cpu-used",
			"lag-in-frames": "-lag-in-frames",
			"row-mt":        "-row-mt",
			"tile-columns":  "-tile-columns",
		}),
		keyframe: bitstream.IsVP9Keyframe,
	}
	libaomAV1 = &profile{
		name:     "libaom-av1",
		longName: "libaom AV1",
		id:       av.CodecAV1,
		output:   outputIVF,
		args:     []string{"-f", "ivf"},
		options: withCommon(map[string]string{
			"cpu-used": "-cpu-used",
			"usage":    "-usage",
			"row-mt":   "-row-mt",
			"tiles":    "-tiles",
		}),
		keyframe: bitstream.IsAV1Keyframe,
	}
)

func (p *profile) codec() *ports.Codec {
	c := &ports.Codec{
		Name:         p.name,
		LongName:     p.longName,
		ID:           p.id,
		PixelFormats: []av.PixelFormat{av.PixFmtYUV420P},
	}
	c.New = func() ports.Encoder {
		return newEncoder(p)
	}
	return c
}

// H264 describes the libx264 encoder.
func H264() *ports.Codec { return libx264.codec() }

// VP8 describes the libvpx encoder.
func VP8() *ports.Codec { return libvpx.codec() }

// VP9 describes the libvpx-vp9 encoder.
func VP9() *ports.Codec { return libvpxVP9.codec() }

// AV1 describes the libaom-av1 encoder.
func AV1() *ports.Codec { return libaomAV1.codec() }

// Codecs returns every encoder this package provides.
func Codecs() []*ports.Codec {
	return []*ports.Codec{H264(), VP8(), VP9(), AV1()}
}
